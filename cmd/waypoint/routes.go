package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/waypoint/internal/app"
	"github.com/vango-dev/waypoint/internal/errors"
	"github.com/vango-dev/waypoint/pkg/match"
)

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route table in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TAG\tPATTERN")
			for _, c := range app.Routes.Cases() {
				fmt.Fprintf(w, "%s\t%s\n", c.Tag(), c.Pattern())
			}
			return w.Flush()
		},
	}
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <path>...",
		Short: "Resolve paths to routes",
		Long: `Resolve each path to its route and print the tag and the route's
fields as JSON. Query strings and fragments are ignored.

Examples:
  waypoint parse /search/dogs%20and%20cats
  waypoint parse /posts/2022/type-safe-routing /abcdef`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			var missed []string
			for _, path := range args {
				tag, route, ok := app.Routes.ParseTag(path)
				if !ok {
					missed = append(missed, path)
					fmt.Fprintf(w, "%s\t-\tno match\n", path)
					continue
				}
				fields, err := json.Marshal(route)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", path, tag, fields)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if len(missed) > 0 {
				return errors.New(errors.CodeUnknownRoute).WithDetail("no route matches %s", strings.Join(missed, ", "))
			}
			return nil
		},
	}
}

func formatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <tag> [name=value]...",
		Short: "Build the path for a route",
		Long: `Build the canonical path for the route with the given tag, binding
each name=value to the capture of the same name.

Examples:
  waypoint format Home
  waypoint format Search "query=dogs and cats"
  waypoint format Post year=2022 slug=type-safe-routing`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := formatRoute(args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// formatRoute binds each name=value argument and formats it through the
// case registered under tag.
func formatRoute(tag string, args []string) (string, error) {
	params := match.Params{}
	for _, arg := range args {
		name, value, found := strings.Cut(arg, "=")
		if !found || name == "" {
			return "", errors.New(errors.CodeInvalidArgument).WithDetail("%q is not name=value", arg)
		}
		params[name] = value
	}
	return app.Routes.FormatParams(tag, params)
}
