// Command waypoint serves the demo application and inspects its route
// table from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/waypoint/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if os.Getenv("NO_COLOR") != "" {
		errors.DisableColors()
	}
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "waypoint",
		Short: "Typed client-side routing served over a thin client",
		Long: `Waypoint serves a single-page application whose routes are typed
values. Paths are parsed into routes and routes are formatted back into
paths by the same declaration, so links cannot drift from the table.

  • serve     run the HTTP server and navigation WebSocket
  • routes    list the route table
  • parse     resolve paths to routes
  • format    build the path for a route`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		routesCmd(),
		parseCmd(),
		formatCmd(),
		versionCmd(),
	)
	return rootCmd
}
