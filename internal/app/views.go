package app

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/vango-dev/waypoint/pkg/link"
	"github.com/vango-dev/waypoint/pkg/navctx"
)

// Page renders the navigation and the page for the current route. It must
// render under navctx.WithHistory.
func Page() templ.Component {
	return PageFor(Parse)
}

// PageFor is Page resolving the current route with parse, e.g. an
// observed copy of Routes.
func PageFor(parse func(string) (Route, bool)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := Nav().Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<hr>"); err != nil {
			return err
		}

		route, ok := navctx.UseCurrentRoute(ctx, parse)
		if !ok {
			return NotFound().Render(ctx, w)
		}
		return RouteView(route).Render(ctx, w)
	})
}

// Nav links to every page, plus a path no route matches.
func Nav() templ.Component {
	items := []templ.Component{
		link.Link(link.Props{Href: Href(Home{})}, link.Text("Home")),
		link.Link(link.Props{Href: Href(Search{Query: "dogs and cats"})}, link.Text("Search")),
		link.Link(link.Props{Href: Href(Post{Year: 2022, Slug: "type-safe-routing"})}, link.Text("Post")),
		link.Link(link.Props{Href: "/abcdef"}, link.Text(`Invalid link (to test "not found")`)),
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<nav><ul>"); err != nil {
			return err
		}
		for _, item := range items {
			if _, err := io.WriteString(w, "<li>"); err != nil {
				return err
			}
			if err := item.Render(ctx, w); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "</li>"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul></nav>")
		return err
	})
}

func init() {
	mustHaveViews(Variants)
}

// mustHaveViews panics unless RouteView knows every route in variants, so a
// route added without a view fails at startup like one added without a case.
func mustHaveViews(variants []Route) {
	for _, v := range variants {
		RouteView(v)
	}
}

// RouteView renders the page for r.
func RouteView(r Route) templ.Component {
	switch r := r.(type) {
	case Home:
		return html("<div><h1>Home</h1></div>")
	case Search:
		return html(fmt.Sprintf("<div><h1>Search</h1><dl><dt>Query</dt><dd>%s</dd></dl></div>",
			templ.EscapeString(r.Query)))
	case Post:
		return html(fmt.Sprintf("<div><h1>%s</h1><p>Published in %d</p></div>",
			templ.EscapeString(r.Slug), r.Year))
	default:
		// Unreachable once init has checked Variants.
		panic(fmt.Sprintf("app: no view for route %T", r))
	}
}

// NotFound is shown when no route matches.
func NotFound() templ.Component {
	return html("<div>Not found</div>")
}

func html(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// Shell is the document served for every path. The thin client fills the
// root element once its session renders.
func Shell(title, clientScript string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body>
<div data-waypoint-root></div>
<script src="%s" defer></script>
</body>
</html>
`, templ.EscapeString(title), templ.EscapeString(clientScript))
		return err
	})
}
