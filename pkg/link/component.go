package link

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"

	"github.com/vango-dev/waypoint/pkg/navctx"
	"github.com/vango-dev/waypoint/pkg/routepath"
)

// DefaultActiveClass is added to a link that points at the current page.
const DefaultActiveClass = "active"

// Props configures Link.
type Props struct {
	Href   string
	Target string
	Class  string

	// ActiveClass replaces DefaultActiveClass.
	ActiveClass string

	// Prefix marks the link active on any page below Href as well.
	Prefix bool

	// Attrs are rendered after the managed attributes. Managed keys
	// (href, target, class, data-link, aria-current) are ignored here.
	Attrs templ.Attributes
}

var managed = map[string]bool{
	"href":         true,
	"target":       true,
	"class":        true,
	"data-link":    true,
	"aria-current": true,
}

// Link renders an anchor that the host intercepts for in-app navigation.
// It must render under navctx.WithHistory: the store's location decides
// whether the link is active, and rendering outside a provider panics with
// a *navctx.MissingProviderError.
func Link(props Props, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		store := navctx.UseNamed(ctx, "link.Link")
		active := IsActive(routepath.PathOf(store.Location()), props.Href, props.Prefix)

		var b strings.Builder
		b.WriteString(`<a href="`)
		b.WriteString(templ.EscapeString(props.Href))
		b.WriteString(`" data-link="true"`)
		if props.Target != "" {
			fmt.Fprintf(&b, ` target="%s"`, templ.EscapeString(props.Target))
		}

		classes := props.Class
		if active {
			activeClass := props.ActiveClass
			if activeClass == "" {
				activeClass = DefaultActiveClass
			}
			classes = strings.TrimSpace(classes + " " + activeClass)
		}
		if classes != "" {
			fmt.Fprintf(&b, ` class="%s"`, templ.EscapeString(classes))
		}
		if active {
			b.WriteString(` aria-current="page"`)
		}
		writeAttrs(&b, props.Attrs)
		b.WriteString(">")

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		for _, child := range children {
			if child == nil {
				continue
			}
			if err := child.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</a>")
		return err
	})
}

// IsActive reports whether a link to href points at current. Both are
// compared as canonical paths; with prefix, pages below href count too.
func IsActive(current, href string, prefix bool) bool {
	cur := canonical(current)
	target := canonical(routepath.PathOf(href))
	if cur == target {
		return true
	}
	if !prefix {
		return false
	}
	if target == "/" {
		return true
	}
	return strings.HasPrefix(cur, target+"/")
}

func canonical(path string) string {
	c, err := routepath.CanonicalizePath(path)
	if err != nil {
		return path
	}
	return c.Path
}

// writeAttrs renders attrs in key order. true renders a bare attribute,
// false and nil render nothing.
func writeAttrs(b *strings.Builder, attrs templ.Attributes) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if !managed[strings.ToLower(k)] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := attrs[k].(type) {
		case nil:
		case bool:
			if v {
				b.WriteString(" " + templ.EscapeString(k))
			}
		case string:
			fmt.Fprintf(b, ` %s="%s"`, templ.EscapeString(k), templ.EscapeString(v))
		default:
			fmt.Fprintf(b, ` %s="%s"`, templ.EscapeString(k), templ.EscapeString(fmt.Sprint(v)))
		}
	}
}

// Text is a child component that renders escaped text.
func Text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}
