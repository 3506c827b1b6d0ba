package match

import (
	"fmt"
	"strings"

	"github.com/vango-dev/waypoint/internal/errors"
)

// Pattern builds a terminated Path from path-to-regexp style notation:
//
//	"/"                  → End()
//	"/search/:query"     → Lit("search"), Str("query"), End()
//	"/:year<int>/:slug"  → Int("year"), Str("slug"), End()
//
// Literal segments are taken verbatim. Capture names must be non-empty,
// made of letters, digits and underscores, and unique within the pattern.
func Pattern(pattern string) (Path, error) {
	if !strings.HasPrefix(pattern, "/") {
		return Path{}, invalidPattern(pattern, "must start with /")
	}

	var parts []Matcher[Params]
	seen := make(map[string]bool)

	for _, seg := range strings.Split(pattern, "/") {
		if seg == "" {
			continue
		}
		if !strings.HasPrefix(seg, ":") {
			parts = append(parts, Lit(seg))
			continue
		}

		name, kind := seg[1:], ""
		if i := strings.IndexByte(name, '<'); i >= 0 {
			if !strings.HasSuffix(name, ">") {
				return Path{}, invalidPattern(pattern, fmt.Sprintf("unterminated type in %q", seg))
			}
			name, kind = name[:i], name[i+1:len(name)-1]
		}
		if !validName(name) {
			return Path{}, invalidPattern(pattern, fmt.Sprintf("bad capture name in %q", seg))
		}
		if seen[name] {
			return Path{}, invalidPattern(pattern, fmt.Sprintf("capture %q used twice", name))
		}
		seen[name] = true

		switch kind {
		case "", "string":
			parts = append(parts, Str(name))
		case "int":
			parts = append(parts, Int(name))
		default:
			return Path{}, invalidPattern(pattern, fmt.Sprintf("unknown capture type %q", kind))
		}
	}

	return Seq(append(parts, End())...), nil
}

// MustPattern is like Pattern but panics on error. Use it for package-level
// route declarations.
func MustPattern(pattern string) Path {
	p, err := Pattern(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

func invalidPattern(pattern, reason string) error {
	return errors.New(errors.CodeInvalidPattern).WithDetail("%q: %s", pattern, reason)
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
