package routepath

import "strings"

// Canonical is the result of CanonicalizePath.
type Canonical struct {
	// Path is the normalized path without query string.
	Path string

	// Query is the raw query string without the leading "?".
	Query string

	// Changed reports whether normalization rewrote the path.
	Changed bool
}

// String rebuilds path and query.
func (c Canonical) String() string {
	if c.Query == "" {
		return c.Path
	}
	return c.Path + "?" + c.Query
}

// CanonicalizePath normalizes a navigation path:
//   - a missing leading slash is added
//   - repeated slashes collapse (/blog//post → /blog/post)
//   - "." segments are dropped and ".." segments resolved
//   - the trailing slash is removed (except for "/")
//
// Paths with a backslash, a NUL byte (literal or %00), a malformed percent
// escape, or a ".." above the root are rejected. The query string is kept
// verbatim.
func CanonicalizePath(input string) (Canonical, error) {
	if input == "" {
		return Canonical{Path: "/", Changed: true}, nil
	}

	path, query := SplitPathAndQuery(input)

	if strings.Contains(path, "\\") {
		return Canonical{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return Canonical{}, ErrNullByteInPath
	}
	if strings.Contains(path, "%") && !validEscapes(path) {
		return Canonical{}, ErrInvalidPercentEscape
	}

	var stack []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(stack) == 0 {
				return Canonical{}, ErrPathEscapesRoot
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, seg)
		}
	}

	out := "/" + strings.Join(stack, "/")
	return Canonical{Path: out, Query: query, Changed: out != path}, nil
}

// CanonicalizeAndValidateNavPath accepts only same-origin relative paths
// (leading "/", not "//", no scheme) and returns their canonical form with
// the query string re-attached. Every navigation target received from a
// client goes through here before it reaches a history store.
func CanonicalizeAndValidateNavPath(path string) (string, error) {
	if strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "//") ||
		!strings.HasPrefix(path, "/") {
		return "", ErrInvalidPath
	}

	c, err := CanonicalizePath(path)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

func validEscapes(path string) bool {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHex(path[i+1]) || !isHex(path[i+2]) {
			return false
		}
		i += 2
	}
	return true
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
