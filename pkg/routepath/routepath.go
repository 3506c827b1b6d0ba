// Package routepath splits, joins and canonicalizes URL paths.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Path errors.
var (
	ErrInvalidPath          = errors.New("invalid path")
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("path escapes root via ..")
)

// Split breaks a path into its decoded, non-empty segments.
//
// Anything after "?" or "#" is ignored, so "/search/cats?x=1" and
// "/search/cats/" both yield ["search", "cats"]. Each segment is
// percent-decoded independently, which means an encoded slash (%2F) stays
// inside its segment. The root path yields an empty slice.
func Split(path string) ([]string, error) {
	path, _, _ = strings.Cut(path, "#")
	path, _, _ = strings.Cut(path, "?")

	raw := strings.Split(path, "/")
	parts := make([]string, 0, len(raw))
	for _, seg := range raw {
		if seg == "" {
			continue
		}
		decoded, err := url.PathUnescape(seg)
		if err != nil {
			return nil, ErrInvalidPercentEscape
		}
		parts = append(parts, decoded)
	}
	return parts, nil
}

// Join is the inverse of Split: it escapes every part and joins them under
// a leading slash. Join(nil) is "/".
func Join(parts []string) string {
	if len(parts) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

// PathOf returns the escaped path of an absolute or relative URL, without
// query or fragment. An unparsable URL falls back to a plain cut at "?".
func PathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		path, _ := SplitPathAndQuery(rawURL)
		path, _, _ = strings.Cut(path, "#")
		if path == "" {
			return "/"
		}
		return path
	}
	if p := u.EscapedPath(); p != "" {
		return p
	}
	return "/"
}

// SplitPathAndQuery splits a path into path and query components.
// The query is returned without the leading "?".
func SplitPathAndQuery(input string) (path, query string) {
	path, query, _ = strings.Cut(input, "?")
	return path, query
}
