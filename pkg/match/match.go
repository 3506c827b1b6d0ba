package match

import (
	"errors"

	"github.com/vango-dev/waypoint/pkg/routepath"
)

// ErrNoMatch is returned by parsers that do not accept their input.
var ErrNoMatch = errors.New("match: no match")

// Parser consumes a prefix of the decoded path segments.
// On success it returns the parsed value and the segments it did not consume.
type Parser[T any] interface {
	Parse(parts []string) (T, []string, error)
}

// Formatter emits the path segments for a value.
type Formatter[T any] interface {
	Format(v T) []string
}

// Matcher is a Parser and a Formatter for the same shape.
type Matcher[T any] interface {
	Parser[T]
	Formatter[T]
}

// ParserFunc adapts a function to Parser.
type ParserFunc[T any] func(parts []string) (T, []string, error)

// Parse calls f(parts).
func (f ParserFunc[T]) Parse(parts []string) (T, []string, error) {
	return f(parts)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc[T any] func(v T) []string

// Format calls f(v).
func (f FormatterFunc[T]) Format(v T) []string {
	return f(v)
}

type pair[T any] struct {
	Parser[T]
	Formatter[T]
	desc string

	// Set when the pair was bound from a Params matcher.
	params       Matcher[Params]
	ended, known bool
}

func (p pair[T]) String() string {
	if p.desc == "" {
		return "/<custom>"
	}
	return p.desc
}

func (p pair[T]) termination() (ended, known bool) { return p.ended, p.known }

func (p pair[T]) paramsMatcher() Matcher[Params] { return p.params }

// bound returns a pair that carries what Struct and Imap know about m.
func bound[T any](m any, parse Parser[T], format Formatter[T]) pair[T] {
	out := pair[T]{Parser: parse, Formatter: format, desc: describe(m)}
	out.params, _ = ParamsOf(m)
	out.ended, out.known = Terminated(m)
	return out
}

// Terminated reports whether m only accepts complete paths, that is
// whether its Params matcher ends with End. known is false when m does not
// say, which is the case for foreign matchers.
func Terminated(m any) (ended, known bool) {
	switch m := m.(type) {
	case Path:
		return m.ended, m.ended || !m.opaque
	case interface{ termination() (bool, bool) }:
		return m.termination()
	case interface{ Terminated() bool }:
		return m.Terminated(), true
	}
	return false, false
}

// ParamsOf returns the Params matcher behind m: m itself when it is one,
// or the matcher a Struct binding was built from.
func ParamsOf(m any) (Matcher[Params], bool) {
	if b, ok := m.(interface{ paramsMatcher() Matcher[Params] }); ok {
		if pm := b.paramsMatcher(); pm != nil {
			return pm, true
		}
	}
	pm, ok := m.(Matcher[Params])
	return pm, ok
}

// describe returns the pattern notation of m when it has one.
func describe(m any) string {
	if s, ok := m.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

// Parse splits path into segments and runs p over them. It reports false
// when the path cannot be decoded, p fails, or segments are left over.
func Parse[T any](p Parser[T], path string) (T, bool) {
	var zero T

	parts, err := routepath.Split(path)
	if err != nil {
		return zero, false
	}
	v, rest, err := p.Parse(parts)
	if err != nil || len(rest) > 0 {
		return zero, false
	}
	return v, true
}

// Format renders v as an escaped path with a leading slash.
func Format[T any](f Formatter[T], v T) string {
	return routepath.Join(f.Format(v))
}
