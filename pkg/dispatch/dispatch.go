// Package dispatch maps paths to values of a closed route union and back.
//
// A Table is declared once, at package initialization, from the list of
// union variants and one Case per variant:
//
//	var Routes = dispatch.MustNew(
//	    []Route{Home{}, Search{}},
//	    dispatch.On("Home", HomeMatch, wrapHome, unwrapHome),
//	    dispatch.On("Search", SearchMatch, wrapSearch, unwrapSearch),
//	)
//
// New checks that every variant is claimed by exactly one case, so a
// variant added to the union without a case fails at startup rather than
// when a link to it is first rendered.
//
// Parse tries the cases in declaration order and returns the first match.
// Format picks the single case that claims the value and runs its
// formatter.
package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/vango-dev/waypoint/internal/errors"
	"github.com/vango-dev/waypoint/pkg/match"
	"github.com/vango-dev/waypoint/pkg/routepath"
)

// Case connects one variant of the union U to its matcher.
type Case[U any] struct {
	tag     string
	pattern string
	parser  match.Parser[U]
	format  func(U) ([]string, bool)

	params match.Matcher[match.Params]
	open   bool
}

// On declares the case for the variant T of U. wrap injects a parsed T into
// the union; unwrap reports whether a union value is a T and extracts it.
func On[T, U any](tag string, m match.Matcher[T], wrap func(T) U, unwrap func(U) (T, bool)) Case[U] {
	pattern := "?"
	if s, ok := m.(fmt.Stringer); ok {
		pattern = s.String()
	}
	params, _ := match.ParamsOf(m)
	ended, known := match.Terminated(m)
	return Case[U]{
		tag:     tag,
		pattern: pattern,
		params:  params,
		open:    known && !ended,
		parser:  match.Map[T, U](m, wrap),
		format: func(u U) ([]string, bool) {
			t, ok := unwrap(u)
			if !ok {
				return nil, false
			}
			return m.Format(t), true
		},
	}
}

// Tag returns the case's tag.
func (c Case[U]) Tag() string { return c.tag }

// Pattern describes the case's matcher, e.g. "/search/:query".
func (c Case[U]) Pattern() string { return c.pattern }

func (c Case[U]) claims(u U) bool {
	_, ok := c.format(u)
	return ok
}

// Observer is notified of every Parse call.
type Observer interface {
	ObserveParse(tag string, matched bool, elapsed time.Duration)
}

// Table is an immutable dispatch table over the union U.
type Table[U any] struct {
	cases    []Case[U]
	parser   match.Parser[tagged[U]]
	observer Observer
}

type tagged[U any] struct {
	tag   string
	value U
}

// New builds a table. variants lists one value of every member of the
// union; each must be claimed by exactly one case and each case must claim
// a variant. Tags must be unique, and a case whose matcher reports that it
// does not end with End is rejected.
func New[U any](variants []U, cases ...Case[U]) (*Table[U], error) {
	tags := lo.Map(cases, func(c Case[U], _ int) string { return c.tag })
	if dups := lo.FindDuplicates(tags); len(dups) > 0 {
		return nil, errors.New(errors.CodeDuplicateTag).WithDetail("tags %q", dups)
	}

	if c, ok := lo.Find(cases, func(c Case[U]) bool { return c.open }); ok {
		return nil, errors.New(errors.CodeUnterminatedRoute).
			WithDetail("case %q (%s) accepts paths with trailing segments", c.tag, c.pattern).
			WithSuggestion("end the matcher with match.End()")
	}

	claimed := make(map[string]bool, len(cases))
	for _, v := range variants {
		owners := lo.Filter(cases, func(c Case[U], _ int) bool { return c.claims(v) })
		switch len(owners) {
		case 0:
			return nil, errors.New(errors.CodeUnregisteredVariant).
				WithDetail("variant %T has no case", v).
				WithSuggestion(fmt.Sprintf("add dispatch.On(%q, ...) to the table", fmt.Sprintf("%T", v)))
		case 1:
			claimed[owners[0].tag] = true
		default:
			return nil, errors.New(errors.CodeAmbiguousVariant).
				WithDetail("variant %T is claimed by %q", v, lo.Map(owners, func(c Case[U], _ int) string { return c.tag }))
		}
	}
	for _, tag := range tags {
		if !claimed[tag] {
			return nil, errors.New(errors.CodeUnregisteredVariant).
				WithDetail("case %q claims no declared variant", tag).
				WithSuggestion("list the variant in the table's variants")
		}
	}

	parsers := lo.Map(cases, func(c Case[U], _ int) match.Parser[tagged[U]] {
		tag := c.tag
		return match.Map[U, tagged[U]](c.parser, func(u U) tagged[U] {
			return tagged[U]{tag: tag, value: u}
		})
	})

	return &Table[U]{
		cases:  cases,
		parser: match.OneOf(parsers...),
	}, nil
}

// MustNew is like New but panics on error.
func MustNew[U any](variants []U, cases ...Case[U]) *Table[U] {
	t, err := New(variants, cases...)
	if err != nil {
		panic(err)
	}
	return t
}

// WithObserver returns a copy of t that reports to o.
func (t *Table[U]) WithObserver(o Observer) *Table[U] {
	cp := *t
	cp.observer = o
	return &cp
}

// Parse returns the union value for path, or false when no case matches
// the whole path. Only the path is considered; query and fragment are
// ignored.
func (t *Table[U]) Parse(path string) (U, bool) {
	start := time.Now()
	v, ok := match.Parse(t.parser, path)
	if t.observer != nil {
		t.observer.ObserveParse(v.tag, ok, time.Since(start))
	}
	return v.value, ok
}

// ParseTag is Parse that also returns the tag of the matching case.
func (t *Table[U]) ParseTag(path string) (string, U, bool) {
	v, ok := match.Parse(t.parser, path)
	return v.tag, v.value, ok
}

// Format renders u through the case that claims it. It panics if no case
// does, which New rules out for every declared variant.
func (t *Table[U]) Format(u U) string {
	for _, c := range t.cases {
		if parts, ok := c.format(u); ok {
			return routepath.Join(parts)
		}
	}
	panic(errors.New(errors.CodeUnregisteredVariant).WithDetail("value %T has no case", u))
}

// FormatParams builds the path of the case tagged tag from raw captures,
// as typed on a command line. The path is parsed back and must resolve to
// the same case, so only values the case accepts come out, and the result
// is formatted from the parsed value.
func (t *Table[U]) FormatParams(tag string, params match.Params) (string, error) {
	c, ok := lo.Find(t.cases, func(c Case[U]) bool { return c.tag == tag })
	if !ok {
		return "", errors.New(errors.CodeUnknownRoute).
			WithDetail("tag %q", tag).
			WithSuggestion("one of: " + strings.Join(t.Tags(), ", "))
	}
	if c.params == nil {
		return "", errors.New(errors.CodeInvalidArgument).
			WithDetail("case %q is not built from captures", tag)
	}

	if p, ok := c.params.(match.Path); ok && p.KeysKnown() {
		keys := p.Keys()
		names := lo.Keys(map[string]string(params))
		if extra := lo.Without(names, keys...); len(extra) > 0 {
			return "", errors.New(errors.CodeInvalidArgument).
				WithDetail("%s has no capture %q", c.pattern, extra[0])
		}
		if missing := lo.Without(keys, names...); len(missing) > 0 {
			return "", errors.New(errors.CodeInvalidArgument).
				WithDetail("%s needs a value for %q", c.pattern, missing[0])
		}
	}

	got, u, ok := t.ParseTag(match.Format[match.Params](c.params, params))
	if !ok || got != tag {
		return "", errors.New(errors.CodeInvalidArgument).
			WithDetail("%v is not a valid %s", map[string]string(params), tag).
			WithSuggestion("pattern is " + c.pattern)
	}
	return t.Format(u), nil
}

// Tag returns the tag of the case that claims u.
func (t *Table[U]) Tag(u U) (string, bool) {
	c, ok := lo.Find(t.cases, func(c Case[U]) bool { return c.claims(u) })
	return c.tag, ok
}

// Cases returns the cases in declaration order.
func (t *Table[U]) Cases() []Case[U] {
	return append([]Case[U](nil), t.cases...)
}

// Tags returns the tags in declaration order.
func (t *Table[U]) Tags() []string {
	return lo.Map(t.cases, func(c Case[U], _ int) string { return c.tag })
}
