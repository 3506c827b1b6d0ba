package match

import "strconv"

// Params is the record of captures bound by a Path.
type Params map[string]string

func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Path is a Matcher over Params built from the primitives below. Besides
// parsing and formatting it knows the capture names it binds, which lets
// Struct check a binding when it is built.
type Path struct {
	parse  func(parts []string) (Params, []string, error)
	format func(p Params) []string
	keys   []string
	desc   string
	opaque bool
	ended  bool
}

// Parse implements Parser.
func (m Path) Parse(parts []string) (Params, []string, error) {
	if m.parse == nil {
		return Params{}, parts, nil
	}
	return m.parse(parts)
}

// Format implements Formatter.
func (m Path) Format(p Params) []string {
	if m.format == nil {
		return nil
	}
	return m.format(p)
}

// Keys returns the capture names in binding order. It returns nil for a
// path composed with a foreign Params matcher, whose captures are unknown.
func (m Path) Keys() []string {
	if m.opaque {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// KeysKnown reports whether Keys lists every capture. It is false once a
// foreign Params matcher is composed in.
func (m Path) KeysKnown() bool {
	return !m.opaque
}

// Terminated reports whether the path ends with End.
func (m Path) Terminated() bool {
	return m.ended
}

// String renders the path in pattern notation, e.g. "/search/:query".
func (m Path) String() string {
	if m.desc == "" {
		return "/"
	}
	return m.desc
}

func fail() (Params, []string, error) {
	return nil, nil, ErrNoMatch
}

// Lit matches one segment equal to segment (case-sensitive).
func Lit(segment string) Path {
	return Path{
		desc: "/" + segment,
		parse: func(parts []string) (Params, []string, error) {
			if len(parts) == 0 || parts[0] != segment {
				return fail()
			}
			return Params{}, parts[1:], nil
		},
		format: func(Params) []string {
			return []string{segment}
		},
	}
}

// Str captures one segment under name.
func Str(name string) Path {
	return Path{
		desc: "/:" + name,
		keys: []string{name},
		parse: func(parts []string) (Params, []string, error) {
			if len(parts) == 0 {
				return fail()
			}
			return Params{name: parts[0]}, parts[1:], nil
		},
		format: func(p Params) []string {
			return []string{p[name]}
		},
	}
}

// Int captures one segment under name if it is a canonical base-10
// integer. "7" and "-7" match, "07" and "+7" do not, so formatting a parsed
// value always reproduces the segment.
func Int(name string) Path {
	return Path{
		desc: "/:" + name + "<int>",
		keys: []string{name},
		parse: func(parts []string) (Params, []string, error) {
			if len(parts) == 0 {
				return fail()
			}
			n, err := strconv.Atoi(parts[0])
			if err != nil || strconv.Itoa(n) != parts[0] {
				return fail()
			}
			return Params{name: parts[0]}, parts[1:], nil
		},
		format: func(p Params) []string {
			return []string{p[name]}
		},
	}
}

// End matches only when no segments remain. Every complete route ends with
// End; without it Lit("search") would also accept "/search/extra".
func End() Path {
	return Path{
		ended: true,
		parse: func(parts []string) (Params, []string, error) {
			if len(parts) != 0 {
				return fail()
			}
			return Params{}, parts, nil
		},
		format: func(Params) []string {
			return nil
		},
	}
}

// Then runs a and feeds the segments it leaves to b. The bound records are
// merged; a name bound on both sides with different values is a non-match.
// A failure in b fails the whole match without retrying a.
func Then(a, b Matcher[Params]) Path {
	pa, pb := asPath(a), asPath(b)

	return Path{
		desc:   pa.desc + pb.desc,
		keys:   unionKeys(pa.keys, pb.keys),
		opaque: pa.opaque || pb.opaque,
		ended:  pb.ended,
		parse: func(parts []string) (Params, []string, error) {
			left, rest, err := a.Parse(parts)
			if err != nil {
				return fail()
			}
			right, rest, err := b.Parse(rest)
			if err != nil {
				return fail()
			}
			merged := left.clone()
			for k, v := range right {
				if prev, ok := merged[k]; ok && prev != v {
					return fail()
				}
				merged[k] = v
			}
			return merged, rest, nil
		},
		format: func(p Params) []string {
			return append(a.Format(p), b.Format(p)...)
		},
	}
}

// Seq is the left fold of Then. Seq() matches the empty prefix.
func Seq(ms ...Matcher[Params]) Path {
	out := Path{}
	for i, m := range ms {
		if i == 0 {
			out = asPath(m)
			continue
		}
		out = Then(out, m)
	}
	return out
}

func asPath(m Matcher[Params]) Path {
	if p, ok := m.(Path); ok {
		return p
	}
	desc := describe(m)
	if desc == "" || desc == "/" {
		desc = "/<custom>"
	}
	ended, _ := Terminated(m)
	return Path{
		desc:   desc,
		opaque: true,
		ended:  ended,
		parse:  m.Parse,
		format: m.Format,
	}
}

func unionKeys(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, k := range b {
		if !containsKey(out, k) {
			out = append(out, k)
		}
	}
	return out
}

func containsKey(keys []string, k string) bool {
	for _, existing := range keys {
		if existing == k {
			return true
		}
	}
	return false
}
