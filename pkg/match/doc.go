// Package match provides bidirectional route matchers.
//
// A Matcher is a parser and a formatter for one URL shape. Parsers consume
// decoded path segments and produce a value; formatters turn the value back
// into segments. Matchers are built from three primitives and composed with
// combinators, and every composition keeps the round-trip law:
//
//	m.Parse(m.Format(v)) == (v, [], nil)
//
// # Primitives
//
//	Lit("search")  // consumes exactly "search"
//	Str("query")   // consumes any segment, binds it under "query"
//	Int("year")    // like Str, for canonical base-10 integers
//	End()          // succeeds only when no segments remain
//
// Primitives produce Params, the record of bound captures. Then composes
// two Params matchers in sequence and merges their records:
//
//	search := match.Seq(match.Lit("search"), match.Str("query"), match.End())
//
// or, in pattern notation:
//
//	search := match.MustPattern("/search/:query")
//
// # Typed values
//
// Struct binds a Params matcher to a struct type. Fields are keyed by their
// `route:"name"` tag (or their lowercased name) and the binding is checked
// when Struct is called:
//
//	type Search struct {
//	    Query string `route:"query"`
//	}
//
//	var SearchMatch = match.Struct[Search](match.MustPattern("/search/:query"))
//
//	match.Format(SearchMatch, Search{Query: "dogs and cats"}) // "/search/dogs%20and%20cats"
//
// # Alternation
//
// Alt, Zero and OneOf work on parsers only. Each alternative sees the
// original input and the first success wins, so declaration order settles
// overlaps. There is deliberately no alternation formatter: a value is
// formatted by the matcher registered for its own shape (see package
// dispatch).
package match
