// Package app is the demo application: its routes, the route union and the
// pages rendered for each route.
package app

import (
	"github.com/vango-dev/waypoint/pkg/dispatch"
	"github.com/vango-dev/waypoint/pkg/match"
)

// Tag identifies a variant of Route.
type Tag string

const (
	TagHome   Tag = "Home"
	TagSearch Tag = "Search"
	TagPost   Tag = "Post"
)

// Route is the closed union of the application's routes. Only the types in
// this package implement it.
type Route interface {
	isRoute()
	Tag() Tag
}

// Home is "/".
type Home struct{}

// Search is "/search/:query".
type Search struct {
	Query string `route:"query"`
}

// Post is "/posts/:year<int>/:slug".
type Post struct {
	Year int    `route:"year"`
	Slug string `route:"slug"`
}

func (Home) isRoute()   {}
func (Search) isRoute() {}
func (Post) isRoute()   {}

func (Home) Tag() Tag   { return TagHome }
func (Search) Tag() Tag { return TagSearch }
func (Post) Tag() Tag   { return TagPost }

// Matchers for each route shape.
var (
	HomeMatch = match.Struct[Home](match.End())

	SearchMatch = match.Struct[Search](match.Seq(
		match.Lit("search"),
		match.Str("query"),
		match.End(),
	))

	PostMatch = match.Struct[Post](match.MustPattern("/posts/:year<int>/:slug"))
)

// Variants lists one value of every Route type. Routes refuses to build
// unless each has exactly one case.
var Variants = []Route{Home{}, Search{}, Post{}}

// Routes is the dispatch table, tried in declaration order.
var Routes = dispatch.MustNew(Variants,
	on(HomeMatch),
	on(SearchMatch),
	on(PostMatch),
)

// on declares the case for R under R's own tag.
func on[R Route](m match.Matcher[R]) dispatch.Case[Route] {
	var zero R
	return dispatch.On(string(zero.Tag()), m,
		func(r R) Route { return r },
		func(u Route) (R, bool) {
			r, ok := u.(R)
			return r, ok
		},
	)
}

// Parse returns the route for path.
func Parse(path string) (Route, bool) {
	return Routes.Parse(path)
}

// Href returns the path of r.
func Href(r Route) string {
	return Routes.Format(r)
}
