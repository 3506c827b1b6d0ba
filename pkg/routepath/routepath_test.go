package routepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []string
	}{
		{name: "root", path: "/", want: []string{}},
		{name: "empty", path: "", want: []string{}},
		{name: "simple", path: "/search/cats", want: []string{"search", "cats"}},
		{name: "trailing slash", path: "/search/cats/", want: []string{"search", "cats"}},
		{name: "no leading slash", path: "search/cats", want: []string{"search", "cats"}},
		{name: "repeated slashes", path: "//search///cats", want: []string{"search", "cats"}},
		{name: "query ignored", path: "/search/cats?page=2", want: []string{"search", "cats"}},
		{name: "fragment ignored", path: "/search/cats#top", want: []string{"search", "cats"}},
		{name: "percent decoded", path: "/search/dogs%20and%20cats", want: []string{"search", "dogs and cats"}},
		{name: "encoded slash stays in segment", path: "/a%2Fb/c", want: []string{"a/b", "c"}},
		{name: "unicode", path: "/search/%E2%9C%93", want: []string{"search", "✓"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Split(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSplitInvalidEscape(t *testing.T) {
	_, err := Split("/search/%GG")
	assert.ErrorIs(t, err, ErrInvalidPercentEscape)
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "/", Join(nil))
	assert.Equal(t, "/search/cats", Join([]string{"search", "cats"}))
	assert.Equal(t, "/search/dogs%20and%20cats", Join([]string{"search", "dogs and cats"}))
	assert.Equal(t, "/a%2Fb", Join([]string{"a/b"}))
}

func TestJoinSplitRoundTrip(t *testing.T) {
	inputs := [][]string{
		{"search", "dogs and cats"},
		{"a/b", "?", "#", "%"},
		{"ünïcode", "100%"},
		{"..", "."},
	}
	for _, parts := range inputs {
		got, err := Split(Join(parts))
		require.NoError(t, err)
		assert.Equal(t, parts, got)
	}
}

func TestPathOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "http://localhost:3000/search/cats?x=1", want: "/search/cats"},
		{in: "http://localhost:3000", want: "/"},
		{in: "/search/dogs%20and%20cats", want: "/search/dogs%20and%20cats"},
		{in: "/a#frag", want: "/a"},
		{in: "", want: "/"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, PathOf(tc.in), tc.in)
	}
}

func TestSplitPathAndQuery(t *testing.T) {
	p, q := SplitPathAndQuery("/path?a=1&b=2")
	assert.Equal(t, "/path", p)
	assert.Equal(t, "a=1&b=2", q)

	p, q = SplitPathAndQuery("/path")
	assert.Equal(t, "/path", p)
	assert.Empty(t, q)
}
