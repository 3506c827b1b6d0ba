package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/waypoint/internal/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoutes(t *testing.T) {
	out, err := run(t, "routes")
	require.NoError(t, err)
	assert.Equal(t, "TAG     PATTERN\n"+
		"Home    /\n"+
		"Search  /search/:query\n"+
		"Post    /posts/:year<int>/:slug\n", out)
}

func TestParse(t *testing.T) {
	out, err := run(t, "parse", "/search/dogs%20and%20cats", "/posts/2022/type-safe-routing")
	require.NoError(t, err)
	assert.Contains(t, out, `Search  {"Query":"dogs and cats"}`)
	assert.Contains(t, out, `Post    {"Year":2022,"Slug":"type-safe-routing"}`)
}

func TestParseMiss(t *testing.T) {
	out, err := run(t, "parse", "/", "/abcdef")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnknownRoute))
	assert.Contains(t, out, "no match")
	assert.Contains(t, err.Error(), "/abcdef")
}

func TestFormat(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"Home"}, "/\n"},
		{[]string{"Search", "query=dogs and cats"}, "/search/dogs%20and%20cats\n"},
		{[]string{"Post", "year=2022", "slug=type-safe-routing"}, "/posts/2022/type-safe-routing\n"},
	}
	for _, tc := range tests {
		t.Run(tc.args[0], func(t *testing.T) {
			out, err := run(t, append([]string{"format"}, tc.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown tag", []string{"Nope"}, errors.CodeUnknownRoute},
		{"not name=value", []string{"Search", "dogs"}, errors.CodeInvalidArgument},
		{"unknown capture", []string{"Search", "query=x", "page=2"}, errors.CodeInvalidArgument},
		{"bad int", []string{"Post", "year=twenty", "slug=x"}, errors.CodeInvalidArgument},
		{"missing capture", []string{"Search"}, errors.CodeInvalidArgument},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, append([]string{"format"}, tc.args...)...)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tc.code), "%v", err)
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Go version:")
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "waypoint.json"),
		[]byte(`{"server": {"addr": "localhost:4000"}}`), 0o644))

	cfg, err := loadConfig(dir, ":9090", "debug")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, err = loadConfig(dir, "", "chatty")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))
}
