package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{name: "runtime", code: CodeMissingProvider, wantMsg: "Navigation context read outside its provider", wantCat: CategoryRuntime},
		{name: "registry", code: CodeUnregisteredVariant, wantMsg: "Route variant has no registered matcher", wantCat: CategoryRegistry},
		{name: "protocol", code: CodeInvalidNavPath, wantMsg: "Invalid navigation path", wantCat: CategoryProtocol},
		{name: "unknown", code: "W999", wantMsg: "Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantCat, err.Category)
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New(CodeDuplicateTag).WithDetail("tag %q", "Home")
	assert.Equal(t, `W011: Route tag registered more than once (tag "Home")`, err.Error())

	wrapped := New(CodeConfigRead).Wrap(io.ErrUnexpectedEOF)
	assert.Equal(t, "W031: Configuration file could not be read: unexpected EOF", wrapped.Error())
}

func TestIsAndAs(t *testing.T) {
	base := New(CodeInvalidNavPath).Wrap(io.EOF)
	outer := fmt.Errorf("handling frame: %w", base)

	assert.True(t, stderrors.Is(outer, io.EOF))
	assert.True(t, HasCode(outer, CodeInvalidNavPath))
	assert.False(t, HasCode(outer, CodeUnknownFrame))

	var e *Error
	require.True(t, stderrors.As(outer, &e))
	assert.Same(t, base, e)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, CodeConnection))

	e := FromError(io.EOF, CodeConnection)
	assert.Equal(t, CodeConnection, e.Code)
	assert.ErrorIs(t, e, io.EOF)

	existing := New(CodeUnknownFrame)
	assert.Same(t, existing, FromError(fmt.Errorf("x: %w", existing), CodeConnection))
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeUnregisteredVariant).
		WithDetail("variant app.Post has no case").
		WithSuggestion(`add dispatch.On("Post", ...)`)
	out := err.Format()

	assert.True(t, strings.HasPrefix(out, "ERROR W010: Route variant has no registered matcher\n"))
	assert.Contains(t, out, "variant app.Post has no case")
	assert.Contains(t, out, "Every variant of the route union")
	assert.Contains(t, out, `Hint: add dispatch.On("Post", ...)`)
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, io.EOF)
	assert.Equal(t, "ERROR: EOF\n", buf.String())

	buf.Reset()
	Fprint(&buf, fmt.Errorf("wrapped: %w", New(CodeUnknownRoute)))
	assert.Contains(t, buf.String(), "ERROR W040: Unknown route tag")
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 40), 20)
	require.Greater(t, len(lines), 1)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), 20)
	}
}
