package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackendResolvesRelativeURLs(t *testing.T) {
	m := NewMemoryBackend("http://example.test/docs/intro")

	require.NoError(t, m.PushState(nil, "", "/search/cats?x=1"))
	assert.Equal(t, "http://example.test/search/cats?x=1", m.Location())

	require.NoError(t, m.PushState(nil, "", "dogs"))
	assert.Equal(t, "http://example.test/search/dogs", m.Location())
}

func TestMemoryBackendRejectsCrossOrigin(t *testing.T) {
	m := NewMemoryBackend("http://example.test/")
	assert.Error(t, m.PushState(nil, "", "https://evil.test/"))
	assert.Error(t, m.PushState(nil, "", "//evil.test/x"))
	assert.Equal(t, "http://example.test/", m.Location())
}

func TestMemoryBackendPushDiscardsForwardEntries(t *testing.T) {
	m := NewMemoryBackend("http://example.test/")
	require.NoError(t, m.PushState("s1", "", "/a"))
	require.NoError(t, m.PushState("s2", "", "/b"))

	assert.True(t, m.Back())
	assert.Equal(t, "s1", m.State())
	require.NoError(t, m.PushState(nil, "", "/c"))

	entries, index := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, 2, index)
	assert.Equal(t, "http://example.test/c", entries[2].URL)
	assert.False(t, m.Forward())
}

func TestMemoryBackendReplace(t *testing.T) {
	m := NewMemoryBackend("http://example.test/")
	require.NoError(t, m.ReplaceState("s", "Title", "/x"))

	entries, index := m.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 0, index)
	assert.Equal(t, Entry{URL: "http://example.test/x", State: "s", Title: "Title"}, entries[0])
}

func TestMemoryBackendGo(t *testing.T) {
	m := NewMemoryBackend("http://example.test/")
	pops := 0
	m.OnPopState(func() { pops++ })

	require.NoError(t, m.PushState(nil, "", "/a"))
	require.NoError(t, m.PushState(nil, "", "/b"))
	assert.Equal(t, 0, pops)

	assert.True(t, m.Go(-2))
	assert.Equal(t, "http://example.test/", m.Location())
	assert.False(t, m.Go(-1))
	assert.False(t, m.Go(0))
	assert.True(t, m.Go(2))
	assert.Equal(t, 2, pops)
}
