package navctx

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/waypoint/internal/errors"
	"github.com/vango-dev/waypoint/pkg/history"
)

func newStore() (*history.Store, *history.MemoryBackend) {
	backend := history.NewMemoryBackend("http://example.test/")
	return history.New(backend), backend
}

func TestProvider(t *testing.T) {
	store, _ := newStore()
	ctx := WithHistory(context.Background(), store)

	got, err := FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, store, got)
	assert.Same(t, store, Use(ctx))

	type childKey struct{}
	child := context.WithValue(ctx, childKey{}, 1)
	assert.Same(t, store, Use(child))
}

func TestMissingProvider(t *testing.T) {
	_, err := FromContext(context.Background())
	var missing *MissingProviderError
	require.ErrorAs(t, err, &missing)
	assert.True(t, errors.HasCode(err, errors.CodeMissingProvider))

}

func TestUsePanicsOutsideProvider(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*MissingProviderError)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, "Link", err.Consumer)
		assert.Contains(t, err.Error(), "Link read the history store")
	}()
	UseNamed(context.Background(), "Link")
}

func TestWithHistoryNilStorePanics(t *testing.T) {
	assert.Panics(t, func() { WithHistory(context.Background(), nil) })
}

func TestCurrentURLFollowsStore(t *testing.T) {
	store, backend := newStore()
	cur := NewCurrentURL(store)
	defer cur.Close()

	assert.Equal(t, "/", cur.Path())
	assert.Equal(t, uint64(0), cur.Version())

	require.NoError(t, store.PushState(nil, "", "/search/dogs%20and%20cats?sort=new"))
	assert.Equal(t, "/search/dogs%20and%20cats", cur.Path())
	assert.Equal(t, "dogs and cats", strings.TrimPrefix(cur.Get().Path, "/search/"))
	assert.Equal(t, "new", cur.Get().Query().Get("sort"))
	assert.Equal(t, uint64(1), cur.Version())

	backend.Back()
	assert.Equal(t, "/", cur.Path())
	assert.Equal(t, uint64(2), cur.Version())
}

func TestWatchRunsOncePerNotification(t *testing.T) {
	store, _ := newStore()
	cur := NewCurrentURL(store)

	var seen []string
	dispose := cur.Watch(func(u *url.URL) { seen = append(seen, u.Path) })

	require.NoError(t, store.PushState(nil, "", "/a"))
	require.NoError(t, store.PushState(nil, "", "/a"))
	require.NoError(t, store.ReplaceState(nil, "", "/b"))
	dispose()
	require.NoError(t, store.PushState(nil, "", "/c"))

	assert.Equal(t, []string{"/a", "/a", "/b"}, seen)
}

func TestGetReturnsCopy(t *testing.T) {
	store, _ := newStore()
	cur := NewCurrentURL(store)

	cur.Get().Path = "/mutated"
	assert.Equal(t, "/", cur.Path())
}

func TestCloseStopsFollowing(t *testing.T) {
	store, _ := newStore()
	cur := NewCurrentURL(store)
	assert.Equal(t, 1, store.Listeners())

	calls := 0
	cur.Watch(func(*url.URL) { calls++ })
	cur.Close()
	assert.Equal(t, 0, store.Listeners())

	require.NoError(t, store.PushState(nil, "", "/a"))
	assert.Equal(t, 0, calls)
	assert.Equal(t, "/", cur.Path())
}

func TestCurrentRoute(t *testing.T) {
	store, _ := newStore()
	cur := NewCurrentURL(store)

	parse := func(path string) (string, bool) {
		if path == "/" {
			return "home", true
		}
		return "", false
	}

	got, ok := CurrentRoute(cur, parse)
	assert.True(t, ok)
	assert.Equal(t, "home", got)

	require.NoError(t, store.PushState(nil, "", "/abcdef"))
	_, ok = CurrentRoute(cur, parse)
	assert.False(t, ok)

	ctx := WithHistory(context.Background(), store)
	_, ok = UseCurrentRoute(ctx, parse)
	assert.False(t, ok)

	assert.Panics(t, func() { UseCurrentRoute(context.Background(), parse) })
}

func TestWithCurrentURL(t *testing.T) {
	store, _ := newStore()
	cur := NewCurrentURL(store)
	ctx := WithCurrentURL(context.Background(), cur)

	got, ok := CurrentURLFrom(ctx)
	require.True(t, ok)
	assert.Same(t, cur, got)
	assert.Same(t, store, Use(ctx))

	_, ok = CurrentURLFrom(WithHistory(context.Background(), store))
	assert.False(t, ok)
	assert.Panics(t, func() { WithCurrentURL(context.Background(), nil) })
}

func TestUseCurrentRouteReadsWatchedValue(t *testing.T) {
	store, _ := newStore()
	cur := NewCurrentURL(store)
	ctx := WithCurrentURL(context.Background(), cur)
	parse := func(path string) (string, bool) { return path, true }

	var seen []string
	renders := 0
	cur.Watch(func(u *url.URL) {
		renders++
		got, _ := UseCurrentRoute(ctx, parse)
		seen = append(seen, got)
	})

	require.NoError(t, store.PushState(nil, "", "/a"))
	require.NoError(t, store.PushState(nil, "", "/b?q=1"))
	require.NoError(t, store.ReplaceState(nil, "", "/c"))

	assert.Equal(t, 3, renders)
	assert.Equal(t, uint64(3), cur.Version())
	assert.Equal(t, []string{"/a", "/b", "/c"}, seen)
}
