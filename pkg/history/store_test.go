package history

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const origin = "http://example.test"

func newStore(t *testing.T, opts ...Option) (*Store, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend(origin + "/")
	return New(backend, opts...), backend
}

func TestPushStateNotifiesInOrderWithNewURL(t *testing.T) {
	store, _ := newStore(t)

	var seen []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		store.Listen(func() {
			seen = append(seen, name+" "+store.Location())
		})
	}

	require.NoError(t, store.PushState(nil, "", "/search/cats"))

	assert.Equal(t, []string{
		"a " + origin + "/search/cats",
		"b " + origin + "/search/cats",
		"c " + origin + "/search/cats",
	}, seen)
}

func TestEachPushNotifiesExactlyOnce(t *testing.T) {
	store, _ := newStore(t)

	var calls int
	store.Listen(func() { calls++ })

	require.NoError(t, store.PushState(nil, "", "/a"))
	require.NoError(t, store.PushState(nil, "", "/b"))
	require.NoError(t, store.ReplaceState(nil, "", "/c"))

	assert.Equal(t, 3, calls)
}

func TestListenerRegisteredAfterPushIsNotCalled(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.PushState(nil, "", "/a"))

	called := false
	store.Listen(func() { called = true })
	assert.False(t, called)
}

func TestDispose(t *testing.T) {
	store, _ := newStore(t)

	var a, b int
	disposeA := store.Listen(func() { a++ })
	store.Listen(func() { b++ })
	assert.Equal(t, 2, store.Listeners())

	require.NoError(t, store.PushState(nil, "", "/one"))
	disposeA()
	disposeA()
	require.NoError(t, store.PushState(nil, "", "/two"))

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 1, store.Listeners())
}

func TestDisposeDuringRoundSkipsLaterListener(t *testing.T) {
	store, _ := newStore(t)

	var disposeB func()
	var order []string
	store.Listen(func() {
		order = append(order, "a")
		disposeB()
	})
	disposeB = store.Listen(func() { order = append(order, "b") })
	store.Listen(func() { order = append(order, "c") })

	require.NoError(t, store.PushState(nil, "", "/x"))
	assert.Equal(t, []string{"a", "c"}, order)
}

func TestReentrantPushRunsAfterCurrentRound(t *testing.T) {
	store, _ := newStore(t)

	var log []string
	store.Listen(func() {
		loc := store.Location()
		log = append(log, "first "+loc)
		if loc == origin+"/redirect" {
			require.NoError(t, store.ReplaceState(nil, "", "/target"))
		}
	})
	store.Listen(func() {
		log = append(log, "second "+store.Location())
	})

	require.NoError(t, store.PushState(nil, "", "/redirect"))

	// The backend moved on before the second listener ran, so it already
	// reads the new location; the replacement still gets its own round.
	assert.Equal(t, []string{
		"first " + origin + "/redirect",
		"second " + origin + "/target",
		"first " + origin + "/target",
		"second " + origin + "/target",
	}, log)
}

type failingBackend struct {
	*MemoryBackend
}

var errBackend = errors.New("socket closed")

func (failingBackend) PushState(any, string, string) error { return errBackend }

func TestFailedPushNotifiesNobody(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	backend := failingBackend{NewMemoryBackend(origin + "/")}
	store := New(backend, WithLogger(logger))

	called := false
	store.Listen(func() { called = true })

	err := store.PushState(nil, "", "/x")
	assert.ErrorIs(t, err, errBackend)
	assert.False(t, called)
	assert.Equal(t, origin+"/", store.Location())
	assert.Contains(t, buf.String(), "history navigation failed")
}

func TestPopStateNotifies(t *testing.T) {
	store, backend := newStore(t)
	require.NoError(t, store.PushState(nil, "", "/a"))
	require.NoError(t, store.PushState(nil, "", "/b"))

	var seen []string
	store.Listen(func() { seen = append(seen, store.Location()) })

	require.True(t, backend.Back())
	require.True(t, backend.Forward())
	assert.False(t, backend.Forward())

	assert.Equal(t, []string{origin + "/a", origin + "/b"}, seen)
}

func TestPanickingListenerDoesNotStopRound(t *testing.T) {
	store, _ := newStore(t, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	called := false
	store.Listen(func() { panic("boom") })
	store.Listen(func() { called = true })

	require.NoError(t, store.PushState(nil, "", "/x"))
	assert.True(t, called)

	// The store is still usable afterwards.
	called = false
	require.NoError(t, store.PushState(nil, "", "/y"))
	assert.True(t, called)
}

func TestConcurrentPushesEachGetOneRound(t *testing.T) {
	store, _ := newStore(t)

	var mu sync.Mutex
	rounds := 0
	store.Listen(func() {
		mu.Lock()
		rounds++
		mu.Unlock()
	})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.PushState(nil, "", "/p"))
		}()
	}
	wg.Wait()

	// The last notifying goroutine drains the queue before returning.
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, n, rounds)
}

type recordingObserver struct {
	mu   sync.Mutex
	navs []string
	runs []int
}

func (r *recordingObserver) ObserveNavigation(kind Kind, url string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := kind.String() + " " + url
	if err != nil {
		entry += " failed"
	}
	r.navs = append(r.navs, entry)
}

func (r *recordingObserver) ObserveNotify(kind Kind, listeners int, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, listeners)
}

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	store, backend := newStore(t, WithObserver(obs))
	store.Listen(func() {})
	store.Listen(func() {})

	require.NoError(t, store.PushState(nil, "", "/a"))
	require.NoError(t, store.ReplaceState(nil, "", "/b"))
	backend.Back()

	assert.Equal(t, []string{"push /a", "replace /b", "pop " + origin + "/"}, obs.navs)
	assert.Equal(t, []int{2, 2, 2}, obs.runs)
}

func TestNilListener(t *testing.T) {
	store, _ := newStore(t)
	dispose := store.Listen(nil)
	dispose()
	assert.Equal(t, 0, store.Listeners())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "push", KindPush.String())
	assert.Equal(t, "replace", KindReplace.String())
	assert.Equal(t, "pop", KindPop.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
