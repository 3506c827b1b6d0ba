// Package navctx supplies one history store to a render tree.
//
// The store travels in a context.Context. A provider installs it with
// WithHistory and every component rendered under that context reads it with
// Use. Reading it anywhere else is a wiring bug, so Use panics with a
// *MissingProviderError instead of returning something to recover from.
package navctx

import (
	"context"
	"fmt"

	"github.com/vango-dev/waypoint/internal/errors"
	"github.com/vango-dev/waypoint/pkg/history"
	"github.com/vango-dev/waypoint/pkg/routepath"
)

type (
	storeKey   struct{}
	currentKey struct{}
)

// MissingProviderError reports a read of the navigation context outside
// WithHistory.
type MissingProviderError struct {
	// Consumer names what tried to read the store, when known.
	Consumer string
}

func (e *MissingProviderError) Error() string {
	if e.Consumer == "" {
		return "navctx: history store read outside its provider"
	}
	return fmt.Sprintf("navctx: %s read the history store outside its provider", e.Consumer)
}

// Unwrap exposes the coded error so errors.HasCode matches W001.
func (e *MissingProviderError) Unwrap() error {
	return errors.New(errors.CodeMissingProvider).
		WithSuggestion("wrap the render context with navctx.WithHistory")
}

// WithHistory returns a context that provides store to everything derived
// from it.
func WithHistory(ctx context.Context, store *history.Store) context.Context {
	if store == nil {
		panic("navctx: WithHistory with nil store")
	}
	return context.WithValue(ctx, storeKey{}, store)
}

// FromContext returns the provided store or a *MissingProviderError.
func FromContext(ctx context.Context) (*history.Store, error) {
	if ctx != nil {
		if s, ok := ctx.Value(storeKey{}).(*history.Store); ok {
			return s, nil
		}
	}
	return nil, &MissingProviderError{}
}

// Use returns the provided store and panics outside a provider.
func Use(ctx context.Context) *history.Store {
	return use(ctx, "")
}

func use(ctx context.Context, consumer string) *history.Store {
	s, err := FromContext(ctx)
	if err != nil {
		panic(&MissingProviderError{Consumer: consumer})
	}
	return s
}

// UseNamed is Use with the consumer's name in the panic value.
func UseNamed(ctx context.Context, consumer string) *history.Store {
	return use(ctx, consumer)
}

// WithCurrentURL provides cur next to its store. Hosts that re-render from
// cur.Watch install it so the render reads the value the watcher saw.
func WithCurrentURL(ctx context.Context, cur *CurrentURL) context.Context {
	if cur == nil {
		panic("navctx: WithCurrentURL with nil value")
	}
	return context.WithValue(WithHistory(ctx, cur.store), currentKey{}, cur)
}

// CurrentURLFrom returns the provided CurrentURL, if any.
func CurrentURLFrom(ctx context.Context) (*CurrentURL, bool) {
	if ctx == nil {
		return nil, false
	}
	cur, ok := ctx.Value(currentKey{}).(*CurrentURL)
	return cur, ok
}

// UseCurrentRoute parses the current path with parse, typically a dispatch
// table's Parse method. It reads the provided CurrentURL when there is one
// and the store's location otherwise.
func UseCurrentRoute[U any](ctx context.Context, parse func(path string) (U, bool)) (U, bool) {
	if cur, ok := CurrentURLFrom(ctx); ok {
		return CurrentRoute(cur, parse)
	}
	s := use(ctx, "UseCurrentRoute")
	return parse(routepath.PathOf(s.Location()))
}
