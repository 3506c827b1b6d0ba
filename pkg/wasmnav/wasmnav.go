//go:build js && wasm

package wasmnav

import (
	"syscall/js"

	"github.com/vango-dev/waypoint/pkg/history"
	"github.com/vango-dev/waypoint/pkg/link"
)

// Backend is a history.Backend over window.history.
type Backend struct {
	window js.Value
	funcs  []js.Func
}

// NewBackend binds to the global window.
func NewBackend() *Backend {
	return &Backend{window: js.Global()}
}

// Location implements history.Backend.
func (b *Backend) Location() string {
	return b.window.Get("location").Get("href").String()
}

// PushState implements history.Backend.
func (b *Backend) PushState(state any, title, url string) error {
	return b.call("pushState", state, title, url)
}

// ReplaceState implements history.Backend.
func (b *Backend) ReplaceState(state any, title, url string) error {
	return b.call("replaceState", state, title, url)
}

// OnPopState implements history.Backend.
func (b *Backend) OnPopState(fn func()) {
	cb := js.FuncOf(func(js.Value, []js.Value) any {
		fn()
		return nil
	})
	b.funcs = append(b.funcs, cb)
	b.window.Call("addEventListener", "popstate", cb)
}

// Release frees the JavaScript callbacks. The backend must not be used
// afterwards.
func (b *Backend) Release() {
	for _, f := range b.funcs {
		b.window.Call("removeEventListener", "popstate", f)
		f.Release()
	}
	b.funcs = nil
}

func (b *Backend) call(method string, state any, title, url string) (err error) {
	// The history API throws a SecurityError for cross-origin URLs;
	// syscall/js turns that into a panic with a js.Error.
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(js.Error); ok {
				err = jsErr
				return
			}
			panic(r)
		}
	}()
	b.window.Get("history").Call(method, jsState(state), title, url)
	return nil
}

func jsState(state any) any {
	switch state.(type) {
	case nil, string, bool, int, float64, js.Value:
		return state
	default:
		return nil
	}
}

// event adapts a DOM MouseEvent to link.Event.
type event struct{ v js.Value }

func (e event) Button() int            { return e.v.Get("button").Int() }
func (e event) MetaKey() bool          { return e.v.Get("metaKey").Bool() }
func (e event) AltKey() bool           { return e.v.Get("altKey").Bool() }
func (e event) CtrlKey() bool          { return e.v.Get("ctrlKey").Bool() }
func (e event) ShiftKey() bool         { return e.v.Get("shiftKey").Bool() }
func (e event) PreventDefault()        { e.v.Call("preventDefault") }
func (e event) DefaultPrevented() bool { return e.v.Get("defaultPrevented").Bool() }

// InterceptLinks installs one delegated click listener on document that
// routes clicks on a[data-link] through link.Handler. The returned
// function removes it.
func InterceptLinks(store *history.Store) (release func()) {
	doc := js.Global().Get("document")
	origin := js.Global().Get("location").Get("origin").String()

	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		ev := args[0]
		target := ev.Get("target")
		if target.IsNull() || target.Get("closest").IsUndefined() {
			return nil
		}
		a := target.Call("closest", "a[data-link]")
		if a.IsNull() || a.Get("origin").String() != origin {
			return nil
		}
		href := a.Get("pathname").String() + a.Get("search").String()
		anchorTarget := ""
		if t := a.Call("getAttribute", "target"); !t.IsNull() {
			anchorTarget = t.String()
		}
		if err := link.Handler(store, href, anchorTarget)(event{ev}); err != nil {
			js.Global().Get("console").Call("warn", "waypoint:", err.Error())
		}
		return nil
	})
	doc.Call("addEventListener", "click", cb)

	return func() {
		doc.Call("removeEventListener", "click", cb)
		cb.Release()
	}
}
