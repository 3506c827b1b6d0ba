// Package link turns anchor clicks into history pushes.
//
// A click is intercepted only when it is a plain primary-button click on a
// link that opens in the same browsing context. Everything else, such as a
// ctrl-click, a middle click, or a target="_blank" link, keeps the browser's
// native behavior.
package link

// Event is the part of a DOM click event the interception rule reads.
type Event interface {
	Button() int
	MetaKey() bool
	AltKey() bool
	CtrlKey() bool
	ShiftKey() bool
	PreventDefault()
	DefaultPrevented() bool
}

// ClickEvent is a plain Event, used by hosts that receive clicks as data
// and by tests.
type ClickEvent struct {
	MouseButton int
	Meta        bool
	Alt         bool
	Ctrl        bool
	Shift       bool
	Prevented   bool
}

func (e *ClickEvent) Button() int            { return e.MouseButton }
func (e *ClickEvent) MetaKey() bool          { return e.Meta }
func (e *ClickEvent) AltKey() bool           { return e.Alt }
func (e *ClickEvent) CtrlKey() bool          { return e.Ctrl }
func (e *ClickEvent) ShiftKey() bool         { return e.Shift }
func (e *ClickEvent) PreventDefault()        { e.Prevented = true }
func (e *ClickEvent) DefaultPrevented() bool { return e.Prevented }

// Navigator performs the push. *history.Store implements it.
type Navigator interface {
	PushState(state any, title, url string) error
}

// ShouldIntercept reports whether a click on a link with the given target
// should be handled in-app: primary button, no modifier keys, target empty
// or "_self", and not already prevented.
func ShouldIntercept(ev Event, target string) bool {
	if ev.DefaultPrevented() {
		return false
	}
	if ev.Button() != 0 {
		return false
	}
	if ev.MetaKey() || ev.AltKey() || ev.CtrlKey() || ev.ShiftKey() {
		return false
	}
	return target == "" || target == "_self"
}

// Handler returns a click handler for a link to href. When the click is
// intercepted it prevents the default navigation and pushes href;
// otherwise it does nothing. The error is the push's.
func Handler(nav Navigator, href, target string) func(Event) error {
	return func(ev Event) error {
		if !ShouldIntercept(ev, target) {
			return nil
		}
		ev.PreventDefault()
		return nav.PushState(nil, "", href)
	}
}

// Click is Handler with a caller-supplied onClick that runs first. If
// onClick prevents the default action the link does not navigate.
func Click(nav Navigator, href, target string, onClick func(Event)) func(Event) error {
	intercept := Handler(nav, href, target)
	return func(ev Event) error {
		if onClick != nil {
			onClick(ev)
		}
		return intercept(ev)
	}
}
