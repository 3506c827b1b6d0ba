package wsnav

import (
	"encoding/json"

	"github.com/vango-dev/waypoint/internal/errors"
	"github.com/vango-dev/waypoint/pkg/link"
)

// Frame types. The first three are sent by the browser, the rest by the
// server.
const (
	FrameHello    = "hello"
	FrameClick    = "click"
	FramePopState = "popstate"

	FramePush    = "push"
	FrameReplace = "replace"
	FrameRender  = "render"
	FrameError   = "error"
)

// Frame is one JSON text message. T selects which other fields are set.
type Frame struct {
	T string `json:"t"`

	// hello, popstate, push, replace
	URL string `json:"url,omitempty"`

	// click
	Href      string `json:"href,omitempty"`
	Target    string `json:"target,omitempty"`
	Button    int    `json:"button,omitempty"`
	Meta      bool   `json:"meta,omitempty"`
	Alt       bool   `json:"alt,omitempty"`
	Ctrl      bool   `json:"ctrl,omitempty"`
	Shift     bool   `json:"shift,omitempty"`
	Prevented bool   `json:"prevented,omitempty"`

	// render
	HTML string `json:"html,omitempty"`

	// error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ClickEvent converts a click frame to the event link handlers read.
func (f Frame) ClickEvent() *link.ClickEvent {
	return &link.ClickEvent{
		MouseButton: f.Button,
		Meta:        f.Meta,
		Alt:         f.Alt,
		Ctrl:        f.Ctrl,
		Shift:       f.Shift,
		Prevented:   f.Prevented,
	}
}

// DecodeFrame parses a client frame and checks the fields its type needs.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, errors.New(errors.CodeMalformedFrame).Wrap(err)
	}
	switch f.T {
	case FrameHello, FramePopState:
		if f.URL == "" {
			return Frame{}, errors.New(errors.CodeMalformedFrame).WithDetail("%s frame without url", f.T)
		}
	case FrameClick:
		if f.Href == "" {
			return Frame{}, errors.New(errors.CodeMalformedFrame).WithDetail("click frame without href")
		}
	case "":
		return Frame{}, errors.New(errors.CodeMalformedFrame).WithDetail("frame without type")
	default:
		return Frame{}, errors.New(errors.CodeUnknownFrame).WithDetail("type %q", f.T)
	}
	return f, nil
}

// Encode marshals f.
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// errorFrame reports err to the browser. Errors without a code are sent as
// connection errors.
func errorFrame(err error) Frame {
	e := errors.FromError(err, errors.CodeConnection)
	f := Frame{T: FrameError, Code: e.Code, Message: e.Message}
	switch {
	case e.Detail != "":
		f.Message += ": " + e.Detail
	case e.Wrapped != nil:
		f.Message += ": " + e.Wrapped.Error()
	}
	return f
}
