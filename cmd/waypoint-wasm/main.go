//go:build js && wasm

// Command waypoint-wasm runs the demo application inside the browser.
// The page must contain an element with the data-waypoint-root attribute.
package main

import (
	"bytes"
	"context"
	"net/url"
	"syscall/js"

	"github.com/vango-dev/waypoint/internal/app"
	"github.com/vango-dev/waypoint/pkg/history"
	"github.com/vango-dev/waypoint/pkg/navctx"
	"github.com/vango-dev/waypoint/pkg/wasmnav"
)

func main() {
	backend := wasmnav.NewBackend()
	store := history.New(backend)
	cur := navctx.NewCurrentURL(store)
	defer cur.Close()
	ctx := navctx.WithCurrentURL(context.Background(), cur)

	root := js.Global().Get("document").Call("querySelector", "[data-waypoint-root]")
	render := func() {
		var buf bytes.Buffer
		if err := app.Page().Render(ctx, &buf); err != nil {
			js.Global().Get("console").Call("error", err.Error())
			return
		}
		root.Set("innerHTML", buf.String())
	}

	cur.Watch(func(*url.URL) { render() })
	release := wasmnav.InterceptLinks(store)
	defer release()
	defer backend.Release()

	render()
	select {}
}
