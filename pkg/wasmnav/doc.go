// Package wasmnav connects the router packages to the browser when they run
// as WebAssembly (GOOS=js GOARCH=wasm).
//
//	store := history.New(wasmnav.NewBackend())
//	release := wasmnav.InterceptLinks(store)
//	defer release()
//
// Outside a js/wasm build the package is empty.
package wasmnav
