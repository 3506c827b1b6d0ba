// Package errors provides coded, structured errors for waypoint.
//
// Each code maps to a category, a short message and a longer explanation.
// Errors wrap their cause so errors.Is and errors.As keep working:
//
//	err := errors.New(errors.CodeUnregisteredVariant).
//	    WithDetail(`variant app.Post has no case`).
//	    WithSuggestion("add dispatch.On(\"Post\", ...) to the table")
//
//	fmt.Println(err.Format())
//	// ERROR W010: Route variant has no registered matcher
//	//
//	//   variant app.Post has no case
//	//
//	//   Hint: add dispatch.On("Post", ...) to the table
//
// Codes are grouped by category:
//   - W001-W009 runtime
//   - W010-W019 registry
//   - W020-W029 protocol
//   - W030-W039 config
//   - W040-W049 cli
package errors
