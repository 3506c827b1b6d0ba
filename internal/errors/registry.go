package errors

// Registered error codes.
const (
	CodeMissingProvider = "W001"
	CodeStoreClosed     = "W002"

	CodeUnregisteredVariant = "W010"
	CodeDuplicateTag        = "W011"
	CodeAmbiguousVariant    = "W012"
	CodeInvalidPattern      = "W013"
	CodeBindingMismatch     = "W014"
	CodeUnterminatedRoute   = "W015"

	CodeInvalidNavPath = "W020"
	CodeUnknownFrame   = "W021"
	CodeMalformedFrame = "W022"
	CodeConnection     = "W023"

	CodeInvalidConfig = "W030"
	CodeConfigRead    = "W031"

	CodeUnknownRoute    = "W040"
	CodeInvalidArgument = "W041"
)

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	CodeMissingProvider: {
		Category: CategoryRuntime,
		Message:  "Navigation context read outside its provider",
		Detail:   "The history store is supplied by navctx.WithHistory. Every component that reads it must render under a context derived from that call.",
	},
	CodeStoreClosed: {
		Category: CategoryRuntime,
		Message:  "History backend is closed",
		Detail:   "The native navigation backend no longer accepts state changes, usually because the browser connection went away.",
	},

	CodeUnregisteredVariant: {
		Category: CategoryRegistry,
		Message:  "Route variant has no registered matcher",
		Detail:   "Every variant of the route union needs exactly one dispatch case.",
	},
	CodeDuplicateTag: {
		Category: CategoryRegistry,
		Message:  "Route tag registered more than once",
		Detail:   "Tags identify variants and must be unique within a dispatch table.",
	},
	CodeAmbiguousVariant: {
		Category: CategoryRegistry,
		Message:  "Route variant claimed by several cases",
		Detail:   "A value of the union must unwrap under exactly one case so formatting is unambiguous.",
	},
	CodeInvalidPattern: {
		Category: CategoryRegistry,
		Message:  "Invalid route pattern",
		Detail:   "Patterns are slash-separated literals and :name or :name<int> captures.",
	},
	CodeBindingMismatch: {
		Category: CategoryRegistry,
		Message:  "Route struct does not match its matcher",
		Detail:   "Every route-tagged field must be captured by the matcher and every capture must have a field.",
	},
	CodeUnterminatedRoute: {
		Category: CategoryRegistry,
		Message:  "Route matcher does not end with End",
		Detail:   "A case that accepts a prefix shadows every later case it overlaps, because the first parse that succeeds wins even when segments are left over.",
	},

	CodeInvalidNavPath: {
		Category: CategoryProtocol,
		Message:  "Invalid navigation path",
		Detail:   "Navigation targets must be same-origin paths starting with a single slash.",
	},
	CodeUnknownFrame: {
		Category: CategoryProtocol,
		Message:  "Unknown frame type",
	},
	CodeMalformedFrame: {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
	},
	CodeConnection: {
		Category: CategoryProtocol,
		Message:  "WebSocket connection failed",
	},

	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	CodeConfigRead: {
		Category: CategoryConfig,
		Message:  "Configuration file could not be read",
	},

	CodeUnknownRoute: {
		Category: CategoryCLI,
		Message:  "Unknown route tag",
	},
	CodeInvalidArgument: {
		Category: CategoryCLI,
		Message:  "Invalid argument",
	},
}
