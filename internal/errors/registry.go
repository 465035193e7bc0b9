package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (R001-R009)
	// ============================================

	"R001": {
		Category: CategoryConfig,
		Message:  "No publish capability configured",
		Detail:   "A route targets a named event, but the router was built without a publish function to deliver it.",
		DocURL:   "https://navroute.dev/docs/errors/R001",
	},
	"R004": {
		Category: CategoryConfig,
		Message:  "No browser configured",
		Detail:   "The router needs a browser capability to read the location and bind links.",
		DocURL:   "https://navroute.dev/docs/errors/R004",
	},
	"R005": {
		Category: CategoryConfig,
		Message:  "Invalid route target",
		Detail:   "A route target must be a non-nil callback or a non-empty event name.",
		DocURL:   "https://navroute.dev/docs/errors/R005",
	},

	"R007": {
		Category: CategoryConfig,
		Message:  "Invalid link selector",
		Detail:   "The link selector is not a supported CSS selector.",
		DocURL:   "https://navroute.dev/docs/errors/R007",
	},

	// ============================================
	// Pattern Errors (R002-R006)
	// ============================================

	"R002": {
		Category: CategoryPattern,
		Message:  "Empty parameter name",
		Detail:   "A ':' in a path template must be followed by at least one word character.",
		DocURL:   "https://navroute.dev/docs/errors/R002",
	},
	"R003": {
		Category: CategoryPattern,
		Message:  "Duplicate parameter name",
		Detail:   "Parameter names must be unique within a path template.",
		DocURL:   "https://navroute.dev/docs/errors/R003",
	},
	"R006": {
		Category: CategoryPattern,
		Message:  "Missing parameter value",
		Detail:   "Building a path requires a word-character value for every parameter of the template.",
		DocURL:   "https://navroute.dev/docs/errors/R006",
	},

	// ============================================
	// Manifest Errors (R010-R019)
	// ============================================

	"R010": {
		Category: CategoryManifest,
		Message:  "Manifest could not be read",
		Detail:   "The route manifest source could not be opened or downloaded.",
		DocURL:   "https://navroute.dev/docs/errors/R010",
	},
	"R011": {
		Category: CategoryManifest,
		Message:  "Manifest could not be parsed",
		Detail:   "The route manifest is not valid YAML or JSON.",
		DocURL:   "https://navroute.dev/docs/errors/R011",
	},
	"R012": {
		Category: CategoryManifest,
		Message:  "Invalid manifest route",
		Detail:   "Every manifest route needs a path and an event name.",
		DocURL:   "https://navroute.dev/docs/errors/R012",
	},
	"R013": {
		Category: CategoryManifest,
		Message:  "Unknown navigation mode",
		Detail:   "The manifest mode must be \"history\" or \"hash\".",
		DocURL:   "https://navroute.dev/docs/errors/R013",
	},

	// ============================================
	// Publish Errors (R020-R029)
	// ============================================

	"R020": {
		Category: CategoryPublish,
		Message:  "Publish transport failed",
		Detail:   "The event could not be delivered to the remote publisher.",
		DocURL:   "https://navroute.dev/docs/errors/R020",
	},
	"R021": {
		Category: CategoryPublish,
		Message:  "Publish rejected",
		Detail:   "The remote publisher reported an error for the event.",
		DocURL:   "https://navroute.dev/docs/errors/R021",
	},

	"R022": {
		Category: CategoryPublish,
		Message:  "No subscriber for event",
		Detail:   "The event bus has no subscriber for the published event.",
		DocURL:   "https://navroute.dev/docs/errors/R022",
	},

	// ============================================
	// Project Config / CLI Errors (R030-R039)
	// ============================================

	"R030": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The navroute.json file contains invalid values.",
		DocURL:   "https://navroute.dev/docs/errors/R030",
	},
	"R031": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No navroute.json was found in the directory.",
		DocURL:   "https://navroute.dev/docs/errors/R031",
	},
	"R032": {
		Category: CategoryCLI,
		Message:  "Input file not readable",
		Detail:   "The HTML document passed to the command could not be read.",
		DocURL:   "https://navroute.dev/docs/errors/R032",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
