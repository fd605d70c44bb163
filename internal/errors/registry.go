package errors

import "net/http"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	Status     int
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Configuration (E100-E199)

	"E100": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Run 'salesdash config init' to write a default salesdash.json",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"E103": {
		Category:   CategoryConfig,
		Message:    "Configuration file already exists",
		Suggestion: "Pass --force to overwrite it",
	},

	// Guards (E200-E299)

	"E200": {
		Category: CategoryGuard,
		Message:  "Missing route parameter",
		Detail:   "The page was opened without a parameter it requires.",
		Status:   http.StatusNotFound,
	},
	"E201": {
		Category:   CategoryGuard,
		Message:    "Authentication required",
		Detail:     "The session holds no credential or the credential has expired.",
		Suggestion: "Sign in again",
		Status:     http.StatusUnauthorized,
	},
	"E202": {
		Category: CategoryGuard,
		Message:  "Page not found",
		Status:   http.StatusNotFound,
	},

	// Remote API (E300-E399)

	"E300": {
		Category:   CategoryAPI,
		Message:    "Remote API unreachable",
		Suggestion: "Check api.baseURL and that the CRM API is running",
		Status:     http.StatusBadGateway,
	},
	"E301": {
		Category: CategoryAPI,
		Message:  "Unexpected remote API response",
		Status:   http.StatusBadGateway,
	},

	// Live sessions (E400-E499)

	"E400": {
		Category: CategoryLive,
		Message:  "Invalid live event",
		Detail:   "The event names no view or no handler accepted it.",
		Status:   http.StatusBadRequest,
	},

	// CLI (E500-E599)

	"E500": {
		Category: CategoryCLI,
		Message:  "Server failed",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
