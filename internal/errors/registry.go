package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (S100-S199)
	// ============================================

	"S101": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The signup tool looks for signup.json in the working directory unless --config is given.",
	},
	"S102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "signup.json could not be read or is not valid JSON.",
	},
	"S103": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// ============================================
	// Auth Errors (S200-S299)
	// ============================================

	"S201": {
		Category: CategoryAuth,
		Message:  "Authentication backend unreachable",
		Detail:   "The signup request could not be delivered to the authentication backend.",
	},
	"S202": {
		Category: CategoryAuth,
		Message:  "Session provider unavailable",
		Detail:   "The configured session provider could not be initialised.",
	},

	// ============================================
	// Message Table Errors (S300-S399)
	// ============================================

	"S301": {
		Category: CategoryMessages,
		Message:  "Message table could not be loaded",
		Detail:   "The response message file or object is missing or is not a YAML mapping of code to message.",
	},

	// ============================================
	// CLI Errors (S400-S499)
	// ============================================

	"S401": {
		Category: CategoryCLI,
		Message:  "Prompt aborted",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
