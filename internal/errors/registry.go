package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Model Errors (N001-N009)
	// ============================================

	"N001": {
		Category: CategoryValidation,
		Message:  "Invalid tag record",
		Detail:   "Tag and attribute names must start with a letter and contain only letters, digits, '-', '_', ':' or '.'.",
	},
	"N002": {
		Category: CategoryNotFound,
		Message:  "Unknown form",
		Detail:   "No style classes are registered for this form.",
	},
	"N003": {
		Category: CategoryValidation,
		Message:  "Invalid viewport mode",
	},

	// ============================================
	// Snapshot Errors (N010-N019)
	// ============================================

	"N010": {
		Category: CategoryStorage,
		Message:  "Snapshot load failed",
	},
	"N011": {
		Category: CategoryStorage,
		Message:  "Snapshot save failed",
	},
	"N012": {
		Category: CategoryStorage,
		Message:  "Snapshot corrupt",
		Detail:   "The stored snapshot is not a valid page model.",
	},

	// ============================================
	// Request Errors (N020-N029)
	// ============================================

	"N020": {
		Category: CategoryValidation,
		Message:  "Invalid request body",
	},
	"N021": {
		Category: CategoryValidation,
		Message:  "Invalid client ID",
	},

	// ============================================
	// Config Errors (N030-N039)
	// ============================================

	"N030": {
		Category: CategoryConfig,
		Message:  "Config file not found",
	},
	"N031": {
		Category: CategoryConfig,
		Message:  "Invalid config",
	},

	// ============================================
	// Protocol Errors (N040-N049)
	// ============================================

	"N040": {
		Category: CategoryProtocol,
		Message:  "WebSocket upgrade failed",
	},
	"N041": {
		Category: CategoryProtocol,
		Message:  "WebSocket write failed",
	},

	// ============================================
	// CLI Errors (N050-N059)
	// ============================================

	"N050": {
		Category: CategoryCLI,
		Message:  "Cannot read model file",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
