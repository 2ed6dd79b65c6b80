package errors

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
	// Generation Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryGeneration,
		Message:  "Route could not be confirmed by reversal",
		Detail:   "No registered sample values reversed into a URL matching the route's own pattern. The route was not emitted.",
		DocURL:   "https://urlgen.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryGeneration,
		Message:  "Reversal attempt limit exceeded",
		Detail:   "The combinations of registered sample values for this route exceeded the attempt budget. Register fewer, better-fitting samples or raise the limit.",
		DocURL:   "https://urlgen.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryGeneration,
		Message:  "Generation produced no output",
		Detail:   "Every route was filtered out or failed confirmation, leaving nothing to write.",
		DocURL:   "https://urlgen.dev/docs/errors/E003",
	},

	// ============================================
	// Placeholder Errors (E020-E029)
	// ============================================

	"E020": {
		Category: CategoryPlaceholder,
		Message:  "No placeholder registered for parameter",
		Detail:   "A URL parameter has no sample value to reverse with. Register one for the parameter name, its converter, or its app.",
		DocURL:   "https://urlgen.dev/docs/errors/E020",
	},
	"E021": {
		Category: CategoryPlaceholder,
		Message:  "No unnamed placeholders registered for route",
		Detail:   "A route with positional parameters needs a sample tuple registered under its url name, one value per capture group.",
		DocURL:   "https://urlgen.dev/docs/errors/E021",
	},

	// ============================================
	// Manifest and Pattern Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryManifest,
		Message:  "Route manifest could not be read",
		DocURL:   "https://urlgen.dev/docs/errors/E040",
	},
	"E041": {
		Category: CategoryManifest,
		Message:  "Route manifest is invalid",
		Detail:   "Each entry must set exactly one of route, regex, or include, and nested routes must parse.",
		DocURL:   "https://urlgen.dev/docs/errors/E041",
	},
	"E042": {
		Category: CategoryPattern,
		Message:  "Unknown path converter",
		Detail:   "A route references a converter that is neither builtin nor declared in the manifest's converters section.",
		DocURL:   "https://urlgen.dev/docs/errors/E042",
	},
	"E043": {
		Category: CategoryPattern,
		Message:  "Pattern is not reversible",
		Detail:   "The regex uses constructs with no single literal expansion, such as alternation, character classes, or unbounded quantifiers outside capture groups.",
		DocURL:   "https://urlgen.dev/docs/errors/E043",
	},

	// ============================================
	// Config Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No urlgen.json was found in this directory or any parent directory.",
		DocURL:   "https://urlgen.dev/docs/errors/E060",
	},
	"E061": {
		Category: CategoryConfig,
		Message:  "Config file is invalid",
		DocURL:   "https://urlgen.dev/docs/errors/E061",
	},
	"E062": {
		Category: CategoryConfig,
		Message:  "Artifact output path is invalid",
		Detail:   "Each artifact needs an output path inside the project, ending in .js or .mjs.",
		DocURL:   "https://urlgen.dev/docs/errors/E062",
	},

	// ============================================
	// Verify Errors (E080-E089)
	// ============================================

	"E080": {
		Category: CategoryVerify,
		Message:  "Generated script failed to evaluate",
		Detail:   "The JavaScript engine reported an exception while loading the generated file.",
		DocURL:   "https://urlgen.dev/docs/errors/E080",
	},
	"E081": {
		Category: CategoryVerify,
		Message:  "Client reversal disagrees with server",
		Detail:   "The generated JavaScript produced a different URL than the server-side route table for the same arguments.",
		DocURL:   "https://urlgen.dev/docs/errors/E081",
	},

	// ============================================
	// CLI Errors (E090-E099)
	// ============================================

	"E090": {
		Category: CategoryCLI,
		Message:  "Output file could not be written",
		DocURL:   "https://urlgen.dev/docs/errors/E090",
	},
	"E091": {
		Category: CategoryCLI,
		Message:  "Upload failed",
		Detail:   "The generated artifact could not be uploaded to the configured bucket.",
		DocURL:   "https://urlgen.dev/docs/errors/E091",
	},
}

// Lookup returns the template registered for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns every registered error code.
func Codes() []string {
	out := make([]string, 0, len(registry))
	for code := range registry {
		out = append(out, code)
	}
	return out
}
