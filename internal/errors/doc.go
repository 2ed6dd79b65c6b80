// Package errors provides structured, actionable error messages for urlgen.
//
// The errors package implements an error system that:
//   - Shows exact locations in manifest and config files
//   - Explains what went wrong in plain language
//   - Suggests how to fix issues
//   - Links to documentation for deeper understanding
//
// # Error Categories
//
// Errors are organized into categories:
//   - manifest: route table files that do not parse or validate
//   - pattern: route patterns that cannot be compiled or reversed
//   - placeholder: missing sample values for URL parameters
//   - generation: routes that could not be confirmed by reversal
//   - verify: generated JavaScript disagreeing with the server table
//   - config: problems with urlgen.json
//
// # Error Codes
//
// Each error has a unique code (e.g., "E001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	err := errors.New("E020").
//	    WithDetailf("parameter %q of route %q", "token", "unlock").
//	    WithSuggestion(`register a sample: registry.RegisterVariable("token", "abc123")`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E020: No placeholder registered for parameter
//	//
//	//   parameter "token" of route "unlock"
//	//
//	//   Hint: register a sample: registry.RegisterVariable("token", "abc123")
//	//
//	//   Learn more: https://urlgen.dev/docs/errors/E020
package errors
