package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryManifest    Category = "manifest"
	CategoryPattern     Category = "pattern"
	CategoryPlaceholder Category = "placeholder"
	CategoryGeneration  Category = "generation"
	CategoryVerify      Category = "verify"
	CategoryConfig      Category = "config"
	CategoryCLI         Category = "cli"
)

// Location represents a position in a manifest or config file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// UrlgenError is a structured error with a stable code, file location,
// and fix suggestions.
type UrlgenError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (manifest, generation, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where in a manifest or config file the error occurred.
	Location *Location

	// Context contains surrounding file lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *UrlgenError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *UrlgenError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location to the error.
func (e *UrlgenError) WithLocation(file string, line, column int) *UrlgenError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *UrlgenError) WithSuggestion(s string) *UrlgenError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *UrlgenError) WithDetail(d string) *UrlgenError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *UrlgenError) WithDetailf(format string, args ...any) *UrlgenError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *UrlgenError) Wrap(err error) *UrlgenError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a UrlgenError from a registered error code.
func New(code string) *UrlgenError {
	template, ok := registry[code]
	if !ok {
		return &UrlgenError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &UrlgenError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new UrlgenError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *UrlgenError {
	return &UrlgenError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a UrlgenError.
func FromError(err error, code string) *UrlgenError {
	if err == nil {
		return nil
	}
	if ue, ok := err.(*UrlgenError); ok {
		return ue
	}
	return New(code).Wrap(err)
}
