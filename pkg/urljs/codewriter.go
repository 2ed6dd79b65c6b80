package urljs

import (
	"fmt"
	"strings"
)

// CodeWriter accumulates generated JavaScript with indentation tracking.
type CodeWriter struct {
	buf    strings.Builder
	indent string
	depth  int
}

// NewCodeWriter returns a writer using the given indent unit, starting at
// the given depth.
func NewCodeWriter(indent string, depth int) *CodeWriter {
	if indent == "" {
		indent = "\t"
	}
	return &CodeWriter{indent: indent, depth: depth}
}

// Line writes one indented line.
func (w *CodeWriter) Line(s string) {
	for i := 0; i < w.depth; i++ {
		w.buf.WriteString(w.indent)
	}
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

// Linef writes one indented formatted line.
func (w *CodeWriter) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// Blank writes an empty line.
func (w *CodeWriter) Blank() {
	w.buf.WriteByte('\n')
}

// Indent increases the indent depth by one level.
func (w *CodeWriter) Indent() { w.depth++ }

// Outdent decreases the indent depth by one level.
func (w *CodeWriter) Outdent() {
	if w.depth > 0 {
		w.depth--
	}
}

// String returns the accumulated source.
func (w *CodeWriter) String() string { return w.buf.String() }
