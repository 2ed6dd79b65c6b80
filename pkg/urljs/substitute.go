package urljs

import (
	"fmt"
	"strings"
)

// Substitute marks the point in a path where a caller argument is spliced
// in. Named parameters carry Name; positional parameters carry Index.
type Substitute struct {
	Name  string
	Index int
}

// Component is one piece of a reversed path: literal text, or a splice
// point for a caller argument.
type Component struct {
	Literal string
	Sub     *Substitute
}

// accessor returns the JavaScript expression reading this argument.
func (s *Substitute) accessor() string {
	if s.Name != "" {
		return fmt.Sprintf("kwargs[%q]", s.Name)
	}
	return fmt.Sprintf("args[%d]", s.Index)
}

// renderPath turns components into the JavaScript expression producing the
// URL. Modern output is a template literal; ES5 output is string
// concatenation with explicit toString calls.
func renderPath(components []Component, es5 bool) string {
	if es5 {
		var parts []string
		for _, c := range components {
			if c.Sub != nil {
				parts = append(parts, c.Sub.accessor()+".toString()")
			} else {
				parts = append(parts, jsString(c.Literal))
			}
		}
		if len(parts) == 0 {
			return `"/"`
		}
		return strings.Join(parts, "+")
	}

	var b strings.Builder
	b.WriteString("`")
	for _, c := range components {
		if c.Sub != nil {
			b.WriteString("${")
			b.WriteString(c.Sub.accessor())
			b.WriteString("}")
		} else {
			b.WriteString(escapeTemplate(c.Literal))
		}
	}
	b.WriteString("`")
	return b.String()
}

// jsString renders a double-quoted JavaScript string literal.
func jsString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func escapeTemplate(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "`", "\\`")
	return strings.ReplaceAll(s, "${", "\\${")
}
