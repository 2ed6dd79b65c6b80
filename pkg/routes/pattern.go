package routes

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Pattern is one reversible URL pattern. Implementations are RoutePattern
// (typed <converter:name> path syntax) and RegexPattern (raw regular
// expressions with named or positional capture groups).
type Pattern interface {
	// Regex returns the compiled pattern as authored, anchors included.
	Regex() *regexp.Regexp

	// Converters maps parameter name to converter for path-style patterns.
	// Regex-style patterns return nil.
	Converters() map[string]*Converter

	// Source returns the regex source text as authored.
	Source() string

	// Describe returns the pattern in the syntax it was written in.
	Describe() string

	// template returns the reversal skeleton: the ordered literal and
	// capture-group pieces the pattern is built from. Patterns that cannot
	// be reversed report an error.
	template() ([]segment, error)
}

// segment is one piece of a reversal template. Group is -1 for literal
// pieces, otherwise the index of the capture group spliced at this point.
type segment struct {
	literal string
	group   int
}

// capture describes one capturing group of a pattern.
type capture struct {
	name string // "" for positional groups
	conv *Converter
	sub  string // sub-expression source
	re   *regexp.Regexp
}

// format renders value at this capture point, validating it against the
// group's sub-expression.
func (g *capture) format(value any) (string, error) {
	if g.conv != nil {
		return g.conv.Format(value)
	}
	s := FormatValue(value)
	if g.re != nil && !g.re.MatchString(s) {
		return "", fmt.Errorf("value %q does not match group pattern %s: %w", s, g.sub, ErrNoReverseMatch)
	}
	return s, nil
}

// captures returns the capture groups of a pattern in source order.
func captures(p Pattern) []capture {
	switch pt := p.(type) {
	case *RoutePattern:
		return pt.groups
	case *RegexPattern:
		pt.normalize()
		return pt.groups
	}
	return nil
}

// =============================================================================
// RoutePattern: <converter:name> path syntax
// =============================================================================

// RoutePattern is a path-style pattern like "year/<int:y>/". Each
// <converter:name> placeholder contributes a named capture group whose
// sub-expression and formatting are supplied by the converter.
type RoutePattern struct {
	route  string
	source string
	regex  *regexp.Regexp
	conv   map[string]*Converter
	segs   []segment
	groups []capture
}

// ParseRoute compiles path syntax into a RoutePattern. Placeholders are
// written <name> (str converter) or <converter:name>.
func ParseRoute(route string) (*RoutePattern, error) {
	p := &RoutePattern{
		route: route,
		conv:  map[string]*Converter{},
	}

	var src strings.Builder
	src.WriteString("^")
	rest := route
	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			break
		}
		close := strings.IndexByte(rest[open:], '>')
		if close < 0 {
			return nil, fmt.Errorf("route %q: unterminated parameter", route)
		}
		close += open

		lit := rest[:open]
		if lit != "" {
			p.segs = append(p.segs, segment{literal: lit, group: -1})
			src.WriteString(regexp.QuoteMeta(lit))
		}

		spec := rest[open+1 : close]
		convName, paramName := "str", spec
		if idx := strings.IndexByte(spec, ':'); idx >= 0 {
			convName, paramName = spec[:idx], spec[idx+1:]
		}
		if paramName == "" {
			return nil, fmt.Errorf("route %q: empty parameter name", route)
		}
		conv, ok := LookupConverter(convName)
		if !ok {
			return nil, fmt.Errorf("route %q: unknown converter %q", route, convName)
		}
		if _, dup := p.conv[paramName]; dup {
			return nil, fmt.Errorf("route %q: duplicate parameter %q", route, paramName)
		}

		p.conv[paramName] = conv
		p.segs = append(p.segs, segment{group: len(p.groups)})
		p.groups = append(p.groups, capture{name: paramName, conv: conv, sub: conv.Regex})
		fmt.Fprintf(&src, "(?P<%s>%s)", paramName, conv.Regex)

		rest = rest[close+1:]
	}
	if rest != "" {
		p.segs = append(p.segs, segment{literal: rest, group: -1})
		src.WriteString(regexp.QuoteMeta(rest))
	}
	src.WriteString("$")

	p.source = src.String()
	re, err := regexp.Compile(p.source)
	if err != nil {
		return nil, fmt.Errorf("route %q: %w", route, err)
	}
	p.regex = re
	return p, nil
}

// MustParseRoute is ParseRoute, panicking on error. Intended for route
// tables declared as package variables.
func MustParseRoute(route string) *RoutePattern {
	p, err := ParseRoute(route)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *RoutePattern) Regex() *regexp.Regexp            { return p.regex }
func (p *RoutePattern) Converters() map[string]*Converter { return p.conv }
func (p *RoutePattern) Source() string                   { return p.source }
func (p *RoutePattern) Describe() string                 { return p.route }

func (p *RoutePattern) template() ([]segment, error) { return p.segs, nil }

// =============================================================================
// RegexPattern: raw regular expressions
// =============================================================================

// RegexPattern is a raw regular expression pattern. Named groups become
// named parameters; anonymous groups become positional parameters. The
// reversal template is derived by walking the regex source once: literal
// text is kept verbatim, capture groups become splice points, and
// constructs with no single literal expansion mark the pattern
// non-reversible.
type RegexPattern struct {
	source string
	regex  *regexp.Regexp

	once   sync.Once
	segs   []segment
	groups []capture
	nErr   error
}

// ParseRegex compiles a raw regex pattern. Patterns match paths relative
// to the url root, so a leading slash after the "^" anchor is stripped;
// the reverser adds the one "/" prefix itself.
func ParseRegex(source string) (*RegexPattern, error) {
	hat := strings.HasPrefix(source, "^")
	body := strings.TrimPrefix(source, "^")
	switch {
	case strings.HasPrefix(body, `\/`):
		body = body[2:]
	case strings.HasPrefix(body, "/"):
		body = body[1:]
	}
	normalized := body
	if hat {
		normalized = "^" + body
	}
	re, err := regexp.Compile(normalized)
	if err != nil {
		return nil, fmt.Errorf("regex %q: %w", source, err)
	}
	return &RegexPattern{source: normalized, regex: re}, nil
}

// MustParseRegex is ParseRegex, panicking on error.
func MustParseRegex(source string) *RegexPattern {
	p, err := ParseRegex(source)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *RegexPattern) Regex() *regexp.Regexp            { return p.regex }
func (p *RegexPattern) Converters() map[string]*Converter { return nil }
func (p *RegexPattern) Source() string                   { return p.source }
func (p *RegexPattern) Describe() string                 { return p.source }

func (p *RegexPattern) template() ([]segment, error) {
	p.normalize()
	return p.segs, p.nErr
}

// StripAnchors removes the leading "^" and trailing "$" from a regex
// source so pattern sources can be concatenated into a composite.
func StripAnchors(source string) string {
	source = strings.TrimPrefix(source, "^")
	return strings.TrimSuffix(source, "$")
}

// errNotReversible marks regex constructs with no literal expansion.
// A route carrying such a pattern is skipped during reversal rather than
// failing the table.
var errNotReversible = fmt.Errorf("pattern is not reversible: %w", ErrNoReverseMatch)

// normalize derives the reversal template from the regex source.
func (p *RegexPattern) normalize() {
	p.once.Do(func() {
		p.segs, p.groups, p.nErr = normalizeRegex(p.source)
	})
}

// normalizeRegex walks a regex source and produces the template segments
// and capture groups. It handles the subset of regex syntax that has a
// unique literal expansion; everything else reports errNotReversible.
func normalizeRegex(source string) ([]segment, []capture, error) {
	var segs []segment
	var groups []capture
	var lit strings.Builder

	flushLit := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{literal: lit.String(), group: -1})
			lit.Reset()
		}
	}

	src := []byte(source)
	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch ch {
		case '^', '$':
			// anchors contribute nothing to the path

		case '\\':
			if i+1 >= len(src) {
				return nil, nil, fmt.Errorf("trailing escape in %q", source)
			}
			i++
			esc := src[i]
			switch {
			case esc == 'A' || esc == 'Z' || esc == 'b' || esc == 'B':
				// boundary assertions, nothing literal
			case isWordByte(esc):
				// \d, \w, \s and friends have no unique expansion
				return nil, nil, errNotReversible
			default:
				lit.WriteByte(esc)
			}

		case '(':
			kind, name, skip := groupIntro(src[i:])
			inner, width, err := groupBody(src[i+skip:], source)
			if err != nil {
				return nil, nil, err
			}
			end := i + skip + width // index of the closing paren
			quant := byte(0)
			if end+1 < len(src) && isQuantifier(src[end+1]) {
				quant = src[end+1]
			}

			switch kind {
			case groupLookaround:
				return nil, nil, errNotReversible

			case groupNonCapturing:
				if quant != 0 && quant != '?' {
					return nil, nil, errNotReversible
				}
				if quant == '?' {
					if strings.Contains(stripClasses(inner), "(") {
						return nil, nil, errNotReversible
					}
					// optional group: omit it from the template
					flushLit()
				} else {
					innerSegs, innerGroups, err := normalizeRegex(inner)
					if err != nil {
						return nil, nil, err
					}
					flushLit()
					for _, s := range innerSegs {
						if s.group >= 0 {
							s.group += len(groups)
						}
						segs = append(segs, s)
					}
					groups = append(groups, innerGroups...)
				}

			default: // capturing, named or anonymous
				if quant != 0 {
					return nil, nil, errNotReversible
				}
				if strings.ContainsAny(stripClasses(inner), "(") {
					// nested capturing groups give this walk a different
					// numbering than the compiled regex
					return nil, nil, errNotReversible
				}
				re, err := regexp.Compile("^(?:" + inner + ")$")
				if err != nil {
					return nil, nil, fmt.Errorf("group %q in %q: %w", inner, source, err)
				}
				flushLit()
				segs = append(segs, segment{group: len(groups)})
				groups = append(groups, capture{name: name, sub: inner, re: re})
			}
			i = end
			if quant != 0 {
				i++
			}

		case '[':
			return nil, nil, errNotReversible

		case '.', '|', '*', '+', '{':
			return nil, nil, errNotReversible

		case '?':
			// optional literal: drop the preceding character
			s := lit.String()
			if s == "" {
				return nil, nil, errNotReversible
			}
			lit.Reset()
			lit.WriteString(s[:len(s)-1])

		case ')':
			return nil, nil, fmt.Errorf("unbalanced group in %q", source)

		default:
			lit.WriteByte(ch)
		}
	}
	flushLit()
	return segs, groups, nil
}

type groupKind int

const (
	groupCapturing groupKind = iota
	groupNonCapturing
	groupLookaround
)

// groupIntro classifies the group opening at src[0] == '(' and returns the
// number of bytes the introduction occupies.
func groupIntro(src []byte) (kind groupKind, name string, skip int) {
	if len(src) < 2 || src[1] != '?' {
		return groupCapturing, "", 1
	}
	rest := src[2:]
	switch {
	case len(rest) > 0 && rest[0] == ':':
		return groupNonCapturing, "", 3
	case len(rest) > 1 && rest[0] == 'P' && rest[1] == '<':
		if end := strings.IndexByte(string(rest), '>'); end >= 0 {
			return groupCapturing, string(rest[2:end]), 2 + end + 1
		}
		return groupCapturing, "", 2
	case len(rest) > 0 && rest[0] == '<':
		if end := strings.IndexByte(string(rest), '>'); end >= 0 {
			return groupCapturing, string(rest[1:end]), 2 + end + 1
		}
		return groupCapturing, "", 2
	default:
		// lookahead/lookbehind or inline flags
		return groupLookaround, "", 2
	}
}

// groupBody returns the group's inner source and the offset of its closing
// paren relative to the start of the body.
func groupBody(src []byte, whole string) (inner string, width int, err error) {
	depth := 1
	inClass := false
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '(':
			if !inClass {
				depth++
			}
		case ')':
			if !inClass {
				depth--
				if depth == 0 {
					return string(src[:i]), i, nil
				}
			}
		}
	}
	return "", 0, fmt.Errorf("unbalanced group in %q", whole)
}

// stripClasses removes character classes so parens inside them are not
// mistaken for groups.
func stripClasses(s string) string {
	var out strings.Builder
	inClass := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			inClass = true
		case ']':
			inClass = false
		default:
			if !inClass {
				out.WriteByte(s[i])
			}
		}
	}
	return out.String()
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func isQuantifier(b byte) bool {
	return b == '?' || b == '*' || b == '+' || b == '{'
}
