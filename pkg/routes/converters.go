package routes

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"
)

// Converter parses and formats one typed path parameter.
// The Regex is the sub-expression the parameter must match inside a
// route pattern; Placeholder, when set, is an example value known to
// satisfy that sub-expression.
type Converter struct {
	// Name is the identifier used in route syntax, e.g. "int" in <int:id>.
	Name string

	// Regex is the unanchored sub-expression for this parameter.
	Regex string

	// Placeholder is an example value that reverses successfully through
	// this converter, or nil if no default example exists.
	Placeholder any

	// ToURL formats a caller value into its path representation.
	// When nil, the default formatting rules apply.
	ToURL func(value any) (string, error)

	compileOnce sync.Once
	compiled    *regexp.Regexp
}

// Builtin converters, matching the common typed path parameters.
var (
	IntConverter = &Converter{
		Name:        "int",
		Regex:       `[0-9]+`,
		Placeholder: 0,
	}
	StringConverter = &Converter{
		Name:        "str",
		Regex:       `[^/]+`,
		Placeholder: "a",
	}
	SlugConverter = &Converter{
		Name:        "slug",
		Regex:       `[-a-zA-Z0-9_]+`,
		Placeholder: "a",
	}
	UUIDConverter = &Converter{
		Name:        "uuid",
		Regex:       `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`,
		Placeholder: "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
	}
	PathConverter = &Converter{
		Name:        "path",
		Regex:       `.+`,
		Placeholder: "a",
	}
)

var (
	convertersMu sync.RWMutex
	converters   = map[string]*Converter{
		"int":  IntConverter,
		"str":  StringConverter,
		"slug": SlugConverter,
		"uuid": UUIDConverter,
		"path": PathConverter,
	}
)

// RegisterConverter makes a custom converter available to route syntax.
// Registration must happen before any patterns referencing the converter
// are parsed.
func RegisterConverter(c *Converter) error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("converter must have a name")
	}
	if c.Regex == "" {
		return fmt.Errorf("converter %q must have a regex", c.Name)
	}
	if _, err := regexp.Compile(c.Regex); err != nil {
		return fmt.Errorf("converter %q has invalid regex: %w", c.Name, err)
	}
	convertersMu.Lock()
	defer convertersMu.Unlock()
	converters[c.Name] = c
	return nil
}

// LookupConverter returns the converter registered under name.
func LookupConverter(name string) (*Converter, bool) {
	convertersMu.RLock()
	defer convertersMu.RUnlock()
	c, ok := converters[name]
	return c, ok
}

// matcher returns the converter's sub-expression compiled with full anchors.
func (c *Converter) matcher() *regexp.Regexp {
	c.compileOnce.Do(func() {
		c.compiled = regexp.MustCompile(`^(?:` + c.Regex + `)$`)
	})
	return c.compiled
}

// Format converts a caller value into its path representation, validating
// the result against the converter's sub-expression.
func (c *Converter) Format(value any) (string, error) {
	var s string
	var err error
	if c.ToURL != nil {
		s, err = c.ToURL(value)
		if err != nil {
			return "", err
		}
	} else {
		s = FormatValue(value)
	}
	if !c.matcher().MatchString(s) {
		return "", fmt.Errorf("value %q does not match converter %s: %w", s, c.Name, ErrNoReverseMatch)
	}
	return s, nil
}

// FormatValue renders a reversal argument as the string that appears in a
// path. JSON numbers decode as float64, so integral floats format without
// an exponent or trailing zeros.
func FormatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
