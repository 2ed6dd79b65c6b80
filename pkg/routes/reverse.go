package routes

import (
	"fmt"
	"strings"
)

// Reverse resolves qname against the table and renders the URL for the
// given arguments. qname is a name optionally prefixed by colon-separated
// namespaces ("admin:users:detail"). Exactly one of kwargs and args may be
// non-empty. On failure the returned error wraps ErrNoReverseMatch.
func Reverse(entries []Entry, qname string, kwargs map[string]any, args ...any) (string, error) {
	if len(kwargs) > 0 && len(args) > 0 {
		return "", fmt.Errorf("reverse %q: cannot mix named and positional arguments", qname)
	}

	parts := strings.Split(qname, ":")
	name := parts[len(parts)-1]
	path := parts[:len(parts)-1]

	var cands []candidate
	collect(entries, path, name, nil, &cands)
	if len(cands) == 0 {
		return "", fmt.Errorf("reverse %q: no route with that name: %w", qname, ErrNoReverseMatch)
	}

	for _, c := range cands {
		url, err := c.build(kwargs, args)
		if err == nil {
			return url, nil
		}
	}
	return "", fmt.Errorf("reverse %q: no pattern matched the given arguments: %w", qname, ErrNoReverseMatch)
}

// ReversePattern renders one route mounted under the given include
// prefixes, without name resolution. The URL generator uses it to reverse
// a single known route with trial arguments.
func ReversePattern(prefixes []Pattern, route *Route, kwargs map[string]any, args ...any) (string, error) {
	return candidate{prefixes: prefixes, route: route}.build(kwargs, args)
}

// candidate is one leaf route together with the include prefixes above it.
type candidate struct {
	prefixes []Pattern
	route    *Route
}

// collect gathers the routes reachable under the namespace path, in table
// order. Includes with an empty namespace are transparent.
func collect(entries []Entry, path []string, name string, prefixes []Pattern, out *[]candidate) {
	for _, e := range entries {
		switch v := e.(type) {
		case *Route:
			if len(path) == 0 && v.Name == name {
				*out = append(*out, candidate{prefixes: prefixes, route: v})
			}
		case *Include:
			nested := appendPrefix(prefixes, v.Prefix)
			switch {
			case v.Namespace == "":
				collect(v.Patterns, path, name, nested, out)
			case len(path) > 0 && v.Namespace == path[0]:
				collect(v.Patterns, path[1:], name, nested, out)
			}
		}
	}
}

func appendPrefix(prefixes []Pattern, p Pattern) []Pattern {
	out := make([]Pattern, len(prefixes), len(prefixes)+1)
	copy(out, prefixes)
	if p != nil {
		out = append(out, p)
	}
	return out
}

// build renders the candidate's URL, or reports why the arguments do not
// fit this pattern.
func (c candidate) build(kwargs map[string]any, args []any) (string, error) {
	patterns := appendPrefix(c.prefixes, c.route.Pattern)

	var segs []segment
	var caps []capture
	for _, p := range patterns {
		t, err := p.template()
		if err != nil {
			return "", err
		}
		base := len(caps)
		for _, s := range t {
			if s.group >= 0 {
				s.group += base
			}
			segs = append(segs, s)
		}
		caps = append(caps, captures(p)...)
	}

	named := map[string]int{}
	anon := 0
	for i, g := range caps {
		if g.name != "" {
			named[g.name] = i
		} else {
			anon++
		}
	}

	defaults := c.route.DefaultArgs

	values := make([]any, len(caps))
	switch {
	case len(args) > 0:
		if len(args) != len(caps) {
			return "", fmt.Errorf("want %d positional arguments, got %d: %w", len(caps), len(args), ErrNoReverseMatch)
		}
		copy(values, args)

	default:
		if anon > 0 {
			return "", fmt.Errorf("pattern has unnamed groups, positional arguments required: %w", ErrNoReverseMatch)
		}
		// the supplied names and the pattern's parameters must agree,
		// except for names covered by the route's defaults
		for k := range kwargs {
			if _, ok := named[k]; !ok {
				if _, isDefault := defaults[k]; !isDefault {
					return "", fmt.Errorf("unexpected argument %q: %w", k, ErrNoReverseMatch)
				}
			}
		}
		for k := range named {
			if _, ok := kwargs[k]; !ok {
				if _, isDefault := defaults[k]; !isDefault {
					return "", fmt.Errorf("missing argument %q: %w", k, ErrNoReverseMatch)
				}
			}
		}
		// a supplied value for a defaulted parameter must match the default
		for k, dv := range defaults {
			if v, ok := kwargs[k]; ok && FormatValue(v) != FormatValue(dv) {
				return "", fmt.Errorf("argument %q conflicts with route default: %w", k, ErrNoReverseMatch)
			}
		}
		for k, i := range named {
			if v, ok := kwargs[k]; ok {
				values[i] = v
			} else {
				values[i] = defaults[k]
			}
		}
	}

	var url strings.Builder
	url.WriteString("/")
	for _, s := range segs {
		if s.group < 0 {
			url.WriteString(s.literal)
			continue
		}
		rendered, err := caps[s.group].format(values[s.group])
		if err != nil {
			return "", err
		}
		url.WriteString(rendered)
	}
	return url.String(), nil
}
