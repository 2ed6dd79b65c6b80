package urljs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/urlgen-dev/urlgen/pkg/placeholders"
	"github.com/urlgen-dev/urlgen/pkg/routes"
)

// DefaultReversalLimit bounds how many placeholder combinations are tried
// per route before giving up.
const DefaultReversalLimit = 1 << 15

// Options configures a generation run.
type Options struct {
	// Registry supplies sample values for URL parameters. A nil Registry
	// behaves like an empty one: builtin converter defaults still apply.
	Registry *placeholders.Registry

	// Include and Exclude filter routes by qualified name. "ns:*" selects
	// a whole namespace; exclusion wins over inclusion.
	Include []string
	Exclude []string

	// Indent is the indent unit of the generated source, tab by default.
	// Depth is the starting indent level, for embedding the output inside
	// an existing file.
	Indent string
	Depth  int

	// RaiseOnNotFound turns routes whose reversal could not be confirmed
	// into errors instead of silently omitting them.
	RaiseOnNotFound bool

	// ReversalLimit caps placeholder combinations tried per route.
	ReversalLimit int
}

// URLGenerationError reports a route that could not be confirmed by
// reversing it with sample values.
type URLGenerationError struct {
	QName string
	Err   error
}

func (e *URLGenerationError) Error() string {
	return fmt.Sprintf("url %q could not be generated: %v", e.QName, e.Err)
}

func (e *URLGenerationError) Unwrap() error { return e.Err }

// ReversalLimitError reports a route whose placeholder combinations
// exceeded the attempt budget.
type ReversalLimitError struct {
	QName string
	Limit int
}

func (e *ReversalLimitError) Error() string {
	return fmt.Sprintf("url %q: gave up after %d reversal attempts", e.QName, e.Limit)
}

// Path is one confirmed reversal of a route, ready for emission: the URL
// split into literal text and argument splice points, plus the argument
// shape its guard checks for.
type Path struct {
	Components []Component

	// Params is the exact set of caller-supplied names, in capture order.
	// Positional marks a pattern taking NArgs positional arguments
	// instead. Neither set means the route takes no arguments.
	Params     []string
	NArgs      int
	Positional bool

	// Defaults are values baked into the route. A caller may pass them
	// back, but only with the baked-in value.
	Defaults map[string]any

	// SampleKwargs and SampleArgs are the sample values that confirmed
	// the path, and SampleURL is the URL they reversed to. Verification
	// replays them against the generated output.
	SampleKwargs map[string]any
	SampleArgs   []any
	SampleURL    string
}

// Transpile generates JavaScript reproducing the table's URL reversal and
// returns the source. Every emitted path has been confirmed by reversing
// the route with sample values and matching the result back against the
// route's own pattern, so the output never encodes a URL the server would
// not produce.
func Transpile(entries []routes.Entry, w Writer, opts Options) (string, error) {
	if opts.Registry == nil {
		opts.Registry = placeholders.NewRegistry()
	}
	if opts.ReversalLimit <= 0 {
		opts.ReversalLimit = DefaultReversalLimit
	}

	tree := BuildTree(entries, opts.Include, opts.Exclude)
	cw := NewCodeWriter(opts.Indent, opts.Depth)

	w.Init(cw)
	if err := visit(tree, cw, w, "", opts); err != nil {
		return "", err
	}
	w.Close(cw)
	return cw.String(), nil
}

func visit(n *NamespaceNode, cw *CodeWriter, w Writer, qualifier string, opts Options) error {
	for _, name := range n.GroupNames() {
		qname := qualifier + name
		var paths []Path
		for _, b := range n.groups[name] {
			p, ok, err := resolvePath(b, qname, opts)
			if err != nil {
				return err
			}
			if ok {
				paths = append(paths, p)
			}
		}
		if len(paths) == 0 {
			continue
		}
		w.EnterGroup(cw, name, qname)
		for _, p := range paths {
			w.VisitPath(cw, p)
		}
		w.ExitGroup(cw, name, qname)
	}
	for _, c := range n.Children() {
		w.EnterNamespace(cw, c.Name)
		if err := visit(c, cw, w, qualifier+c.Name+":", opts); err != nil {
			return err
		}
		w.ExitNamespace(cw, c.Name)
	}
	return nil
}

// resolvePath confirms one route by reverse-and-diff: reverse it with
// sample values, match the produced URL against the composite of the
// route's own patterns, and read the argument positions back out of the
// match. ok is false for routes that are silently omitted.
func resolvePath(b boundRoute, qname string, opts Options) (Path, bool, error) {
	skip := func(reason error) (Path, bool, error) {
		if opts.RaiseOnNotFound {
			return Path{}, false, &URLGenerationError{QName: qname, Err: reason}
		}
		return Path{}, false, nil
	}

	patterns := append(append([]routes.Pattern{}, b.prefixes...), b.route.Pattern)

	var compositeSrc strings.Builder
	for _, p := range patterns {
		compositeSrc.WriteString(routes.StripAnchors(p.Source()))
	}
	composite, err := regexp.Compile("^" + compositeSrc.String() + "$")
	if err != nil {
		return Path{}, false, &URLGenerationError{QName: qname, Err: err}
	}

	groupNames := composite.SubexpNames()[1:]
	named, positional := 0, 0
	for _, g := range groupNames {
		if g == "" {
			positional++
		} else {
			named++
		}
	}
	if named > 0 && positional > 0 {
		return skip(fmt.Errorf("pattern mixes named and unnamed groups"))
	}

	converters := map[string]*routes.Converter{}
	for _, p := range patterns {
		for name, c := range p.Converters() {
			converters[name] = c
		}
	}

	if named > 0 {
		return resolveNamed(b, qname, composite, groupNames, converters, opts, skip)
	}
	if positional > 0 {
		return resolvePositional(b, qname, composite, positional, opts, skip)
	}

	// no arguments: one reversal, no product to walk
	url, err := routes.ReversePattern(b.prefixes, b.route, nil)
	if err != nil {
		return skip(err)
	}
	if !composite.MatchString(strings.TrimPrefix(url, "/")) {
		return skip(fmt.Errorf("reversed url %q does not satisfy its own pattern", url))
	}
	return Path{Components: []Component{{Literal: url}}, Defaults: b.route.DefaultArgs, SampleURL: url}, true, nil
}

func resolveNamed(b boundRoute, qname string, composite *regexp.Regexp, groupNames []string, converters map[string]*routes.Converter, opts Options, skip func(error) (Path, bool, error)) (Path, bool, error) {
	defaults := b.route.DefaultArgs

	// parameters covered by route defaults are emitted as literal text;
	// the rest come from the caller and need sample values
	var free []string
	for _, g := range groupNames {
		if _, fixed := defaults[g]; !fixed {
			free = append(free, g)
		}
	}

	candidates := make([][]any, len(free))
	for i, g := range free {
		vals, err := opts.Registry.Named(g, converters[g], b.appName)
		if err != nil {
			return Path{}, false, &URLGenerationError{QName: qname, Err: err}
		}
		candidates[i] = vals
	}

	attempts := 0
	odo := make([]int, len(free))
	for {
		attempts++
		if attempts > opts.ReversalLimit {
			return Path{}, false, &ReversalLimitError{QName: qname, Limit: opts.ReversalLimit}
		}

		kwargs := map[string]any{}
		for k, v := range defaults {
			kwargs[k] = v
		}
		for i, g := range free {
			kwargs[g] = candidates[i][odo[i]]
		}

		if url, err := routes.ReversePattern(b.prefixes, b.route, kwargs); err == nil {
			if comps, ok := diff(url, composite, groupNames, defaults); ok {
				samples := make(map[string]any, len(free))
				for _, g := range free {
					samples[g] = kwargs[g]
				}
				return Path{
					Components:   comps,
					Params:       free,
					Defaults:     defaults,
					SampleKwargs: samples,
					SampleURL:    url,
				}, true, nil
			}
		}

		if !advance(odo, candidates) {
			return skip(fmt.Errorf("no sample values produced a url matching the pattern"))
		}
	}
}

func resolvePositional(b boundRoute, qname string, composite *regexp.Regexp, nargs int, opts Options, skip func(error) (Path, bool, error)) (Path, bool, error) {
	candidates, err := opts.Registry.Unnamed(b.route.Name, b.appName, nargs)
	if err != nil {
		return Path{}, false, &URLGenerationError{QName: qname, Err: err}
	}

	attempts := 0
	odo := make([]int, nargs)
	for {
		attempts++
		if attempts > opts.ReversalLimit {
			return Path{}, false, &ReversalLimitError{QName: qname, Limit: opts.ReversalLimit}
		}

		args := make([]any, nargs)
		for i := range args {
			args[i] = candidates[i][odo[i]]
		}

		if url, err := routes.ReversePattern(b.prefixes, b.route, nil, args...); err == nil {
			if comps, ok := diff(url, composite, make([]string, nargs), nil); ok {
				return Path{
					Components: comps,
					NArgs:      nargs,
					Positional: true,
					Defaults:   b.route.DefaultArgs,
					SampleArgs: args,
					SampleURL:  url,
				}, true, nil
			}
		}

		if !advance(odo, candidates) {
			return skip(fmt.Errorf("no sample values produced a url matching the pattern"))
		}
	}
}

// advance steps the odometer through the Cartesian product of candidate
// values, reporting false once every combination has been visited.
func advance(odo []int, candidates [][]any) bool {
	for i := len(odo) - 1; i >= 0; i-- {
		odo[i]++
		if odo[i] < len(candidates[i]) {
			return true
		}
		odo[i] = 0
	}
	return false
}

// diff matches a reversed URL against the composite pattern and rebuilds
// it as literal text around argument splice points. Groups named in
// defaults stay literal; the rest become substitutes. Positional groups
// have empty names and are numbered left to right.
func diff(url string, composite *regexp.Regexp, groupNames []string, defaults map[string]any) ([]Component, bool) {
	trimmed := strings.TrimPrefix(url, "/")
	m := composite.FindStringSubmatchIndex(trimmed)
	if m == nil {
		return nil, false
	}

	var comps []Component
	lit := "/"
	pos := 0
	argIndex := 0
	for g, name := range groupNames {
		start, end := m[2*(g+1)], m[2*(g+1)+1]
		if start < 0 {
			return nil, false
		}
		if start < pos {
			// groups must advance through the string for the diff to
			// be a clean split
			return nil, false
		}
		lit += trimmed[pos:start]
		if _, fixed := defaults[name]; name != "" && fixed {
			lit += trimmed[start:end]
		} else {
			comps = append(comps, Component{Literal: lit})
			sub := &Substitute{Name: name}
			if name == "" {
				sub.Index = argIndex
				argIndex++
			}
			comps = append(comps, Component{Sub: sub})
			lit = ""
		}
		pos = end
	}
	lit += trimmed[pos:]
	if lit != "" {
		comps = append(comps, Component{Literal: lit})
	}
	return comps, true
}
