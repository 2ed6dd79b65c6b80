// Package placeholders maps URL parameters to sample values. The
// JavaScript generator reverses every route once with sample values and
// diffs the result against the route's pattern; the registry is where
// those samples come from.
package placeholders

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/urlgen-dev/urlgen/pkg/routes"
)

// ErrPlaceholderNotFound reports that no sample value is registered for a
// parameter. Callers test for it with errors.Is.
var ErrPlaceholderNotFound = errors.New("no placeholder registered")

// NotFoundError carries the lookup that produced no candidates.
type NotFoundError struct {
	Var       string // named parameter, or "" for unnamed lookups
	Converter string
	App       string
	URLName   string
}

func (e *NotFoundError) Error() string {
	scope := ""
	if e.App != "" {
		scope = fmt.Sprintf(" in app %q", e.App)
	}
	if e.Var != "" {
		return fmt.Sprintf("no placeholder registered for parameter %q%s", e.Var, scope)
	}
	return fmt.Sprintf("no unnamed placeholders registered for url %q%s", e.URLName, scope)
}

func (e *NotFoundError) Unwrap() error { return ErrPlaceholderNotFound }

// Registry holds sample values keyed by parameter name, app scope,
// converter, or url name. Registries are passed explicitly to the
// generator; there is no process-wide instance. All methods are safe for
// concurrent use.
type Registry struct {
	mu           sync.RWMutex
	variables    map[string][]any
	appVariables map[string]map[string][]any
	converters   map[string][]any
	unnamed      map[string][][]any
	appUnnamed   map[string]map[string][][]any
}

// NewRegistry returns an empty registry. Builtin converters carry their
// own default samples, so an empty registry already covers typed path
// parameters.
func NewRegistry() *Registry {
	return &Registry{
		variables:    map[string][]any{},
		appVariables: map[string]map[string][]any{},
		converters:   map[string][]any{},
		unnamed:      map[string][][]any{},
		appUnnamed:   map[string]map[string][][]any{},
	}
}

// appendUnique accumulates values, dropping any already present.
// Registration is idempotent: config reloads re-register the same
// samples and must not inflate the candidate lists.
func appendUnique(list []any, values ...any) []any {
	for _, v := range values {
		seen := false
		for _, have := range list {
			if reflect.DeepEqual(have, v) {
				seen = true
				break
			}
		}
		if !seen {
			list = append(list, v)
		}
	}
	return list
}

func appendUniqueTuple(list [][]any, tuple []any) [][]any {
	for _, have := range list {
		if reflect.DeepEqual(have, tuple) {
			return list
		}
	}
	return append(list, tuple)
}

// RegisterVariable adds candidate samples for a parameter name, tried for
// that name anywhere in the table.
func (r *Registry) RegisterVariable(name string, values ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = appendUnique(r.variables[name], values...)
}

// RegisterAppVariable adds candidate samples for a parameter name scoped
// to one app. App-scoped samples are tried before name-scoped ones, and
// also join the name-scoped list so the samples stay available outside
// the app.
func (r *Registry) RegisterAppVariable(app, name string, values ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vars, ok := r.appVariables[app]
	if !ok {
		vars = map[string][]any{}
		r.appVariables[app] = vars
	}
	vars[name] = appendUnique(vars[name], values...)
	r.variables[name] = appendUnique(r.variables[name], values...)
}

// RegisterConverter adds candidate samples for every parameter using the
// named converter, tried after the converter's own default.
func (r *Registry) RegisterConverter(converter string, values ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters[converter] = appendUnique(r.converters[converter], values...)
}

// RegisterUnnamed adds one sample tuple for a url name with positional
// parameters. The tuple supplies one value per capture group, in group
// order. Multiple tuples for the same name accumulate.
func (r *Registry) RegisterUnnamed(urlName string, tuple ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unnamed[urlName] = appendUniqueTuple(r.unnamed[urlName], tuple)
}

// RegisterAppUnnamed is RegisterUnnamed scoped to one app. The tuple also
// joins the name-scoped list.
func (r *Registry) RegisterAppUnnamed(app, urlName string, tuple ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tuples, ok := r.appUnnamed[app]
	if !ok {
		tuples = map[string][][]any{}
		r.appUnnamed[app] = tuples
	}
	tuples[urlName] = appendUniqueTuple(tuples[urlName], tuple)
	r.unnamed[urlName] = appendUniqueTuple(r.unnamed[urlName], tuple)
}

// Named resolves candidate samples for a named parameter, most specific
// first: the converter's default, converter-registered samples,
// app-scoped samples, then name-scoped samples. An empty result is
// reported as a NotFoundError.
func (r *Registry) Named(varName string, conv *routes.Converter, appName string) ([]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []any
	if conv != nil {
		if conv.Placeholder != nil {
			out = appendUnique(out, conv.Placeholder)
		}
		out = appendUnique(out, r.converters[conv.Name]...)
	}
	if appName != "" {
		if vars, ok := r.appVariables[appName]; ok {
			out = appendUnique(out, vars[varName]...)
		}
	}
	out = appendUnique(out, r.variables[varName]...)

	if len(out) == 0 {
		cname := ""
		if conv != nil {
			cname = conv.Name
		}
		return nil, &NotFoundError{Var: varName, Converter: cname, App: appName}
	}
	return out, nil
}

// Unnamed resolves per-position candidate samples for a url with numArgs
// positional parameters. Registered tuples of a different length are
// ignored. App-scoped tuples are tried before name-scoped ones.
func (r *Registry) Unnamed(urlName, appName string, numArgs int) ([][]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched [][]any
	add := func(tuples [][]any) {
		for _, tuple := range tuples {
			if len(tuple) != numArgs {
				continue
			}
			matched = appendUniqueTuple(matched, tuple)
		}
	}
	if appName != "" {
		if tuples, ok := r.appUnnamed[appName]; ok {
			add(tuples[urlName])
		}
	}
	add(r.unnamed[urlName])

	out := make([][]any, numArgs)
	for _, tuple := range matched {
		for i, v := range tuple {
			out[i] = append(out[i], v)
		}
	}

	for i := range out {
		if len(out[i]) == 0 {
			return nil, &NotFoundError{URLName: urlName, App: appName}
		}
	}
	return out, nil
}
