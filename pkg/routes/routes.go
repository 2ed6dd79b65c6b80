package routes

import "errors"

// ErrNoReverseMatch reports that no route in the table could produce a URL
// for the requested name and arguments. Callers test for it with errors.Is.
var ErrNoReverseMatch = errors.New("no reverse match")

// Entry is one node of a route table: either a *Route or an *Include.
type Entry interface {
	entry()
}

// Route is a leaf pattern with a reversal name.
type Route struct {
	Pattern Pattern
	Name    string

	// DefaultArgs are parameter values baked into the route. A reversal
	// call may omit them, or supply them with exactly the baked-in value.
	DefaultArgs map[string]any
}

// Include mounts a nested table under a path prefix. A non-empty Namespace
// scopes the names of the nested routes; an empty Namespace leaves them in
// the parent scope.
type Include struct {
	Prefix    Pattern
	Namespace string
	AppName   string
	Patterns  []Entry
}

func (*Route) entry()   {}
func (*Include) entry() {}

// NewRoute builds a named leaf route from path syntax.
func NewRoute(route, name string) (*Route, error) {
	p, err := ParseRoute(route)
	if err != nil {
		return nil, err
	}
	return &Route{Pattern: p, Name: name}, nil
}

// NewRegexRoute builds a named leaf route from a raw regex.
func NewRegexRoute(source, name string) (*Route, error) {
	p, err := ParseRegex(source)
	if err != nil {
		return nil, err
	}
	return &Route{Pattern: p, Name: name}, nil
}

// NewInclude mounts entries under a path-syntax prefix.
func NewInclude(prefix, namespace string, entries ...Entry) (*Include, error) {
	p, err := ParseRoute(prefix)
	if err != nil {
		return nil, err
	}
	return &Include{Prefix: p, Namespace: namespace, AppName: namespace, Patterns: entries}, nil
}
