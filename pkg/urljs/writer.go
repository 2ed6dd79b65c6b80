package urljs

import (
	"fmt"
	"sort"
	"strings"
)

// Writer emits JavaScript for a namespace tree. Transpile drives it
// depth-first: groups of the current level first, then child namespaces.
type Writer interface {
	Init(cw *CodeWriter)
	EnterNamespace(cw *CodeWriter, name string)
	ExitNamespace(cw *CodeWriter, name string)
	EnterGroup(cw *CodeWriter, name, qname string)
	VisitPath(cw *CodeWriter, p Path)
	ExitGroup(cw *CodeWriter, name, qname string)
	Close(cw *CodeWriter)
}

// SimpleWriter emits a plain nested object literal of reversal functions:
//
//	const urls = {
//		"detail": (kwargs = {}, args = []) => { ... },
//		"admin": { ... },
//	};
//
// With ES5 set the output avoids arrow functions, default parameters, and
// template literals.
type SimpleWriter struct {
	// VarName is the name bound to the object, "urls" by default.
	VarName string
	ES5     bool
	// Export prefixes the declaration with "export". Ignored for ES5
	// output.
	Export bool
	// Throw adds a trailing TypeError throw when no guard matches. Off
	// by default: a call matching no guard returns undefined, the same
	// as the server returning no result for an unreversable combination.
	Throw bool
}

func (w *SimpleWriter) varName() string {
	if w.VarName == "" {
		return "urls"
	}
	return w.VarName
}

func (w *SimpleWriter) Init(cw *CodeWriter) {
	decl := fmt.Sprintf("const %s = {", w.varName())
	if w.ES5 {
		decl = fmt.Sprintf("var %s = {", w.varName())
	} else if w.Export {
		decl = "export " + decl
	}
	cw.Line(decl)
	cw.Indent()
}

func (w *SimpleWriter) Close(cw *CodeWriter) {
	cw.Outdent()
	cw.Line("};")
}

func (w *SimpleWriter) EnterNamespace(cw *CodeWriter, name string) {
	cw.Linef("%q: {", name)
	cw.Indent()
}

func (w *SimpleWriter) ExitNamespace(cw *CodeWriter, name string) {
	cw.Outdent()
	cw.Line("},")
}

func (w *SimpleWriter) EnterGroup(cw *CodeWriter, name, qname string) {
	if w.ES5 {
		cw.Linef("%q: function(kwargs, args) {", name)
		cw.Indent()
		cw.Line("kwargs = kwargs || {};")
		cw.Line("args = args || [];")
		return
	}
	cw.Linef("%q: (kwargs = {}, args = []) => {", name)
	cw.Indent()
}

func (w *SimpleWriter) VisitPath(cw *CodeWriter, p Path) {
	cw.Linef("if (%s) { return %s; }", guardExpr(p, w.ES5), renderPath(p.Components, w.ES5))
}

func (w *SimpleWriter) ExitGroup(cw *CodeWriter, name, qname string) {
	if w.Throw {
		cw.Linef("throw new TypeError(%s);", jsString(noReversalMessage(qname)))
	}
	cw.Outdent()
	cw.Line("},")
}

func noReversalMessage(qname string) string {
	return fmt.Sprintf("No reversal available for parameters at path: '%s'", qname)
}

// guardExpr renders the argument check for one path: an exact set of
// names, an exact positional count, or no arguments at all.
func guardExpr(p Path, es5 bool) string {
	switch {
	case p.Positional:
		return fmt.Sprintf("args.length === %d", p.NArgs)
	case len(p.Params) > 0:
		member := fmt.Sprintf("%s.every(value => kwargs.hasOwnProperty(value))", paramArray(p.Params))
		if es5 {
			member = fmt.Sprintf("%s.every(function(value) { return kwargs.hasOwnProperty(value); })", paramArray(p.Params))
		}
		return fmt.Sprintf("Object.keys(kwargs).length === %d && %s", len(p.Params), member)
	default:
		return "Object.keys(kwargs).length === 0 && args.length === 0"
	}
}

// paramArray renders a sorted JavaScript array of parameter names. Sorting
// keeps the output stable across runs.
func paramArray(params []string) string {
	sorted := append([]string{}, params...)
	sort.Strings(sorted)
	quoted := make([]string, len(sorted))
	for i, p := range sorted {
		quoted[i] = jsString(p)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
