package urljs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ClassWriter emits a resolver class with a qualified-name reverse method
// and query string support:
//
//	const resolver = new URLResolver();
//	resolver.reverse("admin:detail", { kwargs: { id: 3 } });
//	resolver.reverse("search", { query: { q: "lamps" } });
//
// Modern output is an ES class with a private match helper; ES5 output is
// a constructor function with a prototype.
type ClassWriter struct {
	// ClassName names the emitted class, "URLResolver" by default.
	ClassName string
	ES5       bool
	// Export prefixes the class with "export". Ignored for ES5 output.
	Export bool
}

func (w *ClassWriter) className() string {
	if w.ClassName == "" {
		return "URLResolver"
	}
	return w.ClassName
}

func (w *ClassWriter) Init(cw *CodeWriter) {
	if w.ES5 {
		w.initES5(cw)
		return
	}
	decl := fmt.Sprintf("class %s {", w.className())
	if w.Export {
		decl = "export " + decl
	}
	cw.Line(decl)
	cw.Indent()

	cw.Line("constructor(options = null) {")
	cw.Indent()
	cw.Line("this.options = options || {};")
	cw.Line(`if (this.options.hasOwnProperty("namespace")) {`)
	cw.Indent()
	cw.Line("this.namespace = this.options.namespace;")
	cw.Line(`if (!this.namespace.endsWith(":")) { this.namespace += ":"; }`)
	cw.Outdent()
	cw.Line("} else {")
	cw.Indent()
	cw.Line(`this.namespace = "";`)
	cw.Outdent()
	cw.Line("}")
	cw.Outdent()
	cw.Line("}")
	cw.Blank()

	cw.Line("#match(kwargs, args, expected, defaults = {}) {")
	cw.Indent()
	cw.Line("if (Object.keys(defaults).length !== 0) {")
	cw.Indent()
	cw.Line("kwargs = Object.assign({}, kwargs);")
	cw.Line("for (const [key, value] of Object.entries(defaults)) {")
	cw.Indent()
	cw.Line("if (kwargs.hasOwnProperty(key)) {")
	cw.Indent()
	cw.Line("if (JSON.stringify(kwargs[key]) !== JSON.stringify(value)) { return false; }")
	cw.Line("if (!expected.includes(key)) { delete kwargs[key]; }")
	cw.Outdent()
	cw.Line("}")
	cw.Outdent()
	cw.Line("}")
	cw.Outdent()
	cw.Line("}")
	cw.Line("if (Array.isArray(expected)) {")
	cw.Indent()
	cw.Line("return Object.keys(kwargs).length === expected.length && expected.every(value => kwargs.hasOwnProperty(value));")
	cw.Outdent()
	cw.Line("} else if (expected) {")
	cw.Indent()
	cw.Line("return args.length === expected;")
	cw.Outdent()
	cw.Line("}")
	cw.Line("return Object.keys(kwargs).length === 0 && args.length === 0;")
	cw.Outdent()
	cw.Line("}")
	cw.Blank()

	cw.Line("reverse(qname, options = {}) {")
	cw.Indent()
	cw.Line("if (this.namespace) {")
	cw.Indent()
	cw.Line("qname = `${this.namespace}${qname.replace(this.namespace, \"\")}`;")
	cw.Outdent()
	cw.Line("}")
	cw.Line("const kwargs = options.kwargs || {};")
	cw.Line("const args = options.args || [];")
	cw.Line("const query = options.query || {};")
	cw.Line("let url = this.urls;")
	cw.Line(`for (const ns of qname.split(":")) {`)
	cw.Indent()
	cw.Line("if (ns && url) { url = url.hasOwnProperty(ns) ? url[ns] : null; }")
	cw.Outdent()
	cw.Line("}")
	cw.Line("if (url) {")
	cw.Indent()
	cw.Line("let pth = url(kwargs, args);")
	cw.Line(`if (typeof pth === "string") {`)
	cw.Indent()
	cw.Line("if (Object.keys(query).length !== 0) {")
	cw.Indent()
	cw.Line("const params = new URLSearchParams();")
	cw.Line("for (const [key, value] of Object.entries(query)) {")
	cw.Indent()
	cw.Line(`if (value === null || value === "") { params.append(key, ""); }`)
	cw.Line("else if (Array.isArray(value)) { value.forEach(element => params.append(key, element)); }")
	cw.Line("else { params.append(key, value); }")
	cw.Outdent()
	cw.Line("}")
	cw.Line("const queryString = params.toString();")
	cw.Line("if (queryString) { return `${pth.replace(/\\/+$/, \"\")}?${queryString}`; }")
	cw.Outdent()
	cw.Line("}")
	cw.Line("return pth;")
	cw.Outdent()
	cw.Line("}")
	cw.Outdent()
	cw.Line("}")
	cw.Line("throw new TypeError(`No reversal available for parameters at path: '${qname}'`);")
	cw.Outdent()
	cw.Line("}")
	cw.Blank()

	cw.Line("urls = {")
	cw.Indent()
}

func (w *ClassWriter) initES5(cw *CodeWriter) {
	name := w.className()
	cw.Linef("function %s(options) {", name)
	cw.Indent()
	cw.Line("this.options = options || {};")
	cw.Line(`if (this.options.hasOwnProperty("namespace")) {`)
	cw.Indent()
	cw.Line("this.namespace = this.options.namespace;")
	cw.Line(`if (this.namespace.charAt(this.namespace.length - 1) !== ":") { this.namespace += ":"; }`)
	cw.Outdent()
	cw.Line("} else {")
	cw.Indent()
	cw.Line(`this.namespace = "";`)
	cw.Outdent()
	cw.Line("}")
	cw.Line("var self = this;")
	cw.Line("this.urls = {")
	cw.Indent()
}

func (w *ClassWriter) Close(cw *CodeWriter) {
	if w.ES5 {
		w.closeES5(cw)
		return
	}
	cw.Outdent()
	cw.Line("};")
	cw.Outdent()
	cw.Line("}")
}

func (w *ClassWriter) closeES5(cw *CodeWriter) {
	name := w.className()
	cw.Outdent()
	cw.Line("};")
	cw.Outdent()
	cw.Line("}")
	cw.Blank()

	cw.Linef("%s.prototype.match = function(kwargs, args, expected, defaults) {", name)
	cw.Indent()
	cw.Line("defaults = defaults || {};")
	cw.Line("if (Object.keys(defaults).length !== 0) {")
	cw.Indent()
	cw.Line("var merged = {};")
	cw.Line("for (var k in kwargs) { if (kwargs.hasOwnProperty(k)) { merged[k] = kwargs[k]; } }")
	cw.Line("for (var key in defaults) {")
	cw.Indent()
	cw.Line("if (!defaults.hasOwnProperty(key) || !merged.hasOwnProperty(key)) { continue; }")
	cw.Line("if (JSON.stringify(merged[key]) !== JSON.stringify(defaults[key])) { return false; }")
	cw.Line("if (expected.indexOf(key) === -1) { delete merged[key]; }")
	cw.Outdent()
	cw.Line("}")
	cw.Line("kwargs = merged;")
	cw.Outdent()
	cw.Line("}")
	cw.Line("if (Array.isArray(expected)) {")
	cw.Indent()
	cw.Line("return Object.keys(kwargs).length === expected.length && expected.every(function(value) { return kwargs.hasOwnProperty(value); });")
	cw.Outdent()
	cw.Line("} else if (expected) {")
	cw.Indent()
	cw.Line("return args.length === expected;")
	cw.Outdent()
	cw.Line("}")
	cw.Line("return Object.keys(kwargs).length === 0 && args.length === 0;")
	cw.Outdent()
	cw.Line("};")
	cw.Blank()

	cw.Linef("%s.prototype.reverse = function(qname, options) {", name)
	cw.Indent()
	cw.Line("options = options || {};")
	cw.Line("if (this.namespace) {")
	cw.Indent()
	cw.Line(`qname = this.namespace + qname.replace(this.namespace, "");`)
	cw.Outdent()
	cw.Line("}")
	cw.Line("var kwargs = options.kwargs || {};")
	cw.Line("var args = options.args || [];")
	cw.Line("var query = options.query || {};")
	cw.Line("var url = this.urls;")
	cw.Line(`var parts = qname.split(":");`)
	cw.Line("for (var i = 0; i < parts.length; i++) {")
	cw.Indent()
	cw.Line("if (parts[i] && url) { url = url.hasOwnProperty(parts[i]) ? url[parts[i]] : null; }")
	cw.Outdent()
	cw.Line("}")
	cw.Line("if (url) {")
	cw.Indent()
	cw.Line("var pth = url(kwargs, args);")
	cw.Line(`if (typeof pth === "string") {`)
	cw.Indent()
	cw.Line("var pairs = [];")
	cw.Line("for (var key in query) {")
	cw.Indent()
	cw.Line("if (!query.hasOwnProperty(key)) { continue; }")
	cw.Line("var value = query[key];")
	cw.Line(`if (value === null || value === "") { pairs.push(encodeURIComponent(key) + "="); }`)
	cw.Line("else if (Array.isArray(value)) {")
	cw.Indent()
	cw.Line("for (var j = 0; j < value.length; j++) { pairs.push(encodeURIComponent(key) + \"=\" + encodeURIComponent(value[j])); }")
	cw.Outdent()
	cw.Line("}")
	cw.Line(`else { pairs.push(encodeURIComponent(key) + "=" + encodeURIComponent(value)); }`)
	cw.Outdent()
	cw.Line("}")
	cw.Line(`if (pairs.length !== 0) { return pth.replace(/\/+$/, "") + "?" + pairs.join("&"); }`)
	cw.Line("return pth;")
	cw.Outdent()
	cw.Line("}")
	cw.Outdent()
	cw.Line("}")
	cw.Line(`throw new TypeError("No reversal available for parameters at path: '" + qname + "'");`)
	cw.Outdent()
	cw.Line("};")
}

func (w *ClassWriter) EnterNamespace(cw *CodeWriter, name string) {
	cw.Linef("%q: {", name)
	cw.Indent()
}

func (w *ClassWriter) ExitNamespace(cw *CodeWriter, name string) {
	cw.Outdent()
	cw.Line("},")
}

func (w *ClassWriter) EnterGroup(cw *CodeWriter, name, qname string) {
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

func (w *ClassWriter) VisitPath(cw *CodeWriter, p Path) {
	cw.Linef("if (%s) { return %s; }", w.matchCall(p), renderPath(p.Components, w.ES5))
}

// matchCall renders the guard as a call to the shared match helper.
func (w *ClassWriter) matchCall(p Path) string {
	helper := "this.#match"
	if w.ES5 {
		helper = "self.match"
	}
	expected := ""
	switch {
	case p.Positional:
		expected = fmt.Sprintf(", %d", p.NArgs)
	case len(p.Params) > 0:
		expected = ", " + paramArray(p.Params)
	}
	if len(p.Defaults) > 0 && !p.Positional {
		if expected == "" {
			expected = ", []"
		}
		expected += ", " + defaultsObject(p.Defaults)
	}
	return fmt.Sprintf("%s(kwargs, args%s)", helper, expected)
}

// defaultsObject renders baked-in route values as a JavaScript object
// literal with stable key order.
func defaultsObject(defaults map[string]any) string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, err := json.Marshal(defaults[k])
		if err != nil {
			v = []byte("null")
		}
		parts = append(parts, fmt.Sprintf("%s: %s", jsString(k), v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ExitGroup closes the group function. Unlike SimpleWriter the class form
// falls through to undefined and lets reverse raise the error, so one
// message covers every group.
func (w *ClassWriter) ExitGroup(cw *CodeWriter, name, qname string) {
	cw.Outdent()
	cw.Line("},")
}
