package urljs

import (
	"errors"
	"strings"
	"testing"

	"github.com/urlgen-dev/urlgen/pkg/placeholders"
	"github.com/urlgen-dev/urlgen/pkg/routes"
)

// collectWriter records visitor calls without emitting JavaScript.
type collectWriter struct {
	groups map[string][]Path
	order  []string
	cur    string
}

func newCollectWriter() *collectWriter {
	return &collectWriter{groups: map[string][]Path{}}
}

func (w *collectWriter) Init(*CodeWriter)                          {}
func (w *collectWriter) Close(*CodeWriter)                         {}
func (w *collectWriter) EnterNamespace(_ *CodeWriter, name string) {}
func (w *collectWriter) ExitNamespace(_ *CodeWriter, name string)  {}
func (w *collectWriter) EnterGroup(_ *CodeWriter, name, qname string) {
	w.order = append(w.order, qname)
	w.cur = qname
}
func (w *collectWriter) ExitGroup(_ *CodeWriter, name, qname string) {}
func (w *collectWriter) VisitPath(_ *CodeWriter, p Path) {
	w.groups[w.cur] = append(w.groups[w.cur], p)
}

func renderComponents(comps []Component, fill map[string]string, positional []string) string {
	var b strings.Builder
	for _, c := range comps {
		if c.Sub == nil {
			b.WriteString(c.Literal)
		} else if c.Sub.Name != "" {
			b.WriteString(fill[c.Sub.Name])
		} else {
			b.WriteString(positional[c.Sub.Index])
		}
	}
	return b.String()
}

func TestTranspileYearRoute(t *testing.T) {
	table := []routes.Entry{route(t, "year/<int:y>/", "custom")}
	w := newCollectWriter()
	if _, err := Transpile(table, w, Options{}); err != nil {
		t.Fatalf("Transpile: %v", err)
	}

	paths := w.groups["custom"]
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	p := paths[0]
	if len(p.Params) != 1 || p.Params[0] != "y" {
		t.Errorf("params = %v, want [y]", p.Params)
	}
	got := renderComponents(p.Components, map[string]string{"y": "2021"}, nil)
	if want := "/year/2021/"; got != want {
		t.Errorf("rendered = %q, want %q", got, want)
	}

	// the rendering must agree with the server-side reversal
	server, err := routes.Reverse(table, "custom", map[string]any{"y": 2021})
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if got != server {
		t.Errorf("client %q != server %q", got, server)
	}
}

func TestTranspileZeroParamRoute(t *testing.T) {
	table := []routes.Entry{route(t, "", "home"), route(t, "about/", "about")}
	w := newCollectWriter()
	if _, err := Transpile(table, w, Options{}); err != nil {
		t.Fatalf("Transpile: %v", err)
	}

	for qname, want := range map[string]string{"home": "/", "about": "/about/"} {
		paths := w.groups[qname]
		if len(paths) != 1 {
			t.Fatalf("%s: got %d paths", qname, len(paths))
		}
		p := paths[0]
		if p.Positional || len(p.Params) != 0 {
			t.Errorf("%s: should take no arguments: %+v", qname, p)
		}
		if got := renderComponents(p.Components, nil, nil); got != want {
			t.Errorf("%s rendered = %q, want %q", qname, got, want)
		}
	}
}

func TestTranspileGuardOrder(t *testing.T) {
	table := []routes.Entry{
		route(t, "items/<int:id>/", "item"),
		route(t, "items/<slug:slug>/", "item"),
	}
	w := newCollectWriter()
	if _, err := Transpile(table, w, Options{}); err != nil {
		t.Fatalf("Transpile: %v", err)
	}

	paths := w.groups["item"]
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	// guards come out in registration order: id first, slug second
	if len(paths[0].Params) != 1 || paths[0].Params[0] != "id" {
		t.Errorf("first guard params = %v, want [id]", paths[0].Params)
	}
	if len(paths[1].Params) != 1 || paths[1].Params[0] != "slug" {
		t.Errorf("second guard params = %v, want [slug]", paths[1].Params)
	}
}

func TestTranspileNamespaces(t *testing.T) {
	table := adminTable(t)
	w := newCollectWriter()
	if _, err := Transpile(table, w, Options{}); err != nil {
		t.Fatalf("Transpile: %v", err)
	}

	p := w.groups["admin:reports:by_year"]
	if len(p) != 1 {
		t.Fatalf("admin:reports:by_year paths = %d, want 1", len(p))
	}
	got := renderComponents(p[0].Components, map[string]string{"year": "1999"}, nil)
	if want := "/admin/reports/1999/"; got != want {
		t.Errorf("rendered = %q, want %q", got, want)
	}
}

func TestTranspileExcludeWildcard(t *testing.T) {
	w := newCollectWriter()
	if _, err := Transpile(adminTable(t), w, Options{Exclude: []string{"admin:*"}}); err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	for qname := range w.groups {
		if strings.HasPrefix(qname, "admin:") {
			t.Errorf("excluded route %q was emitted", qname)
		}
	}
}

func TestTranspilePositional(t *testing.T) {
	r, err := routes.NewRegexRoute(`^item/([0-9]+)/rev/([0-9]+)/$`, "rev")
	if err != nil {
		t.Fatal(err)
	}
	reg := placeholders.NewRegistry()
	reg.RegisterUnnamed("rev", 12, 4)

	w := newCollectWriter()
	if _, err := Transpile([]routes.Entry{r}, w, Options{Registry: reg}); err != nil {
		t.Fatalf("Transpile: %v", err)
	}

	paths := w.groups["rev"]
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	p := paths[0]
	if !p.Positional || p.NArgs != 2 {
		t.Fatalf("path shape = %+v, want 2 positional args", p)
	}
	got := renderComponents(p.Components, nil, []string{"12", "4"})
	if want := "/item/12/rev/4/"; got != want {
		t.Errorf("rendered = %q, want %q", got, want)
	}
}

func TestTranspileRegexNamed(t *testing.T) {
	r, err := routes.NewRegexRoute(`^archive/(?P<year>[0-9]{4})/$`, "archive")
	if err != nil {
		t.Fatal(err)
	}
	reg := placeholders.NewRegistry()
	reg.RegisterVariable("year", 2021)

	w := newCollectWriter()
	if _, err := Transpile([]routes.Entry{r}, w, Options{Registry: reg}); err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	p := w.groups["archive"]
	if len(p) != 1 {
		t.Fatalf("paths = %d, want 1", len(p))
	}
	got := renderComponents(p[0].Components, map[string]string{"year": "2038"}, nil)
	if want := "/archive/2038/"; got != want {
		t.Errorf("rendered = %q, want %q", got, want)
	}
}

func TestTranspileCandidateRetry(t *testing.T) {
	// the first sample fails the 4-digit group, the second succeeds
	r, err := routes.NewRegexRoute(`^archive/(?P<year>[0-9]{4})/$`, "archive")
	if err != nil {
		t.Fatal(err)
	}
	reg := placeholders.NewRegistry()
	reg.RegisterVariable("year", 7, 1999)

	w := newCollectWriter()
	if _, err := Transpile([]routes.Entry{r}, w, Options{Registry: reg}); err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if len(w.groups["archive"]) != 1 {
		t.Fatal("second candidate should have confirmed the route")
	}
}

func TestTranspileMissingPlaceholder(t *testing.T) {
	r, err := routes.NewRegexRoute(`^u/(?P<token>[a-z]{6})/$`, "unlock")
	if err != nil {
		t.Fatal(err)
	}
	_, err = Transpile([]routes.Entry{r}, newCollectWriter(), Options{})
	if !errors.Is(err, placeholders.ErrPlaceholderNotFound) {
		t.Fatalf("error = %v, want ErrPlaceholderNotFound", err)
	}
	var genErr *URLGenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want *URLGenerationError", err)
	}
	if genErr.QName != "unlock" {
		t.Errorf("QName = %q, want %q", genErr.QName, "unlock")
	}
}

func TestTranspileUnconfirmedRouteSkipped(t *testing.T) {
	// every sample fails the group, so the route is silently omitted
	r, err := routes.NewRegexRoute(`^u/(?P<token>[a-z]{6})/$`, "unlock")
	if err != nil {
		t.Fatal(err)
	}
	reg := placeholders.NewRegistry()
	reg.RegisterVariable("token", "nope")

	w := newCollectWriter()
	if _, err := Transpile([]routes.Entry{r}, w, Options{Registry: reg}); err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if len(w.groups) != 0 {
		t.Errorf("unconfirmed route was emitted: %v", w.groups)
	}
}

func TestTranspileRaiseOnNotFound(t *testing.T) {
	r, err := routes.NewRegexRoute(`^u/(?P<token>[a-z]{6})/$`, "unlock")
	if err != nil {
		t.Fatal(err)
	}
	reg := placeholders.NewRegistry()
	reg.RegisterVariable("token", "nope")

	_, err = Transpile([]routes.Entry{r}, newCollectWriter(), Options{Registry: reg, RaiseOnNotFound: true})
	var gen *URLGenerationError
	if !errors.As(err, &gen) || gen.QName != "unlock" {
		t.Fatalf("error = %v, want URLGenerationError for unlock", err)
	}
}

func TestTranspileReversalLimit(t *testing.T) {
	r, err := routes.NewRegexRoute(`^p/(?P<a>[0-9])/(?P<b>[0-9])/$`, "pair")
	if err != nil {
		t.Fatal(err)
	}
	reg := placeholders.NewRegistry()
	// no sample satisfies [0-9], so every combination is tried
	reg.RegisterVariable("a", "x", "y", "z")
	reg.RegisterVariable("b", "x", "y", "z")

	_, err = Transpile([]routes.Entry{r}, newCollectWriter(), Options{Registry: reg, ReversalLimit: 4})
	var lim *ReversalLimitError
	if !errors.As(err, &lim) || lim.Limit != 4 {
		t.Fatalf("error = %v, want ReversalLimitError with limit 4", err)
	}
}

func TestTranspileDefaultsEmitLiteral(t *testing.T) {
	r := route(t, "page/<str:kind>/", "page")
	r.DefaultArgs = map[string]any{"kind": "news"}

	w := newCollectWriter()
	if _, err := Transpile([]routes.Entry{r}, w, Options{}); err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	paths := w.groups["page"]
	if len(paths) != 1 {
		t.Fatalf("paths = %d, want 1", len(paths))
	}
	p := paths[0]
	if len(p.Params) != 0 {
		t.Errorf("defaulted parameter should not be caller-supplied: %v", p.Params)
	}
	if got := renderComponents(p.Components, nil, nil); got != "/page/news/" {
		t.Errorf("rendered = %q, want %q", got, "/page/news/")
	}
}

func TestTranspileAppScopedPlaceholders(t *testing.T) {
	r, err := routes.NewRegexRoute(`^go/(?P<code>[A-Z]{2})/$`, "go")
	if err != nil {
		t.Fatal(err)
	}
	inc := &routes.Include{Namespace: "links", AppName: "shortener", Patterns: []routes.Entry{r}}

	reg := placeholders.NewRegistry()
	reg.RegisterVariable("code", "xx") // fails the group
	reg.RegisterAppVariable("shortener", "code", "GO")

	w := newCollectWriter()
	if _, err := Transpile([]routes.Entry{inc}, w, Options{Registry: reg}); err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if len(w.groups["links:go"]) != 1 {
		t.Fatal("app-scoped sample should have confirmed the route")
	}
}
