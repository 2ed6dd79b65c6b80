package routes

import (
	"errors"
	"regexp"
	"testing"
)

func mustRoute(t *testing.T, route, name string) *Route {
	t.Helper()
	r, err := NewRoute(route, name)
	if err != nil {
		t.Fatalf("NewRoute(%q): %v", route, err)
	}
	return r
}

func testTable(t *testing.T) []Entry {
	t.Helper()
	detail := mustRoute(t, "users/<int:id>/", "detail")
	sub, err := NewInclude("reports/", "reports",
		mustRoute(t, "<int:year>/", "by_year"),
	)
	if err != nil {
		t.Fatalf("NewInclude: %v", err)
	}
	admin, err := NewInclude("admin/", "admin", detail, sub)
	if err != nil {
		t.Fatalf("NewInclude: %v", err)
	}
	return []Entry{
		mustRoute(t, "", "home"),
		mustRoute(t, "year/<int:y>/", "custom"),
		mustRoute(t, "items/<int:id>/", "item"),
		mustRoute(t, "items/<slug:slug>/", "item"),
		admin,
	}
}

func TestReverse(t *testing.T) {
	table := testTable(t)
	tests := []struct {
		qname  string
		kwargs map[string]any
		args   []any
		want   string
	}{
		{qname: "home", want: "/"},
		{qname: "custom", kwargs: map[string]any{"y": 2021}, want: "/year/2021/"},
		{qname: "item", kwargs: map[string]any{"id": 5}, want: "/items/5/"},
		{qname: "item", kwargs: map[string]any{"slug": "lamp"}, want: "/items/lamp/"},
		{qname: "admin:detail", kwargs: map[string]any{"id": 3}, want: "/admin/users/3/"},
		{qname: "admin:reports:by_year", kwargs: map[string]any{"year": 1999}, want: "/admin/reports/1999/"},
	}
	for _, tt := range tests {
		t.Run(tt.qname, func(t *testing.T) {
			got, err := Reverse(table, tt.qname, tt.kwargs, tt.args...)
			if err != nil {
				t.Fatalf("Reverse(%q, %v): %v", tt.qname, tt.kwargs, err)
			}
			if got != tt.want {
				t.Errorf("Reverse(%q, %v) = %q, want %q", tt.qname, tt.kwargs, got, tt.want)
			}
		})
	}
}

func TestReverseNoMatch(t *testing.T) {
	table := testTable(t)
	tests := []struct {
		name   string
		qname  string
		kwargs map[string]any
	}{
		{name: "unknown name", qname: "nope"},
		{name: "unknown namespace", qname: "shop:item", kwargs: map[string]any{"id": 1}},
		{name: "missing argument", qname: "custom"},
		{name: "extra argument", qname: "custom", kwargs: map[string]any{"y": 1, "z": 2}},
		{name: "value rejected by converter", qname: "custom", kwargs: map[string]any{"y": "abc"}},
		{name: "name without namespace", qname: "detail", kwargs: map[string]any{"id": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reverse(table, tt.qname, tt.kwargs)
			if !errors.Is(err, ErrNoReverseMatch) {
				t.Errorf("Reverse(%q) error = %v, want ErrNoReverseMatch", tt.qname, err)
			}
		})
	}
}

func TestReverseMixedArguments(t *testing.T) {
	table := testTable(t)
	_, err := Reverse(table, "custom", map[string]any{"y": 1}, 2)
	if err == nil {
		t.Fatal("mixing named and positional arguments should fail")
	}
	if errors.Is(err, ErrNoReverseMatch) {
		t.Error("mixed arguments is a usage error, not a reversal miss")
	}
}

func TestReversePositional(t *testing.T) {
	re, err := NewRegexRoute(`^item/([0-9]+)/rev/([0-9]+)/$`, "rev")
	if err != nil {
		t.Fatalf("NewRegexRoute: %v", err)
	}
	table := []Entry{re}

	got, err := Reverse(table, "rev", nil, 12, 4)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if want := "/item/12/rev/4/"; got != want {
		t.Errorf("Reverse = %q, want %q", got, want)
	}
	if _, err := Reverse(table, "rev", nil, 12); !errors.Is(err, ErrNoReverseMatch) {
		t.Errorf("wrong arity error = %v, want ErrNoReverseMatch", err)
	}
}

func TestReverseDefaults(t *testing.T) {
	r := mustRoute(t, "page/", "page")
	r.DefaultArgs = map[string]any{"kind": "news"}
	table := []Entry{r}

	if got, err := Reverse(table, "page", nil); err != nil || got != "/page/" {
		t.Fatalf("Reverse() = %q, %v", got, err)
	}
	// a matching value for a defaulted parameter is accepted
	if got, err := Reverse(table, "page", map[string]any{"kind": "news"}); err != nil || got != "/page/" {
		t.Fatalf("Reverse(kind=news) = %q, %v", got, err)
	}
	if _, err := Reverse(table, "page", map[string]any{"kind": "sports"}); !errors.Is(err, ErrNoReverseMatch) {
		t.Errorf("conflicting default error = %v, want ErrNoReverseMatch", err)
	}
}

func TestReverseFirstMatchWins(t *testing.T) {
	table := []Entry{
		mustRoute(t, "first/<int:id>/", "dup"),
		mustRoute(t, "second/<int:id>/", "dup"),
	}
	got, err := Reverse(table, "dup", map[string]any{"id": 1})
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if want := "/first/1/"; got != want {
		t.Errorf("Reverse = %q, want %q", got, want)
	}
}

func TestReverseTransparentInclude(t *testing.T) {
	inner := mustRoute(t, "deep/<int:n>/", "leaf")
	inc, err := NewInclude("nested/", "", inner)
	if err != nil {
		t.Fatalf("NewInclude: %v", err)
	}
	table := []Entry{inc}

	got, err := Reverse(table, "leaf", map[string]any{"n": 9})
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if want := "/nested/deep/9/"; got != want {
		t.Errorf("Reverse = %q, want %q", got, want)
	}
}

func TestReverseSkipsNonReversible(t *testing.T) {
	wild, err := NewRegexRoute(`^items/.*$`, "item")
	if err != nil {
		t.Fatalf("NewRegexRoute: %v", err)
	}
	table := []Entry{
		wild,
		mustRoute(t, "items/<int:id>/", "item"),
	}
	got, err := Reverse(table, "item", map[string]any{"id": 2})
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if want := "/items/2/"; got != want {
		t.Errorf("Reverse = %q, want %q", got, want)
	}
}

func TestReverseRoundTrip(t *testing.T) {
	table := testTable(t)
	url, err := Reverse(table, "admin:detail", map[string]any{"id": 42})
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	// the produced path, stripped of the leading slash, must satisfy the
	// composite of the include prefixes and the leaf pattern
	admin := table[4].(*Include)
	leaf := admin.Patterns[0].(*Route)
	composite := StripAnchors(admin.Prefix.Source()) + StripAnchors(leaf.Pattern.Source())
	re := regexp.MustCompile("^" + composite + "$")
	if !re.MatchString(url[1:]) {
		t.Errorf("reversed URL %q does not satisfy composite %q", url, composite)
	}
}
