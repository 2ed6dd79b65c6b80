package routes

import (
	"errors"
	"testing"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		route   string
		source  string
		matches []string
		rejects []string
	}{
		{
			route:   "year/<int:y>/",
			source:  `^year/(?P<y>[0-9]+)/$`,
			matches: []string{"year/2021/", "year/0/"},
			rejects: []string{"year/abc/", "year/2021", "month/2021/"},
		},
		{
			route:   "posts/<slug:title>/",
			source:  `^posts/(?P<title>[-a-zA-Z0-9_]+)/$`,
			matches: []string{"posts/hello-world/"},
			rejects: []string{"posts/hello world/"},
		},
		{
			route:   "<name>/",
			source:  `^(?P<name>[^/]+)/$`,
			matches: []string{"anything/"},
			rejects: []string{"a/b/"},
		},
		{
			route:   "docs/<path:rest>",
			source:  `^docs/(?P<rest>.+)$`,
			matches: []string{"docs/a/b/c"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			p, err := ParseRoute(tt.route)
			if err != nil {
				t.Fatalf("ParseRoute(%q): %v", tt.route, err)
			}
			if p.Source() != tt.source {
				t.Errorf("source = %q, want %q", p.Source(), tt.source)
			}
			for _, m := range tt.matches {
				if !p.Regex().MatchString(m) {
					t.Errorf("%q should match %q", tt.route, m)
				}
			}
			for _, r := range tt.rejects {
				if p.Regex().MatchString(r) {
					t.Errorf("%q should not match %q", tt.route, r)
				}
			}
		})
	}
}

func TestParseRouteErrors(t *testing.T) {
	for _, route := range []string{
		"year/<int:y/",
		"year/<nope:y>/",
		"year/<int:>/",
		"pair/<int:a>/<int:a>/",
	} {
		if _, err := ParseRoute(route); err == nil {
			t.Errorf("ParseRoute(%q) should fail", route)
		}
	}
}

func TestRouteTemplate(t *testing.T) {
	p := MustParseRoute("year/<int:y>/month/<int:m>/")
	segs, err := p.template()
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	want := []segment{
		{literal: "year/", group: -1},
		{group: 0},
		{literal: "/month/", group: -1},
		{group: 1},
		{literal: "/", group: -1},
	}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments, want %d: %+v", len(segs), len(want), segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, segs[i], want[i])
		}
	}
}

func TestRegexTemplate(t *testing.T) {
	p := MustParseRegex(`^archive/(?P<year>[0-9]{4})/$`)
	segs, err := p.template()
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("got %d segments: %+v", len(segs), segs)
	}
	if segs[0].literal != "archive/" || segs[1].group != 0 || segs[2].literal != "/" {
		t.Errorf("unexpected template: %+v", segs)
	}
	caps := captures(p)
	if len(caps) != 1 || caps[0].name != "year" {
		t.Fatalf("unexpected captures: %+v", caps)
	}
	if _, err := caps[0].format(1999); err != nil {
		t.Errorf("format(1999): %v", err)
	}
	if _, err := caps[0].format("99"); err == nil {
		t.Errorf("format(%q) should fail against [0-9]{4}", "99")
	}
}

func TestRegexTemplateConstructs(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		reversible bool
		rendered   string // joining literals with captures formatted as noted
	}{
		{name: "escaped dot", source: `^file\.txt$`, reversible: true, rendered: "file.txt"},
		{name: "non-capturing inline", source: `^a/(?:b/)c/$`, reversible: true, rendered: "a/b/c/"},
		{name: "optional group dropped", source: `^a/(?:b/)?c/$`, reversible: true, rendered: "a/c/"},
		{name: "optional literal dropped", source: `^colou?r/$`, reversible: true, rendered: "color/"},
		{name: "word class", source: `^a/\d+/$`, reversible: false},
		{name: "char class", source: `^a/[bc]/$`, reversible: false},
		{name: "alternation", source: `^a|b$`, reversible: false},
		{name: "wildcard", source: `^a/.*/$`, reversible: false},
		{name: "quantified group", source: `^(?P<x>[0-9])+/$`, reversible: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := MustParseRegex(tt.source)
			segs, err := p.template()
			if !tt.reversible {
				if !errors.Is(err, ErrNoReverseMatch) {
					t.Fatalf("template(%q) error = %v, want ErrNoReverseMatch", tt.source, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("template(%q): %v", tt.source, err)
			}
			var got string
			for _, s := range segs {
				if s.group >= 0 {
					t.Fatalf("unexpected capture in %q template", tt.source)
				}
				got += s.literal
			}
			if got != tt.rendered {
				t.Errorf("template(%q) renders %q, want %q", tt.source, got, tt.rendered)
			}
		})
	}
}

func TestParseRegexLeadingSlash(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`^/archive/(?P<slug>[-a-z]+)/$`, `^archive/(?P<slug>[-a-z]+)/$`},
		{`^\/archive\/$`, `^archive\/$`},
		{`/plain/`, `plain/`},
	}
	for _, tt := range tests {
		p, err := ParseRegex(tt.source)
		if err != nil {
			t.Fatalf("ParseRegex(%q): %v", tt.source, err)
		}
		if p.Source() != tt.want {
			t.Errorf("Source() = %q, want %q", p.Source(), tt.want)
		}
	}

	r, err := NewRegexRoute(`^/archive/(?P<slug>[-a-z]+)/$`, "archive")
	if err != nil {
		t.Fatal(err)
	}
	got, err := Reverse([]Entry{r}, "archive", map[string]any{"slug": "old-news"})
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if got != "/archive/old-news/" {
		t.Errorf("Reverse = %q, want single leading slash", got)
	}
}

func TestParseRegexRejectsLookahead(t *testing.T) {
	// RE2 has no lookaround, so these never get past compilation.
	for _, source := range []string{`^a(?=b)$`, `^a(?!b)$`} {
		if _, err := ParseRegex(source); err == nil {
			t.Errorf("ParseRegex(%q) should fail", source)
		}
	}
}

func TestRegexPositionalGroups(t *testing.T) {
	p := MustParseRegex(`^item/([0-9]+)/rev/([0-9]+)/$`)
	caps := captures(p)
	if len(caps) != 2 {
		t.Fatalf("got %d captures, want 2", len(caps))
	}
	for i, c := range caps {
		if c.name != "" {
			t.Errorf("capture %d name = %q, want unnamed", i, c.name)
		}
	}
}

func TestConverterFormat(t *testing.T) {
	intc, _ := LookupConverter("int")
	if got, err := intc.Format(2021); err != nil || got != "2021" {
		t.Fatalf("int.Format(2021) = %q, %v", got, err)
	}
	if _, err := intc.Format("abc"); !errors.Is(err, ErrNoReverseMatch) {
		t.Errorf("int.Format(abc) error = %v, want ErrNoReverseMatch", err)
	}
	// JSON decodes numbers as float64
	if got, err := intc.Format(float64(7)); err != nil || got != "7" {
		t.Errorf("int.Format(float64(7)) = %q, %v", got, err)
	}
	slug, _ := LookupConverter("slug")
	if _, err := slug.Format("no spaces here"); !errors.Is(err, ErrNoReverseMatch) {
		t.Errorf("slug.Format error = %v, want ErrNoReverseMatch", err)
	}
}
