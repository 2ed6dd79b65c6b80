package routes

import (
	"os"
	"path/filepath"
	"testing"
)

const manifestJSON = `{
  "converters": [
    {"name": "ticket", "regex": "[A-Z]{3}-[0-9]+", "placeholder": "ABC-1"}
  ],
  "routes": [
    {"route": "year/<int:y>/", "name": "custom"},
    {"regex": "^archive/(?P<slug>[-a-z]+)/$", "name": "archive"},
    {"route": "issues/<ticket:ref>/", "name": "issue"},
    {"route": "page/", "name": "page", "defaults": {"kind": "news"}},
    {"include": {
      "prefix": "admin/",
      "namespace": "admin",
      "routes": [
        {"route": "users/<int:id>/", "name": "detail"}
      ]
    }}
  ]
}`

func TestParseManifest(t *testing.T) {
	entries, err := ParseManifest([]byte(manifestJSON))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5", len(entries))
	}

	tests := []struct {
		qname  string
		kwargs map[string]any
		want   string
	}{
		{"custom", map[string]any{"y": 2021}, "/year/2021/"},
		{"archive", map[string]any{"slug": "old-news"}, "/archive/old-news/"},
		{"issue", map[string]any{"ref": "URL-77"}, "/issues/URL-77/"},
		{"page", nil, "/page/"},
		{"admin:detail", map[string]any{"id": 8}, "/admin/users/8/"},
	}
	for _, tt := range tests {
		got, err := Reverse(entries, tt.qname, tt.kwargs)
		if err != nil {
			t.Errorf("Reverse(%q): %v", tt.qname, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Reverse(%q) = %q, want %q", tt.qname, got, tt.want)
		}
	}
}

func TestParseManifestRootRoute(t *testing.T) {
	entries, err := ParseManifest([]byte(`{"routes":[{"route": "", "name": "home"}]}`))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	got, err := Reverse(entries, "home", nil)
	if err != nil {
		t.Fatalf("Reverse(home): %v", err)
	}
	if got != "/" {
		t.Errorf("Reverse(home) = %q, want %q", got, "/")
	}
}

func TestParseManifestCustomConverterValidates(t *testing.T) {
	if _, err := ParseManifest([]byte(manifestJSON)); err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	c, ok := LookupConverter("ticket")
	if !ok {
		t.Fatal("ticket converter not registered")
	}
	if _, err := c.Format("not-a-ticket"); err == nil {
		t.Error("ticket.Format should reject values outside its pattern")
	}
}

func TestParseManifestErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{`},
		{"route and regex both set", `{"routes":[{"route":"a/","regex":"^a/$","name":"a"}]}`},
		{"nothing set and no name", `{"routes":[{}]}`},
		{"bad nested route", `{"routes":[{"include":{"prefix":"p/","routes":[{"route":"<bad:x>/","name":"x"}]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseManifest([]byte(tt.json)); err == nil {
				t.Errorf("ParseManifest should fail")
			}
		})
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.json")
	if err := os.WriteFile(path, []byte(manifestJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	entries, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("got %d entries, want 5", len(entries))
	}

	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadManifest of a missing file should fail")
	}
}
