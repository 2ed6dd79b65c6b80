package placeholders

import (
	"errors"
	"testing"

	"github.com/urlgen-dev/urlgen/pkg/routes"
)

func TestNamedPriority(t *testing.T) {
	r := NewRegistry()
	r.RegisterConverter("int", 99)
	r.RegisterAppVariable("shop", "id", 7)
	r.RegisterVariable("id", 1, 2)

	intc, _ := routes.LookupConverter("int")
	got, err := r.Named("id", intc, "shop")
	if err != nil {
		t.Fatalf("Named: %v", err)
	}
	// converter default, converter-registered, app-scoped, name-scoped
	want := []any{intc.Placeholder, 99, 7, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNamedConverterDefaultAlone(t *testing.T) {
	r := NewRegistry()
	slug, _ := routes.LookupConverter("slug")
	got, err := r.Named("title", slug, "")
	if err != nil {
		t.Fatalf("Named: %v", err)
	}
	if len(got) != 1 || got[0] != slug.Placeholder {
		t.Errorf("got %v, want just the converter default", got)
	}
}

func TestNamedAppScopeBeatsNameScope(t *testing.T) {
	r := NewRegistry()
	r.RegisterVariable("pk", "global")
	r.RegisterAppVariable("blog", "pk", "scoped")

	got, err := r.Named("pk", nil, "blog")
	if err != nil {
		t.Fatalf("Named: %v", err)
	}
	if got[0] != "scoped" || got[1] != "global" {
		t.Errorf("got %v, want app-scoped first", got)
	}
}

func TestAppVariableVisibleOutsideApp(t *testing.T) {
	r := NewRegistry()
	r.RegisterAppVariable("admin", "app_label", "site")

	got, err := r.Named("app_label", nil, "")
	if err != nil {
		t.Fatalf("Named: %v", err)
	}
	if len(got) != 1 || got[0] != "site" {
		t.Errorf("got %v, want [site]", got)
	}
}

func TestRegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	r.RegisterVariable("id", 1, 2)
	r.RegisterVariable("id", 1, 2)
	r.RegisterAppVariable("shop", "id", 7)
	r.RegisterAppVariable("shop", "id", 7)

	got, err := r.Named("id", nil, "shop")
	if err != nil {
		t.Fatalf("Named: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %v, want [7 1 2] with no duplicates", got)
	}

	r.RegisterUnnamed("rev", 12, 4)
	r.RegisterUnnamed("rev", 12, 4)
	tuples, err := r.Unnamed("rev", "", 2)
	if err != nil {
		t.Fatalf("Unnamed: %v", err)
	}
	if len(tuples[0]) != 1 {
		t.Errorf("position 0 = %v, want one candidate", tuples[0])
	}
}

func TestAppUnnamedVisibleOutsideApp(t *testing.T) {
	r := NewRegistry()
	r.RegisterAppUnnamed("shop", "rev", 5)

	got, err := r.Unnamed("rev", "", 1)
	if err != nil {
		t.Fatalf("Unnamed: %v", err)
	}
	if len(got[0]) != 1 || got[0][0] != 5 {
		t.Errorf("got %v, want [5]", got[0])
	}
}

func TestNamedNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Named("mystery", nil, "")
	if !errors.Is(err, ErrPlaceholderNotFound) {
		t.Fatalf("error = %v, want ErrPlaceholderNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Var != "mystery" {
		t.Errorf("error = %#v, want NotFoundError for %q", err, "mystery")
	}
}

func TestUnnamed(t *testing.T) {
	r := NewRegistry()
	r.RegisterUnnamed("rev", 12, 4)
	r.RegisterUnnamed("rev", 99, 1)
	r.RegisterUnnamed("rev", 3) // wrong arity, ignored

	got, err := r.Unnamed("rev", "", 2)
	if err != nil {
		t.Fatalf("Unnamed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d positions, want 2", len(got))
	}
	if len(got[0]) != 2 || got[0][0] != 12 || got[0][1] != 99 {
		t.Errorf("position 0 = %v, want [12 99]", got[0])
	}
	if len(got[1]) != 2 || got[1][0] != 4 || got[1][1] != 1 {
		t.Errorf("position 1 = %v, want [4 1]", got[1])
	}
}

func TestUnnamedAppScopeFirst(t *testing.T) {
	r := NewRegistry()
	r.RegisterUnnamed("rev", "global")
	r.RegisterAppUnnamed("shop", "rev", "scoped")

	got, err := r.Unnamed("rev", "shop", 1)
	if err != nil {
		t.Fatalf("Unnamed: %v", err)
	}
	if got[0][0] != "scoped" || got[0][1] != "global" {
		t.Errorf("got %v, want app-scoped first", got[0])
	}
}

func TestUnnamedNotFound(t *testing.T) {
	r := NewRegistry()
	r.RegisterUnnamed("rev", 1) // arity 1, lookup wants 2
	if _, err := r.Unnamed("rev", "", 2); !errors.Is(err, ErrPlaceholderNotFound) {
		t.Errorf("error = %v, want ErrPlaceholderNotFound", err)
	}
	if _, err := r.Unnamed("other", "", 1); !errors.Is(err, ErrPlaceholderNotFound) {
		t.Errorf("error = %v, want ErrPlaceholderNotFound", err)
	}
}
