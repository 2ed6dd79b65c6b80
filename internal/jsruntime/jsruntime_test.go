package jsruntime

import (
	"strings"
	"testing"
)

func TestEval(t *testing.T) {
	rt := New()
	defer rt.Close()

	got, err := rt.Eval(`"/articles/" + (2000 + 21) + "/"`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != "/articles/2021/" {
		t.Errorf("Eval = %q, want %q", got, "/articles/2021/")
	}
}

func TestEvalException(t *testing.T) {
	rt := New()
	defer rt.Close()

	_, err := rt.Eval(`(function() { throw new TypeError("nope"); })()`)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("error = %v, want TypeError message", err)
	}
}

func TestPreloadThenEval(t *testing.T) {
	rt := New()
	defer rt.Close()

	if err := rt.Preload(`var urls = { home: function() { return "/"; } };`); err != nil {
		t.Fatalf("Preload: %v", err)
	}

	got, err := rt.Eval(`urls.home()`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != "/" {
		t.Errorf("Eval = %q, want %q", got, "/")
	}
}
