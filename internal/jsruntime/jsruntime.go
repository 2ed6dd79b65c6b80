// Package jsruntime wraps an embedded QuickJS engine. Verification uses
// it to execute generated artifacts and call their reversal functions.
package jsruntime

import (
	"github.com/buke/quickjs-go"
)

// Runtime is a single QuickJS runtime with one context. It is not safe
// for concurrent use.
type Runtime struct {
	runtime *quickjs.Runtime
	context *quickjs.Context
}

// New creates a new runtime.
func New() *Runtime {
	rt := quickjs.NewRuntime()
	return &Runtime{
		runtime: rt,
		context: rt.NewContext(),
	}
}

// Eval runs JavaScript code and returns the result as a string.
func (r *Runtime) Eval(code string) (string, error) {
	res := r.context.Eval(code)
	defer res.Free()

	if res.IsException() {
		return "", res.Error()
	}
	return res.String(), nil
}

// Preload runs JavaScript code without returning a result. Used to load
// a generated artifact once before evaluating expressions against it.
func (r *Runtime) Preload(code string) error {
	res := r.context.Eval(code)
	defer res.Free()

	if res.IsException() {
		return res.Error()
	}
	return nil
}

// Close permanently destroys the runtime.
func (r *Runtime) Close() {
	if r.context != nil {
		r.context.Close()
		r.context = nil
	}
	if r.runtime != nil {
		r.runtime.Close()
		r.runtime = nil
	}
}
