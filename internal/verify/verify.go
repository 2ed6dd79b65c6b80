// Package verify executes generated artifacts in an embedded JavaScript
// engine and replays every confirmed reversal against them. A passing
// report means the client-side reversal functions agree with the server
// route table for the sample arguments that confirmed each path.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urlgen-dev/urlgen/internal/build"
	"github.com/urlgen-dev/urlgen/internal/config"
	"github.com/urlgen-dev/urlgen/internal/errors"
	"github.com/urlgen-dev/urlgen/internal/jsruntime"
	"github.com/urlgen-dev/urlgen/pkg/routes"
	"github.com/urlgen-dev/urlgen/pkg/urljs"
)

// Mismatch is one reversal where the generated JavaScript and the server
// route table disagree.
type Mismatch struct {
	// Artifact is the output path of the checked artifact.
	Artifact string

	// QName is the qualified route name.
	QName string

	// Want is the URL the server reverses to.
	Want string

	// Got is what the JavaScript returned, or the error it threw.
	Got string
}

// Report summarizes one verification run.
type Report struct {
	// Artifacts is the number of artifacts checked.
	Artifacts int

	// Checks is the number of reversals replayed.
	Checks int

	// Mismatches are the disagreements found.
	Mismatches []Mismatch
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0
}

// Verify regenerates each configured artifact in memory, loads it into a
// JavaScript engine, and calls every emitted reversal function with the
// sample arguments that confirmed it during generation.
func Verify(ctx context.Context, cfg *config.Config) (*Report, error) {
	entries, err := routes.LoadManifest(cfg.ManifestPath())
	if err != nil {
		return nil, errors.FromError(err, "E040")
	}

	registry := cfg.Registry()
	report := &Report{}

	for _, ac := range cfg.Artifacts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Export declarations only parse in module scope, so strip them
		// for evaluation. Emission is otherwise identical.
		ac.Export = false

		rec := &recorder{Writer: build.WriterFor(ac)}
		src, err := urljs.Transpile(entries, rec, urljs.Options{
			Registry:        registry,
			Include:         ac.Include,
			Exclude:         ac.Exclude,
			Indent:          ac.Indent,
			Depth:           ac.Depth,
			RaiseOnNotFound: ac.RaiseOnNotFound,
			ReversalLimit:   ac.ReversalLimit,
		})
		if err != nil {
			return nil, errors.FromError(err, "E001")
		}

		if err := checkArtifact(ac, src, rec.cases, report); err != nil {
			return nil, err
		}
		report.Artifacts++
	}

	return report, nil
}

func checkArtifact(ac config.ArtifactConfig, src string, cases []checkCase, report *Report) error {
	rt := jsruntime.New()
	defer rt.Close()

	if err := rt.Preload(src); err != nil {
		return errors.New("E080").
			WithDetail("Artifact " + ac.Output + " threw while loading").
			Wrap(err)
	}

	for _, c := range cases {
		expr, err := callExpr(ac, c)
		if err != nil {
			return err
		}

		report.Checks++
		got, err := rt.Eval(expr)
		if err != nil {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Artifact: ac.Output,
				QName:    c.qname,
				Want:     c.path.SampleURL,
				Got:      "threw: " + err.Error(),
			})
			continue
		}
		if got != c.path.SampleURL {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Artifact: ac.Output,
				QName:    c.qname,
				Want:     c.path.SampleURL,
				Got:      got,
			})
		}
	}

	return nil
}

// checkCase pairs a confirmed path with its qualified name.
type checkCase struct {
	qname string
	path  urljs.Path
}

// recorder captures every emitted path while delegating emission to the
// real writer, so the checked source and the check list stay in sync.
type recorder struct {
	urljs.Writer
	qname string
	cases []checkCase
}

func (r *recorder) EnterGroup(cw *urljs.CodeWriter, name, qname string) {
	r.qname = qname
	r.Writer.EnterGroup(cw, name, qname)
}

func (r *recorder) VisitPath(cw *urljs.CodeWriter, p urljs.Path) {
	r.cases = append(r.cases, checkCase{qname: r.qname, path: p})
	r.Writer.VisitPath(cw, p)
}

// callExpr builds the JavaScript expression replaying one reversal.
func callExpr(ac config.ArtifactConfig, c checkCase) (string, error) {
	kwargs, err := json.Marshal(sampleKwargs(c.path))
	if err != nil {
		return "", errors.New("E081").Wrap(err)
	}
	args, err := json.Marshal(sampleArgs(c.path))
	if err != nil {
		return "", errors.New("E081").Wrap(err)
	}

	if ac.Writer == "simple" {
		name := ac.VarName
		if name == "" {
			name = "urls"
		}
		var b strings.Builder
		b.WriteString(name)
		for _, part := range strings.Split(c.qname, ":") {
			fmt.Fprintf(&b, "[%q]", part)
		}
		fmt.Fprintf(&b, "(%s, %s)", kwargs, args)
		return b.String(), nil
	}

	name := ac.ClassName
	if name == "" {
		name = "URLResolver"
	}
	return fmt.Sprintf("(new %s()).reverse(%q, {kwargs: %s, args: %s})", name, c.qname, kwargs, args), nil
}

func sampleKwargs(p urljs.Path) map[string]any {
	if p.SampleKwargs == nil {
		return map[string]any{}
	}
	return p.SampleKwargs
}

func sampleArgs(p urljs.Path) []any {
	if p.SampleArgs == nil {
		return []any{}
	}
	return p.SampleArgs
}
