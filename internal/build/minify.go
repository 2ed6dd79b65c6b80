package build

import (
	"strings"

	esbuildApi "github.com/evanw/esbuild/pkg/api"

	"github.com/urlgen-dev/urlgen/internal/errors"
)

// Minify compresses generated JavaScript. es5 keeps the output within ES5
// syntax so the minifier never introduces newer constructs than the
// writer emitted.
func Minify(src string, es5 bool) (string, error) {
	target := esbuildApi.ES2020
	if es5 {
		target = esbuildApi.ES5
	}
	result := esbuildApi.Transform(src, esbuildApi.TransformOptions{
		Loader:            esbuildApi.LoaderJS,
		Target:            target,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LegalComments:     esbuildApi.LegalCommentsNone,
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, m := range result.Errors {
			msgs = append(msgs, m.Text)
		}
		return "", errors.Newf(errors.CategoryGeneration, "minify failed: %s", strings.Join(msgs, "; "))
	}
	return string(result.Code), nil
}
