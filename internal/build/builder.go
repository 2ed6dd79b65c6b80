package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urlgen-dev/urlgen/internal/config"
	"github.com/urlgen-dev/urlgen/internal/errors"
	"github.com/urlgen-dev/urlgen/pkg/routes"
	"github.com/urlgen-dev/urlgen/pkg/urljs"
)

// Artifact describes one generated output file.
type Artifact struct {
	// Output is the absolute path the file was written to.
	Output string

	// Size is the written size in bytes.
	Size int64

	// Routes is how many reversal functions the file contains.
	Routes int

	// Minified reports whether the output went through the minifier.
	Minified bool

	// UploadedTo is the bucket key the artifact was uploaded to, if any.
	UploadedTo string
}

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Artifacts are the generated files, in config order.
	Artifacts []Artifact
}

// Options configures the builder.
type Options struct {
	// Minify enables minification regardless of the config setting.
	Minify bool

	// SkipUpload suppresses bucket uploads even when configured.
	SkipUpload bool

	// Verbose enables verbose output.
	Verbose bool

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder generates the configured artifacts from the route manifest.
type Builder struct {
	config  *config.Config
	options Options
	entries []routes.Entry
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	// Apply config defaults to options
	if !options.Minify && cfg.Build.Minify {
		options.Minify = true
	}
	return &Builder{
		config:  cfg,
		options: options,
	}
}

// Build generates every configured artifact.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}

	b.progress("Loading route manifest...")
	entries, err := routes.LoadManifest(b.config.ManifestPath())
	if err != nil {
		return nil, errors.FromError(err, "E040")
	}
	b.entries = entries

	registry := b.config.Registry()

	for _, ac := range b.config.Artifacts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.progress("Generating " + ac.Output + "...")

		opts := urljs.Options{
			Registry:        registry,
			Include:         ac.Include,
			Exclude:         ac.Exclude,
			Indent:          ac.Indent,
			Depth:           ac.Depth,
			RaiseOnNotFound: ac.RaiseOnNotFound,
			ReversalLimit:   ac.ReversalLimit,
		}

		counter := &countingWriter{Writer: WriterFor(ac)}
		src, err := urljs.Transpile(entries, counter, opts)
		if err != nil {
			return nil, errors.FromError(err, "E001")
		}
		if counter.routes == 0 {
			return nil, errors.New("E003").
				WithDetail("Artifact " + ac.Output + " selected no routes")
		}

		if b.config.Build.SourceComment {
			src = generatedHeader(b.config.Manifest) + src
		}

		minified := false
		if b.options.Minify {
			b.progress("Minifying " + ac.Output + "...")
			src, err = Minify(src, ac.ES5)
			if err != nil {
				return nil, err
			}
			minified = true
		}

		out := b.config.ArtifactPath(ac)
		if err := writeFileAtomic(out, []byte(src)); err != nil {
			return nil, errors.New("E090").Wrap(err)
		}

		artifact := Artifact{
			Output:   out,
			Size:     int64(len(src)),
			Routes:   counter.routes,
			Minified: minified,
		}

		if b.config.Upload.Bucket != "" && !b.options.SkipUpload {
			b.progress("Uploading " + ac.Output + "...")
			key, err := b.upload(ctx, ac, []byte(src))
			if err != nil {
				return nil, errors.FromError(err, "E091")
			}
			artifact.UploadedTo = key
		}

		result.Artifacts = append(result.Artifacts, artifact)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// Entries returns the route table loaded by the last Build call.
func (b *Builder) Entries() []routes.Entry {
	return b.entries
}

func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// WriterFor builds the emitter an artifact config asks for. Config
// validation has already restricted Writer to the known names.
func WriterFor(ac config.ArtifactConfig) urljs.Writer {
	if ac.Writer == "simple" {
		return &urljs.SimpleWriter{
			VarName: ac.VarName,
			ES5:     ac.ES5,
			Export:  ac.Export,
			Throw:   ac.Throw,
		}
	}
	return &urljs.ClassWriter{
		ClassName: ac.ClassName,
		ES5:       ac.ES5,
		Export:    ac.Export,
	}
}

// countingWriter tallies emitted reversal functions around another writer.
type countingWriter struct {
	urljs.Writer
	routes int
}

func (c *countingWriter) EnterGroup(cw *urljs.CodeWriter, name, qname string) {
	c.routes++
	c.Writer.EnterGroup(cw, name, qname)
}

func generatedHeader(manifest string) string {
	return fmt.Sprintf("/* generated by urlgen from %s; do not edit */\n", manifest)
}

// writeFileAtomic writes via a temp file and rename so readers never see
// a partially written artifact.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
