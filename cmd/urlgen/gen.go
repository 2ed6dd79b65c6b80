package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/urlgen-dev/urlgen/internal/build"
	"github.com/urlgen-dev/urlgen/internal/config"
)

func genCmd() *cobra.Command {
	var (
		manifest   string
		minify     bool
		skipUpload bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate the configured JavaScript artifacts",
		Long: `Generate every artifact declared in urlgen.json.

Each artifact is transpiled from the route manifest, optionally
minified, written atomically, and uploaded to the configured bucket
when one is set.

Examples:
  urlgen gen
  urlgen gen --minify
  urlgen gen --manifest=build/routes.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(manifest, minify, skipUpload, verbose)
		},
	}

	cmd.Flags().StringVarP(&manifest, "manifest", "m", "", "Route manifest path (default from urlgen.json)")
	cmd.Flags().BoolVar(&minify, "minify", false, "Minify output regardless of config")
	cmd.Flags().BoolVar(&skipUpload, "skip-upload", false, "Skip bucket upload even when configured")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print each generation step")

	return cmd
}

func runGen(manifest string, minify, skipUpload, verbose bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	if manifest != "" {
		cfg.Manifest = manifest
	}

	builder := build.New(cfg, build.Options{
		Minify:     minify,
		SkipUpload: skipUpload,
		Verbose:    verbose,
		OnProgress: func(step string) {
			if verbose {
				info(step)
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	result, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	success("Generated %d artifact(s) in %s", len(result.Artifacts), result.Duration.Round(1000000))
	for _, a := range result.Artifacts {
		rel, relErr := filepath.Rel(cfg.Dir(), a.Output)
		if relErr != nil {
			rel = a.Output
		}
		line := fmt.Sprintf("%s  (%d routes, %s", rel, a.Routes, formatBytes(a.Size))
		if a.Minified {
			line += ", minified"
		}
		line += ")"
		info(line)
		if a.UploadedTo != "" {
			info("uploaded to " + a.UploadedTo)
		}
	}

	return nil
}
