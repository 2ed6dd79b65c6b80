package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/urlgen-dev/urlgen/internal/config"
	"github.com/urlgen-dev/urlgen/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		manifest string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a urlgen.json in the current directory",
		Long: `Write a urlgen.json with default settings: one class-style artifact
at static/urls.js generated from routes.json.

Examples:
  urlgen init
  urlgen init --manifest=build/routes.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(manifest, force)
		},
	}

	cmd.Flags().StringVarP(&manifest, "manifest", "m", "", "Route manifest path to record")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing urlgen.json")

	return cmd
}

func runInit(manifest string, force bool) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return errors.Newf(errors.CategoryConfig, "%s already exists", config.ConfigFileName).
			WithSuggestion("Pass --force to overwrite it")
	}

	cfg := config.New()
	if manifest != "" {
		cfg.Manifest = manifest
	}

	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	success("Wrote %s", config.ConfigFileName)
	info("Declare placeholder samples under \"placeholders\" and run: urlgen gen")
	return nil
}
