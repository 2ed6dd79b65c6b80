package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/urlgen-dev/urlgen/internal/build"
	"github.com/urlgen-dev/urlgen/internal/config"
	"github.com/urlgen-dev/urlgen/internal/dev"
)

func devCmd() *cobra.Command {
	var (
		port        int
		host        string
		openBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Watch the route table and regenerate on change",
		Long: `Start the development server.

The server watches the route manifest and urlgen.json, regenerates
artifacts on change, serves the generated files, and reloads
connected browsers over WebSocket. Generation errors appear in an
in-page overlay.

Examples:
  urlgen dev
  urlgen dev --port=8080
  urlgen dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host, openBrowser)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from urlgen.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from urlgen.json)")
	cmd.Flags().BoolVarP(&openBrowser, "open", "o", false, "Open browser on start")

	return cmd
}

func runDev(port int, host string, openBrowser bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if openBrowser {
		cfg.Dev.OpenBrowser = true
	}

	server := dev.NewServer(dev.ServerOptions{
		Config:  cfg,
		Verbose: true,
		OnBuildComplete: func(result *build.Result, err error) {
			if err == nil {
				success("Generated %d artifact(s) in %s", len(result.Artifacts), result.Duration.Round(1000000))
			}
		},
		OnReload: func(clients int) {
			if clients > 0 {
				success("Reloaded %d browser(s)", clients)
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
		server.Stop()
	}()

	if cfg.Dev.OpenBrowser {
		go openURL(cfg.DevURL())
	}

	return server.Start(ctx)
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd

	switch {
	case commandExists("xdg-open"):
		cmd = exec.Command("xdg-open", url)
	case commandExists("open"):
		cmd = exec.Command("open", url)
	case commandExists("start"):
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}

	cmd.Start()
}

// commandExists checks if a command exists in PATH.
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
