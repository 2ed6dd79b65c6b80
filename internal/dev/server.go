package dev

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/urlgen-dev/urlgen/internal/build"
	"github.com/urlgen-dev/urlgen/internal/config"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Verbose enables verbose logging.
	Verbose bool

	// OnBuildStart is called when a regeneration starts.
	OnBuildStart func()

	// OnBuildComplete is called when a regeneration completes.
	OnBuildComplete func(result *build.Result, err error)

	// OnReload is called when browsers are reloaded.
	OnReload func(clients int)
}

// Server is the development server. It watches the route manifest and the
// project config, regenerates artifacts on change, serves them over HTTP,
// and reloads connected browsers.
type Server struct {
	config       *config.Config
	options      ServerOptions
	watcher      *Watcher
	reloadServer *ReloadServer
	metrics      *metrics
	registry     *prometheus.Registry
	httpServer   *http.Server
	changeCh     chan Change
	mu           sync.Mutex
	running      bool
	lastErr      string
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config

	watcher := NewWatcher(WatcherConfig{
		Paths:    cfg.WatchPaths(),
		Debounce: 100 * time.Millisecond,
	})

	// A dedicated registry keeps repeated server construction from
	// colliding on the default registerer.
	registry := prometheus.NewRegistry()

	return &Server{
		config:       cfg,
		options:      options,
		watcher:      watcher,
		reloadServer: NewReloadServer(),
		metrics:      newMetrics(MetricsConfig{Registry: registry}),
		registry:     registry,
	}
}

// Start runs the development server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	// Initial generation
	s.rebuild(ctx, "startup")

	// Set up watcher callback
	s.changeCh = make(chan Change, 64)
	s.watcher.OnChange(func(change Change) {
		select {
		case s.changeCh <- change:
		default:
		}
	})

	go s.watcher.Start(ctx)
	go s.processChanges(ctx)

	s.httpServer = &http.Server{
		Addr:    s.config.DevAddress(),
		Handler: s.Handler(),
	}

	s.log("Serving artifacts at %s", s.config.DevURL())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop stops the development server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	s.watcher.Stop()
	s.reloadServer.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// Handler returns the HTTP handler serving the dev endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(traceRequests)
	r.Use(s.metrics.instrument)

	r.Get(ReloadEndpoint, s.reloadServer.HandleWebSocket)
	r.Get("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/", s.handleIndex)
	r.Get("/*", s.handleArtifact)

	return r
}

// processChanges serializes file change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-s.changeCh:
			changes := []Change{change}
			draining := true
			for draining {
				select {
				case next := <-s.changeCh:
					changes = append(changes, next)
				default:
					draining = false
				}
			}
			s.handleChanges(ctx, changes)
		}
	}
}

// handleChanges regenerates artifacts after a batch of file changes. A
// config change reloads the config first so placeholder and artifact edits
// take effect without a restart.
func (s *Server) handleChanges(ctx context.Context, changes []Change) {
	if len(changes) == 0 {
		return
	}

	for _, change := range changes {
		s.log("Changed: %s", change.Path)
		if isSamePath(change.Path, s.config.Path()) {
			s.reloadConfig()
		}
	}

	s.rebuild(ctx, changes[0].Path)
}

// reloadConfig re-reads the project config in place.
func (s *Server) reloadConfig() {
	cfg, err := config.LoadFile(s.config.Path())
	if err != nil {
		s.logError("Config reload failed: %v", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		s.logError("Config invalid: %v", err)
		return
	}
	// Preserve the dev block so the server keeps its address.
	cfg.Dev = s.config.Dev
	*s.config = *cfg
	s.log("Config reloaded")
}

// rebuild runs one generation pass and notifies connected browsers.
func (s *Server) rebuild(ctx context.Context, trigger string) {
	if s.options.OnBuildStart != nil {
		s.options.OnBuildStart()
	}

	var result *build.Result
	start := time.Now()
	err := traceRebuild(ctx, trigger, func(spanCtx context.Context) error {
		var buildErr error
		builder := build.New(s.config, build.Options{Verbose: s.options.Verbose, SkipUpload: true})
		result, buildErr = builder.Build(spanCtx)
		return buildErr
	})
	s.metrics.recordRebuild(time.Since(start), err)

	if s.options.OnBuildComplete != nil {
		s.options.OnBuildComplete(result, err)
	}

	if err != nil {
		s.logError("Generation failed: %v", err)
		s.mu.Lock()
		s.lastErr = err.Error()
		s.mu.Unlock()
		s.reloadServer.NotifyError(err.Error())
		return
	}

	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()

	for _, a := range result.Artifacts {
		s.metrics.artifactRoutes.WithLabelValues(a.Output).Set(float64(a.Routes))
	}
	s.log("Generated %d artifact(s) in %s", len(result.Artifacts), result.Duration.Round(time.Millisecond))

	s.reloadServer.ClearError()
	s.reloadServer.NotifyReload(trigger)
	s.metrics.reloadsSent.Inc()
	s.metrics.reloadClients.Set(float64(s.reloadServer.ClientCount()))
	if s.options.OnReload != nil {
		s.options.OnReload(s.reloadServer.ClientCount())
	}
}

// handleIndex serves a small page listing the generated artifacts.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	lastErr := s.lastErr
	s.mu.Unlock()

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head><title>urlgen dev</title></head>\n")
	b.WriteString("<body style=\"font-family: system-ui; padding: 40px;\">\n")
	b.WriteString("<h1>urlgen dev server</h1>\n")
	if lastErr != "" {
		b.WriteString("<pre style=\"color: #c00;\">")
		b.WriteString(html.EscapeString(lastErr))
		b.WriteString("</pre>\n")
	}
	b.WriteString("<ul>\n")
	for _, a := range s.config.Artifacts {
		p := "/" + filepath.ToSlash(a.Output)
		fmt.Fprintf(&b, "<li><a href=%q>%s</a></li>\n", p, html.EscapeString(a.Output))
	}
	b.WriteString("</ul>\n")
	b.WriteString(ReloadClientScript)
	b.WriteString("</body>\n</html>\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(b.String()))
}

// handleArtifact serves generated files from their configured output paths.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	requested := strings.TrimPrefix(r.URL.Path, "/")
	for _, a := range s.config.Artifacts {
		if filepath.ToSlash(a.Output) != requested {
			continue
		}
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		http.ServeFile(w, r, s.config.ArtifactPath(a))
		return
	}
	http.NotFound(w, r)
}

// log logs a timestamped message.
func (s *Server) log(format string, args ...any) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Printf("[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
}

// logError logs an error message.
func (s *Server) logError(format string, args ...any) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(os.Stderr, "[%s] %s%s%s\n", timestamp, "\033[31m", fmt.Sprintf(format, args...), "\033[0m")
}

func isSamePath(a, b string) bool {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false
	}
	return filepath.Clean(absA) == filepath.Clean(absB)
}
