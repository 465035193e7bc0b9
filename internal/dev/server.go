package dev

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/navroute/internal/config"
	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/manifest"
	"github.com/vango-dev/navroute/pkg/metrics"
	"github.com/vango-dev/navroute/pkg/navigation"
	"github.com/vango-dev/navroute/pkg/publish"
	"github.com/vango-dev/navroute/pkg/router"
	"github.com/vango-dev/navroute/pkg/tracing"
)

// ManifestPath serves the loaded manifest as JSON.
const ManifestPath = "/_navroute/manifest"

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives server logs. Default: slog.Default().
	Logger *slog.Logger

	// Verbose passes the routers' info logs through. Otherwise only their
	// warnings and errors are logged.
	Verbose bool

	// Registry collects router metrics and backs the metrics endpoint.
	// Default: a new registry with Go and process collectors.
	Registry *prometheus.Registry

	// Bus receives events published on the events endpoint.
	// Default: a new bus.
	Bus *publish.Bus

	// Loader reads the manifest. Default: a loader with an S3 client when
	// the manifest is an s3:// URL.
	Loader *manifest.Loader

	// Observers are notified alongside the metrics and tracing observers.
	Observers []router.Observer
}

// Server serves static pages with client-side route fallback, the publish
// endpoint, metrics and live reload.
type Server struct {
	config    *config.Config
	log       *slog.Logger
	routeLog  *slog.Logger
	registry  *prometheus.Registry
	bus       *publish.Bus
	loader    *manifest.Loader
	observers []router.Observer
	reload    *ReloadServer
	watcher   *Watcher

	mu         sync.RWMutex
	manifest   *manifest.Manifest
	httpServer *http.Server
}

// NewServer creates a development server.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config

	log := options.Logger
	if log == nil {
		log = slog.Default()
	}
	routeLog := log
	if !options.Verbose {
		routeLog = slog.New(minLevel{Handler: log.Handler(), min: slog.LevelWarn})
	}

	registry := options.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	bus := options.Bus
	if bus == nil {
		bus = publish.NewBus()
	}

	loader := options.Loader
	if loader == nil {
		loader = &manifest.Loader{}
		if strings.HasPrefix(cfg.Manifest, "s3://") {
			loader.S3 = manifest.NewS3Client(manifest.S3Config{
				Region:       cfg.S3.Region,
				Endpoint:     cfg.S3.Endpoint,
				UsePathStyle: cfg.S3.UsePathStyle,
			})
		}
	}

	observers := append([]router.Observer{
		metrics.New(metrics.WithRegistry(registry), metrics.WithSubsystem("preroute")),
		tracing.New(),
	}, options.Observers...)

	s := &Server{
		config:    cfg,
		log:       log,
		routeLog:  routeLog,
		registry:  registry,
		bus:       bus,
		loader:    loader,
		observers: observers,
	}

	if cfg.Serve.Reload {
		s.reload = NewReloadServer(log)

		paths := []string{cfg.RootPath()}
		source := cfg.ManifestSource()
		if strings.HasPrefix(source, "s3://") {
			source = ""
		} else if source != "" {
			paths = append(paths, source)
		}
		s.watcher = NewWatcher(WatcherConfig{
			Paths:    paths,
			Manifest: source,
			Logger:   log,
		})
		s.watcher.OnChange(s.handleChange)
	}

	return s
}

// Bus returns the bus behind the events endpoint.
func (s *Server) Bus() *publish.Bus { return s.bus }

// Registry returns the metrics registry.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

// Manifest returns the last manifest loaded successfully, or nil.
func (s *Server) Manifest() *manifest.Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest
}

// LoadManifest reads the configured manifest. On failure the previous
// manifest stays in use.
func (s *Server) LoadManifest(ctx context.Context) error {
	source := s.config.ManifestSource()
	m, err := s.loader.Load(ctx, source)
	if err != nil {
		s.log.Error("loading manifest failed", slog.String("source", source), slog.Any("error", err))
		return err
	}

	s.mu.Lock()
	s.manifest = m
	s.mu.Unlock()
	s.reportRoutes(m)

	s.log.Info("manifest loaded",
		slog.String("source", source),
		slog.String("mode", m.Mode),
		slog.Int("routes", len(m.Routes)))
	return nil
}

// reportRoutes tells the observers about the routes of a newly loaded
// manifest.
func (s *Server) reportRoutes(m *manifest.Manifest) {
	for _, r := range m.Routes {
		route, err := router.NewRoute(r.Path, router.Event(r.Event))
		if err != nil {
			continue
		}
		for _, obs := range s.observers {
			obs.RouteDefined(route)
		}
	}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	if s.config.Metrics.Enabled {
		r.Handle(s.config.Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
			Registry: s.registry,
		}))
	}
	if s.config.Events.Enabled {
		r.Handle(s.config.Events.Path, publish.NewHandler(s.bus.Publish, publish.HandlerConfig{
			CheckOrigin: s.checkOrigin,
			Logger:      s.log,
		}))
	}
	if s.reload != nil {
		r.Handle(ReloadPath, s.reload)
	}
	r.Get(ManifestPath, s.serveManifest)
	r.Get("/*", s.serveFiles)

	return r
}

// Start loads the manifest and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if err := s.LoadManifest(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	if s.watcher != nil {
		go s.watcher.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("serving",
		slog.String("url", s.config.URL()),
		slog.String("root", s.config.RootPath()))

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	}
}

// Stop stops the watcher, disconnects reload clients and shuts the HTTP
// server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.reload != nil {
		s.reload.Close()
	}

	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleChange(c Change) {
	s.log.Info("file changed", slog.String("path", c.Path), slog.String("type", c.Type.String()))

	if c.Type == ChangeManifest {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.LoadManifest(ctx); err != nil {
			s.reload.NotifyError(errorText(err))
			return
		}
		s.reload.ClearError()
	}

	clients := s.reload.NotifyReload(c.Path)
	s.log.Debug("reload sent", slog.Int("clients", clients))
}

func errorText(err error) string {
	return errors.FromError(err, "R010").FormatCompact()
}

// serveFiles serves files under the root. HTML pages are pre-routed, and
// paths without a file extension fall back to the index page so
// client-side routes survive a reload.
func (s *Server) serveFiles(w http.ResponseWriter, r *http.Request) {
	root := s.config.RootPath()
	urlPath := path.Clean("/" + r.URL.Path)
	name := filepath.Join(root, filepath.FromSlash(urlPath))

	info, err := os.Stat(name)
	switch {
	case err == nil && info.IsDir():
		index := filepath.Join(name, s.config.Serve.Index)
		if _, err := os.Stat(index); err == nil {
			s.servePage(w, r, index, false)
			return
		}
	case err == nil:
		if classifyChange(name) == ChangePage {
			s.servePage(w, r, name, false)
			return
		}
		f, err := os.Open(name)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		defer f.Close()
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
		return
	case path.Ext(urlPath) != "":
		http.NotFound(w, r)
		return
	}

	if m := s.Manifest(); m != nil && urlPath != "/" {
		if mode, _ := m.NavigationMode(); mode == navigation.ModeHash {
			http.Redirect(w, r, "/#"+urlPath, http.StatusFound)
			return
		}
	}
	s.servePage(w, r, filepath.Join(root, s.config.Serve.Index), true)
}

// servePage renders an HTML page. A fallback page whose URL matches no
// route is sent with 404.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request, file string, fallback bool) {
	data, err := os.ReadFile(file)
	if err != nil {
		s.log.Error("reading page failed", slog.String("file", file), slog.Any("error", err))
		http.NotFound(w, r)
		return
	}

	page, err := s.Render(data, requestURL(r))
	if err != nil {
		s.log.Error("rendering page failed", slog.String("file", file), slog.Any("error", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if fallback && page.Routed && page.Match == nil {
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(page.HTML)
}

func (s *Server) serveManifest(w http.ResponseWriter, r *http.Request) {
	m := s.Manifest()
	if m == nil {
		http.Error(w, "no manifest loaded", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

// checkOrigin accepts same-origin requests, requests without an Origin
// header and the configured origins. "*" allows any origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.config.Events.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// minLevel drops records below min.
type minLevel struct {
	slog.Handler
	min slog.Level
}

func (h minLevel) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min && h.Handler.Enabled(ctx, level)
}

func (h minLevel) WithAttrs(attrs []slog.Attr) slog.Handler {
	return minLevel{Handler: h.Handler.WithAttrs(attrs), min: h.min}
}

func (h minLevel) WithGroup(name string) slog.Handler {
	return minLevel{Handler: h.Handler.WithGroup(name), min: h.min}
}
