// Package ui serves a lineage tree as an interactive web page.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/features/common"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/notifier"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/router"
	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"
)

// Defaults applied to a zero Config.
const (
	DefaultDebounce        = 200 * time.Millisecond
	DefaultShutdownTimeout = 5 * time.Second
)

// Server is the lineage web server.
type Server struct {
	source       *common.TreeSource
	views        *common.ViewRegistry
	sessionStore *sessions.CookieStore
	notifier     *notifier.Notifier
	logger       *slog.Logger

	port            int
	watch           bool
	debounce        time.Duration
	shutdownTimeout time.Duration
}

// Config holds configuration for the UI server.
type Config struct {
	Port            int
	Watch           bool
	Debounce        time.Duration
	ShutdownTimeout time.Duration
	SessionSecret   string
	// MaxViews bounds the per-session views kept in memory.
	MaxViews int
	Logger          *slog.Logger

	// InputPath is the file the tree was read from. Watching needs it.
	InputPath string
	// SourceName describes the input on the page.
	SourceName string
	Initial    *lineage.Result
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) (*Server, error) {
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret is required")
	}
	if cfg.Watch && cfg.InputPath == "" {
		return nil, errors.New("watching needs a lineage file")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400) // 1 day
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	notify := notifier.New()
	source := common.NewTreeSource(cfg.Initial, cfg.SourceName, cfg.InputPath, notify, cfg.Logger)
	views, err := common.NewViewRegistry(source, cfg.MaxViews)
	if err != nil {
		return nil, err
	}

	return &Server{
		source:          source,
		views:           views,
		sessionStore:    sessionStore,
		notifier:        notify,
		logger:          cfg.Logger,
		port:            cfg.Port,
		watch:           cfg.Watch,
		debounce:        cfg.Debounce,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// Handler builds the HTTP handler with all routes and middleware.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		requestLogger(s.logger),
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.source, s.views, s.sessionStore, s.notifier, s.logger); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchInput(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down UI server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Source returns the tree the server is showing.
func (s *Server) Source() *common.TreeSource {
	return s.source
}

// watchInput reloads the tree whenever the input file changes. The parent
// directory is watched rather than the file so that editors that replace
// the file on save keep triggering reloads.
func (s *Server) watchInput(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	target, err := filepath.Abs(s.source.Path())
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", s.source.Path(), err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch lineage file", "path", target, "error", err)
		// Serve without watching
		<-ctx.Done()
		return nil
	}
	s.logger.Debug("watching lineage file", "path", target)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isReloadEvent(event, target) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(s.debounce, func() {
				s.logger.Debug("lineage file changed, reloading", "file", event.Name)
				if err := s.source.Reload(); err != nil {
					s.logger.Warn("reload failed, keeping previous tree", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

func isReloadEvent(event fsnotify.Event, target string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == target
}

// requestLogger logs each request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
