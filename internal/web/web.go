package web

import (
	"context"
	"crypto/subtle"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"daygrid/internal/config"
	appLog "daygrid/internal/log"
	"daygrid/internal/pipeline"
)

// PreviewFile is the PNG served by /preview.png, relative to OutputDir.
const PreviewFile = "preview.png"

// Builder builds the layout of one day.
type Builder interface {
	Build(ctx context.Context, day time.Time) (*pipeline.Result, error)
}

// Server provides the HTTP API for built day layouts.
type Server struct {
	cfg     *config.Config
	builder Builder
	router  *chi.Mux

	// Built days keyed by YYYY-MM-DD, so repeated requests do not reload
	// and reparse every source.
	cacheMu  sync.RWMutex
	cache    map[string]cachedDay
	cacheTTL time.Duration

	now func() time.Time
}

type cachedDay struct {
	result    *pipeline.Result
	updatedAt time.Time
}

const defaultCacheTTL = 30 * time.Second

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, builder Builder) *Server {
	s := &Server{
		cfg:      cfg,
		builder:  builder,
		router:   chi.NewRouter(),
		cache:    make(map[string]cachedDay),
		cacheTTL: defaultCacheTTL,
		now:      time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Invalidate drops every cached day, e.g. after a scheduled refresh.
func (s *Server) Invalidate() {
	s.cacheMu.Lock()
	s.cache = make(map[string]cachedDay)
	s.cacheMu.Unlock()
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	if s.cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Second))
	}
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		r.Use(s.basicAuthMiddleware)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/api/layout", s.handleLayout)
	r.Post("/api/refresh", s.handleRefresh)
	r.Get("/day.svg", s.handleSVG)
	r.Get("/"+PreviewFile, s.handlePreview)
}

// requestLogger logs one line per request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured. Empty
// credentials leave it disabled.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="daygrid", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleLayout returns the measured layout and the visible occurrences.
//
// GET /api/layout?date=2025-03-10
//   - date: local day in the configured timezone (default today)
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	res, status, err := s.day(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSVG renders the same day as handleLayout as an SVG image.
func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	res, status, err := s.day(r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(res.SVG(s.cfg)))
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	s.Invalidate()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "invalidated"})
}

// handlePreview serves the last captured PNG from OutputDir.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.cfg.OutputDir, PreviewFile))
}

// day resolves the date query parameter and returns the cached or freshly
// built result, with the HTTP status to use on error.
func (s *Server) day(r *http.Request) (*pipeline.Result, int, error) {
	loc, err := s.cfg.Location()
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", s.cfg.Timezone)
		loc = time.Local
	}

	day, err := pipeline.ParseDay(r.URL.Query().Get("date"), loc, s.now())
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	key := day.Format(time.DateOnly)

	now := s.now()
	s.cacheMu.RLock()
	cd, ok := s.cache[key]
	s.cacheMu.RUnlock()
	if ok && now.Sub(cd.updatedAt) < s.cacheTTL {
		return cd.result, http.StatusOK, nil
	}

	res, err := s.builder.Build(r.Context(), day)
	if err != nil {
		appLog.Error("day build failed", err, "day", key)
		return nil, http.StatusInternalServerError, err
	}

	s.cacheMu.Lock()
	s.cache[key] = cachedDay{result: res, updatedAt: now}
	s.cacheMu.Unlock()

	return res, http.StatusOK, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// ListenAndServe serves s on cfg.Listen until ctx is canceled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, cfg *config.Config, s *Server) error {
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	appLog.Info("shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}
