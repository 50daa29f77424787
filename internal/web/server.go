// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

// Package web serves the latest HTML snapshot, a health probe, and the
// Prometheus metrics endpoint. The snapshot is whatever the last
// fleet-wide report rendered; the web layer never fetches from Plex
// itself.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sincrack/dualplex/internal/config"
	"github.com/sincrack/dualplex/internal/logging"
)

// SnapshotStore holds the most recently rendered HTML document. The bot
// handlers write it, HTTP reads it; both sides may run concurrently.
type SnapshotStore struct {
	mu  sync.RWMutex
	doc []byte
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Update replaces the stored document.
func (s *SnapshotStore) Update(doc []byte) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

// Get returns the stored document, or nil when no report has run yet.
func (s *SnapshotStore) Get() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Server is the snapshot HTTP server, run as a service under the
// supervision tree.
type Server struct {
	cfg   config.WebConfig
	store *SnapshotStore
}

// NewServer creates the web server backed by store.
func NewServer(cfg config.WebConfig, store *SnapshotStore) *Server {
	return &Server{cfg: cfg, store: store}
}

// Routes builds the router. Split out so tests can drive the handlers
// without binding a port.
func (s *Server) Routes() http.Handler {
	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	reqs, window := s.cfg.RateLimitReqs, s.cfg.RateLimitWindow
	if reqs <= 0 {
		reqs = 60
	}
	if window <= 0 {
		window = time.Minute
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))
	r.Use(httprate.LimitByIP(reqs, window))

	r.Get("/", s.handleSnapshot)
	r.Get("/snapshot.html", s.handleSnapshot)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	doc := s.store.Get()
	if len(doc) == 0 {
		http.Error(w, "no snapshot yet; trigger a streams report from the bot", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(doc)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Serve implements suture.Service: it runs the HTTP server until ctx is
// done, then shuts it down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger := logging.WithComponent("web")
	logger.Info().Str("addr", addr).Msg("Snapshot server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Shutdown incomplete")
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server: %w", err)
	}
}

// String names the service in supervisor logs.
func (s *Server) String() string {
	return "web-server"
}
