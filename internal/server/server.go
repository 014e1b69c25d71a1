// Package server exposes the kiosk's HTTP API: counts, history, the
// point ledger, redemptions, and the live camera feeds.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecosortai/ecosort/internal/app"
	"github.com/ecosortai/ecosort/internal/config"
	"github.com/ecosortai/ecosort/internal/redeem"
	"github.com/ecosortai/ecosort/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
	Flow      *redeem.Flow
	Bins      []config.BinLocation
}

// Server is the kiosk's HTTP front end.
type Server struct {
	config Config
	router chi.Router
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	if s.config.App != nil {
		terms := api.NewTermsHandler(s.config.App)
		r.Get("/api/terms", terms.State)
		r.Post("/api/terms/accept", terms.Accept)

		// Everything past this point requires accepted terms.
		r.Group(func(r chi.Router) {
			r.Use(api.RequireTerms(s.config.App))

			tracking := api.NewTrackingHandler(s.config.App)
			r.Get("/api/counts", tracking.Counts)
			r.Get("/api/history", tracking.History)
			r.Post("/api/capture/start", tracking.StartCapture)
			r.Post("/api/capture/stop", tracking.StopCapture)

			if s.config.Flow != nil {
				rewards := api.NewRewardsHandler(s.config.App, s.config.Flow)
				r.Get("/api/ledger", rewards.Ledger)
				r.Get("/api/catalog", rewards.Catalog)
				r.Post("/api/avatar", rewards.ChangeAvatar)
				r.Post("/api/redeem", rewards.RedeemVoucher)
			}

			r.Get("/api/bins", s.handleBins)
			r.Get("/api/stream", NewStreamHandler(s.config.App).ServeHTTP)
			r.Get("/api/live", NewLiveHandler(s.config.App).ServeHTTP)
		})
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		r.Handle("/*", fs)
	}

	s.router = r
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.App != nil {
		response["capturing"] = s.config.App.IsCapturing()
		if err := s.config.App.LastError(); err != nil {
			response["last_error"] = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleBins returns the static recycling-point locations for the map.
func (s *Server) handleBins(w http.ResponseWriter, r *http.Request) {
	bins := s.config.Bins
	if bins == nil {
		bins = []config.BinLocation{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"bins": bins})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
