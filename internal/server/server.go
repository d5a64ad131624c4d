package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/stockdesk/dashboard/internal/events"
	"github.com/stockdesk/dashboard/internal/modules/aggregation"
	"github.com/stockdesk/dashboard/internal/modules/chartsession"
	"github.com/stockdesk/dashboard/internal/modules/history"
	"github.com/stockdesk/dashboard/internal/modules/stats"
	"github.com/stockdesk/dashboard/internal/modules/trading"
)

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	DevMode bool

	Aggregation *aggregation.Service
	Charts      *chartsession.Manager
	Trading     *trading.Coordinator
	History     *history.Store
	Stats       *stats.Service
	Events      *events.Manager
}

// Server exposes the orchestration pipeline to the browser UI.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	aggregation *aggregation.Service
	charts      *chartsession.Manager
	trading     *trading.Coordinator
	history     *history.Store
	stats       *stats.Service
	events      *events.Manager
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		aggregation: cfg.Aggregation,
		charts:      cfg.Charts,
		trading:     cfg.Trading,
		history:     cfg.History,
		stats:       cfg.Stats,
		events:      cfg.Events,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes wires HTTP routes to the pipeline components
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/ws", s.handleWebSocket)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/history", s.handleHistory)
			r.Post("/history/refresh", s.handleHistoryRefresh)
			r.Get("/portfolio", s.handlePortfolio)
			r.Post("/portfolio/refresh", s.handlePortfolioRefresh)
			r.Get("/periods/{period}", s.handlePeriod)
			r.Get("/chart", s.handleChartGet)
			r.Post("/chart", s.handleChartSet)
			r.Post("/chart/refresh", s.handleChartRefresh)
			r.Post("/trade", s.handleTrade)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/aggregate", s.handleAggStats)
			r.Post("/asset", s.handleAssetDetail)
		})
	})
}

// loggingMiddleware logs requests with zerolog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and releases the live chart session.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.charts != nil {
		s.charts.Close()
	}
	return s.server.Shutdown(ctx)
}
