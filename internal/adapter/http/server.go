package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
)

// AdvisoryService is the application surface the dashboard and API drive.
type AdvisoryService interface {
	sharedobs.ReadinessChecker
	Resolve(ctx context.Context, sel domain.Selection) (domain.Report, error)
	Report(sel domain.Selection) (domain.Report, error)
	States() []string
	Districts(state string) []string
	Commodities(state, district string) []string
	Dates(state, district, commodity string) []time.Time
	Status() domain.Status
}

// Server exposes the dashboard, the JSON API, and the health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        AdvisoryService
	logger     *slog.Logger
}

// NewServer creates an HTTP server for svc. CORS is enabled for the API when
// corsOrigins is non-empty.
func NewServer(addr string, svc AdvisoryService, corsOrigins []string, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	r.Get("/", s.handleDashboard)
	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if len(corsOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: corsOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
		}
		r.Get("/states", s.handleStates)
		r.Get("/districts", s.handleDistricts)
		r.Get("/commodities", s.handleCommodities)
		r.Get("/dates", s.handleDates)
		r.Get("/advisory", s.handleAdvisory)
		r.Get("/forecast.png", s.handleForecastChart)
		r.Get("/report.xlsx", s.handleWorkbook)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.svc.CheckReadiness(ctx); err != nil {
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, readyResponse{Status: "ready", Assets: newStatusDTO(s.svc.Status())})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
