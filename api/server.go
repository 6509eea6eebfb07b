// Package api exposes the coin ledger over HTTP. Identity is resolved by
// the gateway in front of this service; handlers trust the forwarded user
// id and role headers and pass them into the core as explicit parameters.
package api

import (
	"net/http"
	"time"

	"closetcoins/config"
	"closetcoins/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the coin ledger HTTP API server
type Server struct {
	cfg        *config.Config
	earning    service.EarningService
	redemption service.RedemptionService
	history    service.HistoryService
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, earning service.EarningService, redemption service.RedemptionService, history service.HistoryService) *Server {
	return &Server{
		cfg:        cfg,
		earning:    earning,
		redemption: redemption,
		history:    history,
	}
}

// Handler returns the chi router with all routes mounted
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(requestLogger)

	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID", "X-User-Name", "X-User-Role"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireIdentity)

			r.Route("/coins", func(r chi.Router) {
				r.Post("/credit", s.handleCredit)
				r.Post("/redeem", s.handleRedeem)
				r.Get("/balance", s.handleBalance)
				r.Get("/ledger", s.handleLedger)
			})

			r.Get("/rewards", s.handleListRewards)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireIdentity)
			r.Use(requireAdmin)

			r.Post("/adjust", s.handleAdminAdjust)
			r.Get("/ledger", s.handleAdminLedger)
		})
	})

	return r
}
