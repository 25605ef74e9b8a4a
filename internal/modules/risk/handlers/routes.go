package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolios/{portfolioID}/risk", func(r chi.Router) {
		r.Get("/", h.HandleGetAnalysis)
		r.Get("/metrics", h.HandleGetMetrics)
	})
}
