package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all tax lot routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolios/{portfolioID}/lots/{ticker}", func(r chi.Router) {
		r.Get("/", h.HandleGetLots)
		r.Get("/analysis", h.HandleGetAnalysis)
	})
}
