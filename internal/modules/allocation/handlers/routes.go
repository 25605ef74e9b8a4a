package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all allocation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolios/{portfolioID}/allocation", h.HandleGetBreakdown)
}
