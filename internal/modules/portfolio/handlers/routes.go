package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolios", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)

		r.Route("/{portfolioID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Delete("/", h.HandleDelete)
			r.Get("/kpis", h.HandleKPIs)
			r.Post("/buy", h.HandleBuy)
			r.Post("/sell", h.HandleSell)
			r.Post("/prices", h.HandleUpdatePrice)
			r.Post("/snapshots", h.HandleRecordSnapshot)
		})
	})
}
