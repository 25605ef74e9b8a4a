package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all simulation routes. Flat patterns: the
// portfolio module owns the /portfolios/{portfolioID} subtree, so nothing
// here may mount on it.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/portfolios/{portfolioID}/simulate", h.HandleSimulate)
	r.Get("/portfolios/{portfolioID}/scenarios", h.HandleListScenarios)
	r.Post("/portfolios/{portfolioID}/scenarios", h.HandleSaveScenario)
	r.Post("/scenarios/{scenarioID}/run", h.HandleRunScenario)
	r.Delete("/scenarios/{scenarioID}", h.HandleDeleteScenario)
}
