// Package handlers provides HTTP handlers for what-if simulations and
// saved scenarios.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/domain"
	"github.com/foliotracker/engine/internal/modules/simulation"
)

// PortfolioLoader materializes a stored portfolio for simulation
type PortfolioLoader interface {
	Load(portfolioID string) (domain.Portfolio, error)
}

// Handler handles simulation HTTP requests
type Handler struct {
	engine    *simulation.Engine
	scenarios *simulation.ScenarioRepository
	loader    PortfolioLoader
	log       zerolog.Logger
}

// NewHandler creates a new simulation handler
func NewHandler(engine *simulation.Engine, scenarios *simulation.ScenarioRepository, loader PortfolioLoader, log zerolog.Logger) *Handler {
	return &Handler{
		engine:    engine,
		scenarios: scenarios,
		loader:    loader,
		log:       log.With().Str("handler", "simulation").Logger(),
	}
}

// HandleSimulate runs a what-if simulation. An empty change list is a
// caller error and never reaches the engine.
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Changes []domain.Change `json:"changes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Changes) == 0 {
		h.writeError(w, http.StatusBadRequest, simulation.ErrEmptyChanges.Error())
		return
	}

	portfolio, err := h.loader.Load(chi.URLParam(r, "portfolioID"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	result, err := h.engine.Simulate(portfolio, req.Changes)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleSaveScenario persists a named change list for later replay
func (h *Handler) HandleSaveScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Changes     []domain.Change `json:"changes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Changes) == 0 {
		h.writeError(w, http.StatusBadRequest, simulation.ErrEmptyChanges.Error())
		return
	}

	scenario, err := h.scenarios.Create(chi.URLParam(r, "portfolioID"), req.Name, req.Description, req.Changes)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, scenario)
}

// HandleListScenarios returns a portfolio's saved scenarios
func (h *Handler) HandleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.scenarios.GetByPortfolio(chi.URLParam(r, "portfolioID"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"scenarios": scenarios})
}

// HandleRunScenario replays a saved scenario against current holdings
func (h *Handler) HandleRunScenario(w http.ResponseWriter, r *http.Request) {
	scenario, err := h.scenarios.Get(chi.URLParam(r, "scenarioID"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	portfolio, err := h.loader.Load(scenario.PortfolioID)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	result, err := h.engine.Simulate(portfolio, scenario.Changes)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleDeleteScenario removes a saved scenario
func (h *Handler) HandleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := h.scenarios.Delete(chi.URLParam(r, "scenarioID")); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
