// Package handlers provides HTTP handlers for risk analysis.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/domain"
	"github.com/foliotracker/engine/internal/modules/risk"
)

// PortfolioLoader materializes a stored portfolio for analysis
type PortfolioLoader interface {
	Load(portfolioID string) (domain.Portfolio, error)
}

// Handler handles risk analysis HTTP requests
type Handler struct {
	service *risk.Service
	loader  PortfolioLoader
	log     zerolog.Logger
}

// NewHandler creates a new risk handler
func NewHandler(service *risk.Service, loader PortfolioLoader, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		loader:  loader,
		log:     log.With().Str("handler", "risk").Logger(),
	}
}

// HandleGetAnalysis returns the full risk report for a portfolio
func (h *Handler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.loader.Load(chi.URLParam(r, "portfolioID"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.Analyze(portfolio.Positions, portfolio.Snapshots))
}

// HandleGetMetrics returns the bare metric set without the report extras
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.loader.Load(chi.URLParam(r, "portfolioID"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.ComputeMetrics(portfolio.Positions, portfolio.Snapshots))
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
