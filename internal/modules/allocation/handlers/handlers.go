// Package handlers provides HTTP handlers for allocation analysis.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/domain"
	"github.com/foliotracker/engine/internal/modules/allocation"
)

// PortfolioLoader materializes a stored portfolio for analysis
type PortfolioLoader interface {
	Load(portfolioID string) (domain.Portfolio, error)
}

// Handler handles allocation HTTP requests
type Handler struct {
	service *allocation.Service
	loader  PortfolioLoader
	log     zerolog.Logger
}

// NewHandler creates a new allocation handler
func NewHandler(service *allocation.Service, loader PortfolioLoader, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		loader:  loader,
		log:     log.With().Str("handler", "allocation").Logger(),
	}
}

// HandleGetBreakdown returns sector and asset-class groupings with
// concentration alerts.
func (h *Handler) HandleGetBreakdown(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.loader.Load(chi.URLParam(r, "portfolioID"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.Analyze(portfolio.Positions))
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
