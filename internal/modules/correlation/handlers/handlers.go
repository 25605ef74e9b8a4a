// Package handlers provides HTTP handlers for correlation matrices.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/marketdata"
	"github.com/foliotracker/engine/internal/modules/correlation"
)

// Handler handles correlation HTTP requests
type Handler struct {
	service *correlation.Service
	log     zerolog.Logger
}

// NewHandler creates a new correlation handler
func NewHandler(service *correlation.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "correlation").Logger(),
	}
}

// HandleGetMatrix returns the correlation matrix for ?tickers=A,B,C with
// an optional ?lookback= in trading days.
func (h *Handler) HandleGetMatrix(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("tickers")
	if raw == "" {
		h.writeError(w, http.StatusBadRequest, "tickers query parameter is required")
		return
	}

	var tickers []string
	for _, t := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			tickers = append(tickers, trimmed)
		}
	}
	if len(tickers) == 0 {
		h.writeError(w, http.StatusBadRequest, "tickers query parameter is required")
		return
	}

	lookback := marketdata.DefaultLookbackDays
	if rawLookback := r.URL.Query().Get("lookback"); rawLookback != "" {
		parsed, err := strconv.Atoi(rawLookback)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "lookback must be a positive integer")
			return
		}
		lookback = parsed
	}

	matrix, err := h.service.Estimate(tickers, lookback)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, matrix)
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
