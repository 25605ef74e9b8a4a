// Package handlers provides HTTP handlers for tax lot reporting.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/domain"
	"github.com/foliotracker/engine/internal/marketdata"
	"github.com/foliotracker/engine/internal/modules/ledger"
)

// Handler handles tax lot HTTP requests
type Handler struct {
	lots  *ledger.LotRepository
	clock marketdata.Clock
	log   zerolog.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(lots *ledger.LotRepository, clock marketdata.Clock, log zerolog.Logger) *Handler {
	return &Handler{
		lots:  lots,
		clock: clock,
		log:   log.With().Str("handler", "ledger").Logger(),
	}
}

// HandleGetAnalysis returns the FIFO tax analysis for one position. An
// optional ?price= query supplies the mark for unrealized gains.
func (h *Handler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")
	ticker := domain.NormalizeTicker(chi.URLParam(r, "ticker"))

	var currentPrice *float64
	if raw := r.URL.Query().Get("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price <= 0 {
			h.writeError(w, http.StatusBadRequest, "price must be a positive number")
			return
		}
		currentPrice = &price
	}

	lots, err := h.lots.GetByPosition(portfolioID, ticker)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, ledger.AnalyzeLots(ticker, lots, currentPrice, h.clock.Now()))
}

// HandleGetLots returns a position's raw lots in FIFO order
func (h *Handler) HandleGetLots(w http.ResponseWriter, r *http.Request) {
	lots, err := h.lots.GetByPosition(
		chi.URLParam(r, "portfolioID"),
		domain.NormalizeTicker(chi.URLParam(r, "ticker")))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"lots": lots})
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
