// Package handlers provides HTTP handlers for portfolio management:
// CRUD, trades, snapshots and the KPI bundle.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/modules/ledger"
	"github.com/foliotracker/engine/internal/modules/portfolio"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service    *portfolio.Service
	portfolios *portfolio.Repository
	log        zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.Service, portfolios *portfolio.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service:    service,
		portfolios: portfolios,
		log:        log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleList returns all portfolios
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.portfolios.List()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

// HandleCreate creates a new portfolio
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	record, err := h.portfolios.Create(req.Name, req.Currency)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, record)
}

// HandleGet returns one portfolio with its positions and snapshots
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.service.Load(chi.URLParam(r, "portfolioID"))
	if err != nil {
		h.writePortfolioError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loaded)
}

// HandleDelete removes a portfolio and its dependent rows
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolios.Delete(chi.URLParam(r, "portfolioID")); err != nil {
		h.writePortfolioError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleKPIs returns the dashboard KPI bundle
func (h *Handler) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.service.Load(chi.URLParam(r, "portfolioID"))
	if err != nil {
		h.writePortfolioError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.KPIs(loaded))
}

// HandleBuy records a purchase
func (h *Handler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	var req portfolio.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	position, err := h.service.Buy(chi.URLParam(r, "portfolioID"), req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, position)
}

// HandleSell records a FIFO sale and returns the per-lot allocations
func (h *Handler) HandleSell(w http.ResponseWriter, r *http.Request) {
	var req portfolio.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	allocations, err := h.service.Sell(chi.URLParam(r, "portfolioID"), req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ledger.ErrInsufficientShares) {
			status = http.StatusConflict
		}
		h.writeError(w, status, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"allocations": allocations})
}

// HandleUpdatePrice accepts a posted market price for one position
func (h *Handler) HandleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ticker string  `json:"ticker"`
		Price  float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Ticker == "" {
		h.writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	if err := h.service.UpdatePrice(chi.URLParam(r, "portfolioID"), req.Ticker, req.Price); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRecordSnapshot captures today's valuation on demand
func (h *Handler) HandleRecordSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BenchmarkValue float64 `json:"benchmark_value"`
	}
	if r.Body != nil {
		// Body is optional; a bare POST records without a benchmark value
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	snapshot, err := h.service.RecordSnapshot(chi.URLParam(r, "portfolioID"), req.BenchmarkValue)
	if err != nil {
		h.writePortfolioError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) writePortfolioError(w http.ResponseWriter, err error) {
	if errors.Is(err, portfolio.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeError(w, http.StatusInternalServerError, err.Error())
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
