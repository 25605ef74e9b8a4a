package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/foliotracker/engine/internal/domain"
)

// streamInterval is how often valuation updates are pushed
const streamInterval = 5 * time.Second

// PortfolioLoader materializes a stored portfolio for streaming
type PortfolioLoader interface {
	Load(portfolioID string) (domain.Portfolio, error)
}

// StreamHandler pushes live portfolio valuations over a websocket. One
// connection streams one portfolio, selected by the ?portfolio= query.
type StreamHandler struct {
	loader PortfolioLoader
	log    zerolog.Logger
}

// NewStreamHandler creates a websocket valuation stream
func NewStreamHandler(loader PortfolioLoader, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		loader: loader,
		log:    log.With().Str("handler", "stream").Logger(),
	}
}

type streamUpdate struct {
	PortfolioID string  `json:"portfolio_id"`
	TotalValue  float64 `json:"total_value"`
	Positions   int     `json:"positions"`
	Timestamp   string  `json:"timestamp"`
}

// ServeHTTP upgrades to a websocket and pushes updates until the client
// disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	portfolioID := r.URL.Query().Get("portfolio")
	if portfolioID == "" {
		http.Error(w, "portfolio query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS is enforced by the router middleware
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	h.log.Info().Str("portfolio_id", portfolioID).Msg("Valuation stream opened")

	ctx := r.Context()
	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	// Send the first update immediately, then on each tick
	for {
		if err := h.pushUpdate(ctx, conn, portfolioID); err != nil {
			h.log.Debug().Err(err).Str("portfolio_id", portfolioID).Msg("Valuation stream closed")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}

		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case <-ticker.C:
		}
	}
}

func (h *StreamHandler) pushUpdate(ctx context.Context, conn *websocket.Conn, portfolioID string) error {
	portfolio, err := h.loader.Load(portfolioID)
	if err != nil {
		return err
	}

	totalValue := 0.0
	active := 0
	for _, pos := range portfolio.Positions {
		if pos.Active() {
			totalValue += pos.MarketValue()
			active++
		}
	}

	payload, err := json.Marshal(streamUpdate{
		PortfolioID: portfolioID,
		TotalValue:  totalValue,
		Positions:   active,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, payload)
}
