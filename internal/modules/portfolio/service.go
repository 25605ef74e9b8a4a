package portfolio

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/domain"
	"github.com/foliotracker/engine/internal/marketdata"
	"github.com/foliotracker/engine/internal/modules/ledger"
	"github.com/foliotracker/engine/internal/modules/risk"
	"github.com/foliotracker/engine/pkg/formulas"
)

// quoteTTL is how long a posted price stays fresh in the quote cache
const quoteTTL = 15 * time.Minute

// Service orchestrates portfolio operations: trades flow through the tax
// lot ledger, valuations flow into snapshots, and the risk service turns
// both into the KPI bundle. Prices posted by the external feed sit in the
// quote cache and overlay stored positions while fresh.
type Service struct {
	portfolios  *Repository
	positions   *PositionRepository
	snapshots   *SnapshotRepository
	lots        *ledger.LotRepository
	riskService *risk.Service
	quotes      *marketdata.QuoteCache
	clock       marketdata.Clock
	log         zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(
	portfolios *Repository,
	positions *PositionRepository,
	snapshots *SnapshotRepository,
	lots *ledger.LotRepository,
	riskService *risk.Service,
	quotes *marketdata.QuoteCache,
	clock marketdata.Clock,
	log zerolog.Logger,
) *Service {
	return &Service{
		portfolios:  portfolios,
		positions:   positions,
		snapshots:   snapshots,
		lots:        lots,
		riskService: riskService,
		quotes:      quotes,
		clock:       clock,
		log:         log.With().Str("service", "portfolio").Logger(),
	}
}

// Load materializes a portfolio's full engine input: identity, positions
// and the snapshot history most recent first.
func (s *Service) Load(portfolioID string) (domain.Portfolio, error) {
	record, err := s.portfolios.Get(portfolioID)
	if err != nil {
		return domain.Portfolio{}, err
	}

	positions, err := s.positions.GetByPortfolio(portfolioID)
	if err != nil {
		return domain.Portfolio{}, err
	}

	// Fresh cached quotes take precedence over stored prices
	for i := range positions {
		if quote, ok := s.quotes.Get(positions[i].Ticker); ok {
			positions[i].CurrentPrice = &quote.Price
		}
	}

	snapshots, err := s.snapshots.GetRecent(portfolioID, marketdata.DefaultLookbackDays)
	if err != nil {
		return domain.Portfolio{}, err
	}

	return domain.Portfolio{
		ID:        record.ID,
		Name:      record.Name,
		Positions: positions,
		Snapshots: snapshots,
	}, nil
}

// Buy records a purchase: a new tax lot is appended and the position's
// quantity and weighted-average cost basis are updated.
func (s *Service) Buy(portfolioID string, req TradeRequest) (domain.Position, error) {
	if req.Quantity <= 0 {
		return domain.Position{}, fmt.Errorf("buy quantity must be positive, got %f", req.Quantity)
	}
	if req.Price <= 0 {
		return domain.Position{}, fmt.Errorf("buy price must be positive, got %f", req.Price)
	}

	ticker := domain.NormalizeTicker(req.Ticker)
	purchaseDate, err := s.tradeDate(req.Date)
	if err != nil {
		return domain.Position{}, err
	}

	if _, err := s.lots.Create(ledger.TaxLot{
		PortfolioID:  portfolioID,
		Ticker:       ticker,
		Quantity:     req.Quantity,
		CostBasis:    req.Price,
		PurchaseDate: purchaseDate,
	}); err != nil {
		return domain.Position{}, err
	}

	position, exists, err := s.positions.GetByTicker(portfolioID, ticker)
	if err != nil {
		return domain.Position{}, err
	}

	if exists {
		position.AvgCostBasis = ledger.WeightedAverageCost(
			position.Quantity, position.AvgCostBasis, req.Quantity, req.Price)
		position.Quantity += req.Quantity
	} else {
		position = domain.Position{
			PortfolioID:  portfolioID,
			Ticker:       ticker,
			Quantity:     req.Quantity,
			AvgCostBasis: req.Price,
			AssetClass:   domain.AssetStock,
		}
	}
	position.CurrentPrice = &req.Price

	if err := s.positions.Upsert(position); err != nil {
		return domain.Position{}, err
	}

	s.log.Info().
		Str("portfolio_id", portfolioID).
		Str("ticker", ticker).
		Float64("quantity", req.Quantity).
		Float64("price", req.Price).
		Msg("Buy recorded")

	return position, nil
}

// Sell records a sale through FIFO lot accounting. The sale is
// all-or-nothing: when the requested quantity exceeds the position, no
// lot or position row is touched.
func (s *Service) Sell(portfolioID string, req TradeRequest) ([]ledger.SaleAllocation, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("sell quantity must be positive, got %f", req.Quantity)
	}

	ticker := domain.NormalizeTicker(req.Ticker)
	position, exists, err := s.positions.GetByTicker(portfolioID, ticker)
	if err != nil {
		return nil, err
	}
	if !exists || position.Quantity < req.Quantity {
		return nil, fmt.Errorf("%w: selling %.4f %s", ledger.ErrInsufficientShares, req.Quantity, ticker)
	}

	lots, err := s.lots.GetByPosition(portfolioID, ticker)
	if err != nil {
		return nil, err
	}

	lotPtrs := make([]*ledger.TaxLot, len(lots))
	for i := range lots {
		lotPtrs[i] = &lots[i]
	}

	allocations, err := ledger.ApplySale(lotPtrs, req.Quantity, req.Price, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.lots.UpdateSoldQuantities(lotPtrs); err != nil {
		return nil, err
	}
	if err := s.positions.UpdateQuantity(portfolioID, ticker, position.Quantity-req.Quantity); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("portfolio_id", portfolioID).
		Str("ticker", ticker).
		Float64("quantity", req.Quantity).
		Int("lots_consumed", len(allocations)).
		Msg("Sale recorded")

	return allocations, nil
}

// UpdatePrice stores a price posted by the external feed: persisted on
// the position row and cached for the TTL window.
func (s *Service) UpdatePrice(portfolioID, ticker string, price float64) error {
	if price <= 0 {
		return fmt.Errorf("price must be positive, got %f", price)
	}

	normalized := domain.NormalizeTicker(ticker)
	if err := s.positions.UpdatePrice(portfolioID, normalized, price); err != nil {
		return err
	}

	s.quotes.Put(normalized, marketdata.Quote{
		Ticker:    normalized,
		Price:     price,
		FetchedAt: s.clock.Now(),
	}, quoteTTL)

	return nil
}

// LotReport produces the FIFO tax analysis for one position
func (s *Service) LotReport(portfolioID, ticker string) (ledger.Analysis, error) {
	normalized := domain.NormalizeTicker(ticker)
	lots, err := s.lots.GetByPosition(portfolioID, normalized)
	if err != nil {
		return ledger.Analysis{}, err
	}

	var currentPrice *float64
	if position, exists, err := s.positions.GetByTicker(portfolioID, normalized); err == nil && exists {
		currentPrice = position.CurrentPrice
	}

	return ledger.AnalyzeLots(normalized, lots, currentPrice, s.clock.Now()), nil
}

// KPIs computes the dashboard bundle for a loaded portfolio
func (s *Service) KPIs(portfolio domain.Portfolio) KPIBundle {
	metrics := s.riskService.ComputeMetrics(portfolio.Positions, portfolio.Snapshots)
	return BuildKPIs(portfolio.Positions, metrics)
}

// BuildKPIs assembles the KPI bundle from positions and computed metrics.
// Pure, so the bundle shape is testable without storage.
func BuildKPIs(positions []domain.Position, metrics domain.MetricSet) KPIBundle {
	var costTotal, cashValue float64
	for _, pos := range positions {
		if !pos.Active() {
			continue
		}
		costTotal += pos.Quantity * pos.AvgCostBasis
		if pos.AssetClass == domain.AssetCash {
			cashValue += pos.MarketValue()
		}
	}

	unrealized := metrics.TotalValue - costTotal
	unrealizedPct := 0.0
	if costTotal > 0 {
		unrealizedPct = unrealized / costTotal * 100
	}
	cashPct := 0.0
	if metrics.TotalValue > 0 {
		cashPct = cashValue / metrics.TotalValue * 100
	}

	return KPIBundle{
		TotalValue: metrics.TotalValue,
		UnrealizedPL: ValuePercent{
			Value:   formulas.Round(unrealized, 2),
			Percent: formulas.Round(unrealizedPct, 2),
		},
		SharpeRatio: RatedValue{
			Value:  metrics.SharpeRatio,
			Rating: risk.SharpeRating(metrics.SharpeRatio),
		},
		Beta: InterpretedValue{
			Value:          metrics.Beta,
			Interpretation: risk.BetaInterpretation(metrics.Beta),
		},
		MaxDrawdown: SingleValue{Value: metrics.MaxDrawdown},
		CashAvailable: ValuePercent{
			Value:   formulas.Round(cashValue, 2),
			Percent: formulas.Round(cashPct, 2),
		},
		Estimated: metrics.Estimated,
	}
}

// RecordSnapshot captures today's valuation as a snapshot row. Cumulative
// return is measured against the earliest stored snapshot; re-running on
// the same day overwrites that day's row.
func (s *Service) RecordSnapshot(portfolioID string, benchmarkValue float64) (domain.Snapshot, error) {
	positions, err := s.positions.GetByPortfolio(portfolioID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	totalValue := 0.0
	for _, pos := range positions {
		if pos.Active() {
			totalValue += pos.MarketValue()
		}
	}

	snapshot := domain.Snapshot{
		Date:           s.clock.Now().UTC().Format("2006-01-02"),
		TotalValue:     formulas.Round(totalValue, 2),
		BenchmarkValue: benchmarkValue,
	}

	if earliest, ok, err := s.snapshots.Earliest(portfolioID); err != nil {
		return domain.Snapshot{}, err
	} else if ok && earliest.TotalValue > 0 && earliest.Date != snapshot.Date {
		snapshot.CumulativeReturn = formulas.Round(
			(snapshot.TotalValue-earliest.TotalValue)/earliest.TotalValue*100, 2)
	}

	if err := s.snapshots.Upsert(portfolioID, snapshot); err != nil {
		return domain.Snapshot{}, err
	}

	s.log.Debug().
		Str("portfolio_id", portfolioID).
		Str("date", snapshot.Date).
		Float64("total_value", snapshot.TotalValue).
		Msg("Snapshot recorded")

	return snapshot, nil
}

// tradeDate parses an optional YYYY-MM-DD trade date, defaulting to today
func (s *Service) tradeDate(date string) (time.Time, error) {
	if date == "" {
		return s.clock.Now().UTC(), nil
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid trade date %q: %w", date, err)
	}
	return parsed, nil
}
