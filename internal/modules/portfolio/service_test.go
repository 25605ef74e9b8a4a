package portfolio

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliotracker/engine/internal/database"
	"github.com/foliotracker/engine/internal/domain"
	"github.com/foliotracker/engine/internal/marketdata"
	"github.com/foliotracker/engine/internal/modules/allocation"
	"github.com/foliotracker/engine/internal/modules/ledger"
	"github.com/foliotracker/engine/internal/modules/risk"
)

type stubStats struct{}

func (stubStats) Beta(_ []float64, _ string, _ int) (float64, error)  { return 1.0, nil }
func (stubStats) Correlations(_ []string, _ int) ([][]float64, error) { return nil, nil }
func (stubStats) Synthetic() bool                                     { return true }

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	log := zerolog.Nop()
	clock := fixedClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	portfolios := NewRepository(db.Conn(), log)
	svc := NewService(
		portfolios,
		NewPositionRepository(db.Conn(), log),
		NewSnapshotRepository(db.Conn(), log),
		ledger.NewLotRepository(db.Conn(), log),
		risk.NewService(stubStats{}, allocation.NewService(log), "SPY", log),
		marketdata.NewQuoteCache(clock),
		clock,
		log,
	)

	record, err := portfolios.Create("Test Portfolio", "USD")
	require.NoError(t, err)
	return svc, record.ID
}

func TestBuy_NewPositionCreatesLotAndPosition(t *testing.T) {
	svc, portfolioID := newTestService(t)

	position, err := svc.Buy(portfolioID, TradeRequest{Ticker: "aapl", Quantity: 10, Price: 80})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", position.Ticker)
	assert.Equal(t, 10.0, position.Quantity)
	assert.Equal(t, 80.0, position.AvgCostBasis)

	report, err := svc.LotReport(portfolioID, "AAPL")
	require.NoError(t, err)
	require.Len(t, report.Lots, 1)
	assert.Equal(t, 10.0, report.TotalQuantity)
}

func TestBuy_ExistingPositionRecomputesAverageCost(t *testing.T) {
	svc, portfolioID := newTestService(t)

	_, err := svc.Buy(portfolioID, TradeRequest{Ticker: "AAPL", Quantity: 10, Price: 80})
	require.NoError(t, err)

	position, err := svc.Buy(portfolioID, TradeRequest{Ticker: "AAPL", Quantity: 10, Price: 100})
	require.NoError(t, err)

	assert.Equal(t, 20.0, position.Quantity)
	// (10*80 + 10*100) / 20
	assert.InDelta(t, 90.0, position.AvgCostBasis, 1e-9)
}

func TestBuy_RejectsNonPositiveInputs(t *testing.T) {
	svc, portfolioID := newTestService(t)

	_, err := svc.Buy(portfolioID, TradeRequest{Ticker: "AAPL", Quantity: 0, Price: 80})
	assert.Error(t, err)
	_, err = svc.Buy(portfolioID, TradeRequest{Ticker: "AAPL", Quantity: 5, Price: -1})
	assert.Error(t, err)
}

func TestSell_ConsumesLotsFIFO(t *testing.T) {
	svc, portfolioID := newTestService(t)

	_, err := svc.Buy(portfolioID, TradeRequest{Ticker: "AAPL", Quantity: 10, Price: 80, Date: "2020-03-01"})
	require.NoError(t, err)
	_, err = svc.Buy(portfolioID, TradeRequest{Ticker: "AAPL", Quantity: 5, Price: 120, Date: "2021-07-01"})
	require.NoError(t, err)

	allocations, err := svc.Sell(portfolioID, TradeRequest{Ticker: "AAPL", Quantity: 12, Price: 150})
	require.NoError(t, err)

	require.Len(t, allocations, 2)
	assert.Equal(t, 10.0, allocations[0].Quantity)
	assert.Equal(t, 80.0, allocations[0].CostBasis)
	assert.True(t, allocations[0].LongTerm)
	assert.Equal(t, 2.0, allocations[1].Quantity)
	assert.Equal(t, 120.0, allocations[1].CostBasis)

	// Position and remaining lots reflect the sale
	position, exists, err := svc.positions.GetByTicker(portfolioID, "AAPL")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, 3.0, position.Quantity)

	report, err := svc.LotReport(portfolioID, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 3.0, report.TotalQuantity)
}

func TestSell_InsufficientSharesLeavesStateUntouched(t *testing.T) {
	svc, portfolioID := newTestService(t)

	_, err := svc.Buy(portfolioID, TradeRequest{Ticker: "AAPL", Quantity: 10, Price: 80})
	require.NoError(t, err)

	_, err = svc.Sell(portfolioID, TradeRequest{Ticker: "AAPL", Quantity: 15, Price: 100})
	require.ErrorIs(t, err, ledger.ErrInsufficientShares)

	position, _, err := svc.positions.GetByTicker(portfolioID, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 10.0, position.Quantity)

	report, err := svc.LotReport(portfolioID, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 10.0, report.TotalQuantity)
}

func TestRecordSnapshot_DeduplicatesPerDay(t *testing.T) {
	svc, portfolioID := newTestService(t)

	_, err := svc.Buy(portfolioID, TradeRequest{Ticker: "AAPL", Quantity: 10, Price: 100})
	require.NoError(t, err)

	first, err := svc.RecordSnapshot(portfolioID, 5000)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", first.Date)
	assert.InDelta(t, 1000.0, first.TotalValue, 1e-9)

	// Same day again: one row, updated in place
	_, err = svc.RecordSnapshot(portfolioID, 5100)
	require.NoError(t, err)

	snapshots, err := svc.snapshots.GetRecent(portfolioID, 0)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, 5100.0, snapshots[0].BenchmarkValue)
}

func TestLoad_ReturnsSnapshotsMostRecentFirst(t *testing.T) {
	svc, portfolioID := newTestService(t)

	for _, snap := range []domain.Snapshot{
		{Date: "2024-06-10", TotalValue: 900},
		{Date: "2024-06-12", TotalValue: 950},
		{Date: "2024-06-11", TotalValue: 920},
	} {
		require.NoError(t, svc.snapshots.Upsert(portfolioID, snap))
	}

	portfolio, err := svc.Load(portfolioID)
	require.NoError(t, err)
	require.Len(t, portfolio.Snapshots, 3)
	assert.Equal(t, "2024-06-12", portfolio.Snapshots[0].Date)
	assert.Equal(t, "2024-06-10", portfolio.Snapshots[2].Date)
}

func TestUpdatePrice_OverlaysLoadedPositions(t *testing.T) {
	svc, portfolioID := newTestService(t)

	_, err := svc.Buy(portfolioID, TradeRequest{Ticker: "AAPL", Quantity: 10, Price: 80})
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePrice(portfolioID, "aapl", 95))

	loaded, err := svc.Load(portfolioID)
	require.NoError(t, err)
	require.Len(t, loaded.Positions, 1)
	require.NotNil(t, loaded.Positions[0].CurrentPrice)
	assert.Equal(t, 95.0, *loaded.Positions[0].CurrentPrice)

	assert.Error(t, svc.UpdatePrice(portfolioID, "AAPL", -1))
}

func TestBuildKPIs(t *testing.T) {
	price := 120.0
	positions := []domain.Position{
		{Ticker: "AAPL", Quantity: 10, AvgCostBasis: 100, CurrentPrice: &price, AssetClass: domain.AssetStock},
		{Ticker: "USD", Quantity: 300, AvgCostBasis: 1, AssetClass: domain.AssetCash},
	}
	metrics := domain.MetricSet{
		TotalValue:  1500,
		SharpeRatio: 1.6,
		Beta:        1.3,
		MaxDrawdown: 0.12,
	}

	kpis := BuildKPIs(positions, metrics)

	// Cost total 1300, market 1500
	assert.InDelta(t, 200.0, kpis.UnrealizedPL.Value, 1e-9)
	assert.InDelta(t, 200.0/1300*100, kpis.UnrealizedPL.Percent, 0.01)
	assert.Equal(t, "Very Good", kpis.SharpeRatio.Rating)
	assert.Equal(t, "High Volatility", kpis.Beta.Interpretation)
	assert.Equal(t, 0.12, kpis.MaxDrawdown.Value)
	assert.InDelta(t, 300.0, kpis.CashAvailable.Value, 1e-9)
	assert.InDelta(t, 20.0, kpis.CashAvailable.Percent, 1e-9)
}

func TestBuildKPIs_EmptyPortfolio(t *testing.T) {
	kpis := BuildKPIs(nil, domain.MetricSet{})
	assert.Equal(t, 0.0, kpis.UnrealizedPL.Percent)
	assert.Equal(t, 0.0, kpis.CashAvailable.Percent)
}
