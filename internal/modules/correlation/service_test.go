package correlation

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliotracker/engine/internal/marketdata"
)

func TestEstimate_SyntheticMatrixProperties(t *testing.T) {
	stats := marketdata.NewSyntheticStatistics(rand.New(rand.NewSource(7)), zerolog.Nop())
	svc := NewService(stats, nil, zerolog.Nop())

	matrix, err := svc.Estimate([]string{"aapl", "MSFT", "AMZN", "aapl"}, 252)
	require.NoError(t, err)
	assert.True(t, matrix.Synthetic)
	assert.Equal(t, []string{"AAPL", "MSFT", "AMZN", "AAPL"}, matrix.Tickers)

	n := len(matrix.Values)
	require.Equal(t, 4, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, 1.0, matrix.Values[i][i])
		for j := 0; j < n; j++ {
			assert.Equal(t, matrix.Values[i][j], matrix.Values[j][i])
			assert.True(t, matrix.Values[i][j] >= -1 && matrix.Values[i][j] <= 1)
		}
	}

	// Duplicate tickers correlate perfectly
	assert.Equal(t, 1.0, matrix.Values[0][3])
}

func TestAverageOffDiagonal(t *testing.T) {
	m := Matrix{Values: [][]float64{
		{1.0, 0.4, 0.2},
		{0.4, 1.0, 0.6},
		{0.2, 0.6, 1.0},
	}}
	assert.InDelta(t, (0.4+0.2+0.6)/3, AverageOffDiagonal(m), 1e-9)

	assert.Equal(t, 0.0, AverageOffDiagonal(Matrix{Values: [][]float64{{1.0}}}))
	assert.Equal(t, 0.0, AverageOffDiagonal(Matrix{}))
}

func TestCacheKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t,
		cacheKey([]string{"MSFT", "AAPL"}, 252),
		cacheKey([]string{"AAPL", "MSFT"}, 252))
	assert.NotEqual(t,
		cacheKey([]string{"AAPL", "MSFT"}, 252),
		cacheKey([]string{"AAPL", "MSFT"}, 90))
}
