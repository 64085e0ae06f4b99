package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateReturns(t *testing.T) {
	t.Run("computes percentage returns", func(t *testing.T) {
		prices := []float64{100, 110, 99}
		returns := CalculateReturns(prices)

		assert.Len(t, returns, 2)
		assert.InDelta(t, 0.10, returns[0], 1e-9)
		assert.InDelta(t, -0.10, returns[1], 1e-9)
	})

	t.Run("short series yields empty returns", func(t *testing.T) {
		assert.Empty(t, CalculateReturns([]float64{100}))
		assert.Empty(t, CalculateReturns(nil))
	})

	t.Run("zero price leaves zero return", func(t *testing.T) {
		returns := CalculateReturns([]float64{0, 10})
		assert.Equal(t, []float64{0}, returns)
	})
}

func TestVariance(t *testing.T) {
	// Sample variance of {2, 4, 6} is 4.
	assert.InDelta(t, 4.0, Variance([]float64{2, 4, 6}), 1e-9)
	assert.Zero(t, Variance([]float64{5}))
}

func TestCovariance(t *testing.T) {
	t.Run("perfectly correlated series", func(t *testing.T) {
		x := []float64{1, 2, 3, 4}
		y := []float64{2, 4, 6, 8}
		// cov(x, 2x) == 2 * var(x)
		assert.InDelta(t, 2*Variance(x), Covariance(x, y), 1e-9)
	})

	t.Run("mismatched lengths return zero", func(t *testing.T) {
		assert.Zero(t, Covariance([]float64{1, 2}, []float64{1, 2, 3}))
	})
}

func TestBeta(t *testing.T) {
	t.Run("asset moving with the benchmark has beta one", func(t *testing.T) {
		benchmark := []float64{0.01, -0.02, 0.03, 0.01}
		assert.InDelta(t, 1.0, Beta(benchmark, benchmark), 1e-9)
	})

	t.Run("asset at double the benchmark has beta two", func(t *testing.T) {
		benchmark := []float64{0.01, -0.02, 0.03, 0.01}
		asset := make([]float64, len(benchmark))
		for i, r := range benchmark {
			asset[i] = 2 * r
		}
		assert.InDelta(t, 2.0, Beta(asset, benchmark), 1e-9)
	})

	t.Run("flat benchmark yields beta zero", func(t *testing.T) {
		asset := []float64{0.01, 0.02, -0.01}
		benchmark := []float64{0.01, 0.01, 0.01}
		assert.Zero(t, Beta(asset, benchmark))
	})

	t.Run("too little overlap yields beta zero", func(t *testing.T) {
		assert.Zero(t, Beta([]float64{0.01}, []float64{0.02}))
	})
}
