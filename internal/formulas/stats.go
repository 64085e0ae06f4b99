package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Covariance calculates the sample covariance between two datasets
func Covariance(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// CalculateReturns converts prices to percentage returns
// Returns[i] = (Price[i] - Price[i-1]) / Price[i-1]
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}

// Beta calculates the sensitivity of asset returns to benchmark returns:
// cov(asset, benchmark) / var(benchmark). Returns 0 when the benchmark
// has no variance or the series are too short to compare.
func Beta(assetReturns, benchmarkReturns []float64) float64 {
	if len(assetReturns) < 2 || len(assetReturns) != len(benchmarkReturns) {
		return 0
	}
	variance := Variance(benchmarkReturns)
	if variance == 0 {
		return 0
	}
	return Covariance(assetReturns, benchmarkReturns) / variance
}
