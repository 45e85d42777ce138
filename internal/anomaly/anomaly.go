// Package anomaly provides the unsupervised outlier model behind a narrow
// contract: given a standardized numeric matrix, return a continuous score
// and a binary flag per row. The scoring stages never see the model
// internals, so the detector can be swapped without touching them.
package anomaly

// Detector scores a whole feature matrix in one fit. Scores are monotonic
// anomaly indicators where lower means more anomalous; flags mark the
// expected-outlier fraction.
type Detector interface {
	FitScore(matrix [][]float64) (scores []float64, flags []bool, err error)
}

// Quantile returns the p-quantile of xs using linear interpolation between
// order statistics. Returns 0 for empty input.
func Quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	if p <= 0 {
		return minFloat(xs)
	}
	if p >= 1 {
		return maxFloat(xs)
	}

	sorted := append([]float64(nil), xs...)
	sortFloats(sorted)

	h := float64(len(sorted)-1) * p
	lo := int(h)
	frac := h - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func minFloat(xs []float64) float64 {
	m := xs[0]
	for _, v := range xs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxFloat(xs []float64) float64 {
	m := xs[0]
	for _, v := range xs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
