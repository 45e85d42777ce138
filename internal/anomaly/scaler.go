package anomaly

import (
	"math"
	"sort"
)

func sortFloats(xs []float64) { sort.Float64s(xs) }

// Standardize transforms each column of the matrix to zero mean and unit
// variance across the full dataset (one fit, applied to the same data).
// Non-finite inputs are replaced by 0 before scaling; a zero-variance
// column standardizes to all zeros.
func Standardize(matrix [][]float64) [][]float64 {
	n := len(matrix)
	if n == 0 {
		return nil
	}
	cols := len(matrix[0])

	cleaned := make([][]float64, n)
	for i, row := range matrix {
		cleaned[i] = make([]float64, cols)
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			cleaned[i][j] = v
		}
	}

	for j := 0; j < cols; j++ {
		mean := 0.0
		for i := 0; i < n; i++ {
			mean += cleaned[i][j]
		}
		mean /= float64(n)

		variance := 0.0
		for i := 0; i < n; i++ {
			d := cleaned[i][j] - mean
			variance += d * d
		}
		variance /= float64(n)
		std := math.Sqrt(variance)

		for i := 0; i < n; i++ {
			if std == 0 {
				cleaned[i][j] = 0
				continue
			}
			cleaned[i][j] = (cleaned[i][j] - mean) / std
		}
	}

	return cleaned
}
