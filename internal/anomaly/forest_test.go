package anomaly

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clusterWithOutliers builds a tight cluster plus a few far-away points.
func clusterWithOutliers(n, outliers int) [][]float64 {
	rng := rand.New(rand.NewSource(7))
	matrix := make([][]float64, 0, n+outliers)
	for i := 0; i < n; i++ {
		matrix = append(matrix, []float64{
			rng.NormFloat64() * 0.1,
			rng.NormFloat64() * 0.1,
			rng.NormFloat64() * 0.1,
			rng.NormFloat64() * 0.1,
		})
	}
	for i := 0; i < outliers; i++ {
		matrix = append(matrix, []float64{10, -10, 10, -10})
	}
	return matrix
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name     string
		xs       []float64
		p        float64
		expected float64
	}{
		{
			name:     "empty input",
			xs:       []float64{},
			p:        0.5,
			expected: 0,
		},
		{
			name:     "median of odd count",
			xs:       []float64{3, 1, 2},
			p:        0.5,
			expected: 2,
		},
		{
			name:     "interpolates between order statistics",
			xs:       []float64{0, 10},
			p:        0.25,
			expected: 2.5,
		},
		{
			name:     "p at zero returns minimum",
			xs:       []float64{4, 1, 9},
			p:        0,
			expected: 1,
		},
		{
			name:     "p at one returns maximum",
			xs:       []float64{4, 1, 9},
			p:        1,
			expected: 9,
		},
		{
			name:     "first percentile of uniform sequence",
			xs:       []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			p:        0.01,
			expected: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Quantile(tt.xs, tt.p), 1e-12)
		})
	}
}

func TestIsolationForestDeterminism(t *testing.T) {
	matrix := clusterWithOutliers(200, 3)
	config := ForestConfig{Trees: 50, Contamination: 0.02, Seed: 42}

	first := NewIsolationForest(config)
	scores1, flags1, err := first.FitScore(matrix)
	require.NoError(t, err)

	second := NewIsolationForest(config)
	scores2, flags2, err := second.FitScore(matrix)
	require.NoError(t, err)

	assert.Equal(t, scores1, scores2, "identical matrix and seed must give identical scores")
	assert.Equal(t, flags1, flags2, "identical matrix and seed must give identical flags")
}

func TestIsolationForestSeparatesOutliers(t *testing.T) {
	matrix := clusterWithOutliers(200, 3)
	forest := NewIsolationForest(ForestConfig{Trees: 100, Contamination: 0.02, Seed: 42})

	scores, flags, err := forest.FitScore(matrix)
	require.NoError(t, err)
	require.Len(t, scores, 203)

	// Planted outliers must score lower than every cluster point.
	maxOutlier := scores[200]
	for _, i := range []int{201, 202} {
		if scores[i] > maxOutlier {
			maxOutlier = scores[i]
		}
	}
	for i := 0; i < 200; i++ {
		assert.Greater(t, scores[i], maxOutlier, "cluster point %d scored below a planted outlier", i)
	}

	// The flagged fraction tracks the contamination setting.
	flagged := 0
	for _, f := range flags {
		if f {
			flagged++
		}
	}
	assert.GreaterOrEqual(t, flagged, 1)
	assert.LessOrEqual(t, flagged, 10)
}

func TestIsolationForestFlagsMatchCutoff(t *testing.T) {
	matrix := clusterWithOutliers(100, 2)
	forest := NewIsolationForest(ForestConfig{Trees: 50, Contamination: 0.05, Seed: 1})

	scores, flags, err := forest.FitScore(matrix)
	require.NoError(t, err)

	cutoff := Quantile(scores, 0.05)
	for i := range scores {
		assert.Equal(t, scores[i] < cutoff, flags[i], "flag %d disagrees with contamination cutoff", i)
	}
}

func TestIsolationForestEmptyMatrix(t *testing.T) {
	forest := NewIsolationForest(DefaultForestConfig())

	_, _, err := forest.FitScore(nil)

	assert.Error(t, err)
}

func TestIsolationForestSingleRow(t *testing.T) {
	forest := NewIsolationForest(ForestConfig{Trees: 10, Contamination: 0.01, Seed: 42})

	scores, flags, err := forest.FitScore([][]float64{{0, 0, 0, 0}})

	require.NoError(t, err)
	assert.Equal(t, []float64{0}, scores)
	assert.Equal(t, []bool{false}, flags)
}

func TestDefaultForestConfig(t *testing.T) {
	config := DefaultForestConfig()

	assert.Equal(t, 250, config.Trees)
	assert.Equal(t, 0.01, config.Contamination)
	assert.Equal(t, int64(42), config.Seed)
}
