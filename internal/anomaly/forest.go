package anomaly

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	apperrors "github.com/arcstats/demoaudit/internal/errors"
)

const defaultSampleSize = 256

// ForestConfig holds the fixed isolation-forest configuration. No tuning
// loop: ensemble size, contamination and seed are set once per run.
type ForestConfig struct {
	Trees         int
	SampleSize    int
	Contamination float64
	Seed          int64
}

// DefaultForestConfig mirrors the production run configuration.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:         250,
		SampleSize:    defaultSampleSize,
		Contamination: 0.01,
		Seed:          42,
	}
}

// IsolationForest is an ensemble of randomized partitioning trees. An
// instance's anomaly score is inversely related to the average path length
// needed to isolate it: shorter isolation path, more anomalous.
type IsolationForest struct {
	config ForestConfig
}

// NewIsolationForest creates a detector with the given configuration.
func NewIsolationForest(config ForestConfig) *IsolationForest {
	if config.Trees <= 0 {
		config.Trees = 250
	}
	if config.SampleSize <= 0 {
		config.SampleSize = defaultSampleSize
	}
	return &IsolationForest{config: config}
}

// treeNode is one node of an isolation tree. External nodes carry the size
// of the sample that reached them so path lengths can be extended by the
// expected depth of an unbuilt subtree.
type treeNode struct {
	splitFeature int
	splitValue   float64
	left, right  *treeNode
	size         int
	external     bool
}

// FitScore fits the ensemble on the matrix and scores every row. The
// decision score is 0.5 - s(x) with s the unit-interval isolation score,
// so higher means more normal; the flag cutoff is the contamination
// quantile of the run's scores. Identical matrix and seed give identical
// scores and flags.
func (f *IsolationForest) FitScore(matrix [][]float64) ([]float64, []bool, error) {
	n := len(matrix)
	if n == 0 {
		return nil, nil, apperrors.NewEmptyInputError(0)
	}

	sampleSize := f.config.SampleSize
	if sampleSize > n {
		sampleSize = n
	}
	heightLimit := int(math.Ceil(math.Log2(float64(sampleSize))))
	if heightLimit < 1 {
		heightLimit = 1
	}

	trees := make([]*treeNode, f.config.Trees)

	// Trees are embarrassingly parallel: read-only shared matrix, per-tree
	// derived seed, results written to distinct slots.
	workers := runtime.NumCPU()
	if workers > f.config.Trees {
		workers = f.config.Trees
	}
	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				rng := rand.New(rand.NewSource(f.config.Seed + int64(t)))
				sample := rng.Perm(n)[:sampleSize]
				trees[t] = buildTree(matrix, sample, 0, heightLimit, rng)
			}
		}()
	}
	for t := 0; t < f.config.Trees; t++ {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	norm := averagePathLength(sampleSize)
	scores := make([]float64, n)
	for i := range matrix {
		// A one-row sample cannot be isolated; degenerate statistics are
		// defined as 0 rather than propagated.
		if norm == 0 {
			scores[i] = 0
			continue
		}
		total := 0.0
		for _, tree := range trees {
			total += pathLength(tree, matrix[i], 0)
		}
		avg := total / float64(len(trees))
		s := math.Pow(2, -avg/norm)
		scores[i] = 0.5 - s
	}

	cutoff := Quantile(scores, f.config.Contamination)
	flags := make([]bool, n)
	for i, score := range scores {
		flags[i] = score < cutoff
	}

	return scores, flags, nil
}

// buildTree grows one isolation tree over the sampled row indexes.
func buildTree(matrix [][]float64, idx []int, depth, limit int, rng *rand.Rand) *treeNode {
	if depth >= limit || len(idx) <= 1 {
		return &treeNode{external: true, size: len(idx)}
	}

	cols := len(matrix[idx[0]])

	// Only features with spread in this partition can split it.
	splittable := make([]int, 0, cols)
	for j := 0; j < cols; j++ {
		lo, hi := matrix[idx[0]][j], matrix[idx[0]][j]
		for _, i := range idx[1:] {
			v := matrix[i][j]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi > lo {
			splittable = append(splittable, j)
		}
	}
	if len(splittable) == 0 {
		return &treeNode{external: true, size: len(idx)}
	}

	feature := splittable[rng.Intn(len(splittable))]
	lo, hi := matrix[idx[0]][feature], matrix[idx[0]][feature]
	for _, i := range idx[1:] {
		v := matrix[i][feature]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	split := lo + rng.Float64()*(hi-lo)

	var left, right []int
	for _, i := range idx {
		if matrix[i][feature] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{external: true, size: len(idx)}
	}

	return &treeNode{
		splitFeature: feature,
		splitValue:   split,
		left:         buildTree(matrix, left, depth+1, limit, rng),
		right:        buildTree(matrix, right, depth+1, limit, rng),
	}
}

// pathLength traverses the tree for one instance. External nodes holding
// more than one sample extend the path by the expected depth of the
// subtree that was never built.
func pathLength(node *treeNode, row []float64, depth int) float64 {
	if node.external {
		return float64(depth) + averagePathLength(node.size)
	}
	if row[node.splitFeature] < node.splitValue {
		return pathLength(node.left, row, depth+1)
	}
	return pathLength(node.right, row, depth+1)
}

// averagePathLength is c(n), the expected path length of an unsuccessful
// BST search over n items.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		h := math.Log(float64(n-1)) + 0.5772156649015329
		return 2*h - 2*float64(n-1)/float64(n)
	}
}
