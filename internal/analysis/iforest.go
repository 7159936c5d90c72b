package analysis

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/KaramelBytes/salespulse/internal/sales"
)

const eulerGamma = 0.5772156649015329

// Forest is a fitted isolation forest over rows of numeric features.
type Forest struct {
	trees     []*iNode
	psi       int
	threshold float64
}

type iNode struct {
	feature     int
	split       float64
	left, right *iNode
	size        int // leaf only
}

func (n *iNode) leaf() bool { return n.left == nil }

// ForestOptions configures FitForest.
type ForestOptions struct {
	Trees         int
	MaxSamples    int
	Contamination float64
	Seed          uint64
}

// FitForest grows the forest on rows and sets the anomaly threshold at the
// (1-contamination) quantile of the training scores.
func FitForest(rows [][]float64, opt ForestOptions) (*Forest, error) {
	n := len(rows)
	if n == 0 {
		return nil, errors.New("isolation forest: no rows")
	}
	if opt.Trees <= 0 {
		opt.Trees = 100
	}
	if opt.MaxSamples <= 0 {
		opt.MaxSamples = 256
	}
	if opt.Contamination <= 0 || opt.Contamination > 0.5 {
		return nil, errors.New("isolation forest: contamination must be in (0, 0.5]")
	}
	psi := min(opt.MaxSamples, n)
	limit := int(math.Ceil(math.Log2(float64(max(psi, 2)))))
	r := rand.New(rand.NewPCG(opt.Seed, opt.Seed+1))

	f := &Forest{psi: psi, trees: make([]*iNode, opt.Trees)}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sample := make([]int, psi)
	for t := range f.trees {
		// partial Fisher-Yates: the first psi slots become a sample without replacement
		for i := 0; i < psi; i++ {
			j := i + r.IntN(n-i)
			perm[i], perm[j] = perm[j], perm[i]
		}
		copy(sample, perm[:psi])
		f.trees[t] = grow(rows, sample, 0, limit, r)
	}

	scores := f.Scores(rows)
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	f.threshold = sales.Quantile(sorted, 1-opt.Contamination)
	return f, nil
}

func grow(rows [][]float64, idx []int, depth, limit int, r *rand.Rand) *iNode {
	if depth >= limit || len(idx) <= 1 {
		return &iNode{size: len(idx)}
	}
	dims := len(rows[idx[0]])
	// candidate features are those not constant within this node
	var cand []int
	los := make([]float64, dims)
	his := make([]float64, dims)
	for d := 0; d < dims; d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, i := range idx {
			lo = math.Min(lo, rows[i][d])
			hi = math.Max(hi, rows[i][d])
		}
		los[d], his[d] = lo, hi
		if hi > lo {
			cand = append(cand, d)
		}
	}
	if len(cand) == 0 {
		return &iNode{size: len(idx)}
	}
	d := cand[r.IntN(len(cand))]
	split := los[d] + r.Float64()*(his[d]-los[d])
	var left, right []int
	for _, i := range idx {
		if rows[i][d] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &iNode{
		feature: d,
		split:   split,
		left:    grow(rows, left, depth+1, limit, r),
		right:   grow(rows, right, depth+1, limit, r),
	}
}

// averagePathLength is c(n), the mean path length of an unsuccessful BST search.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}

func pathLength(n *iNode, x []float64) float64 {
	depth := 0.0
	for !n.leaf() {
		if x[n.feature] < n.split {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return depth + averagePathLength(n.size)
}

// Score returns the anomaly score of x in (0, 1]; higher is more anomalous.
func (f *Forest) Score(x []float64) float64 {
	var sum float64
	for _, t := range f.trees {
		sum += pathLength(t, x)
	}
	mean := sum / float64(len(f.trees))
	c := averagePathLength(f.psi)
	if c == 0 {
		return 1
	}
	return math.Pow(2, -mean/c)
}

// Scores scores every row.
func (f *Forest) Scores(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, x := range rows {
		out[i] = f.Score(x)
	}
	return out
}

// Threshold is the score above which a row is labelled anomalous.
func (f *Forest) Threshold() float64 { return f.threshold }

// Predict labels rows; true marks an anomaly.
func (f *Forest) Predict(rows [][]float64) []bool {
	out := make([]bool, len(rows))
	for i, s := range f.Scores(rows) {
		out[i] = s > f.threshold
	}
	return out
}
