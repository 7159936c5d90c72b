package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Codes encodes values as the index of each value in the sorted distinct set,
// returning the codes and the category order.
func Codes(values []string) ([]float64, []string) {
	seen := map[string]struct{}{}
	var cats []string
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			cats = append(cats, v)
		}
	}
	sort.Strings(cats)
	index := make(map[string]int, len(cats))
	for i, c := range cats {
		index[c] = i
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(index[v])
	}
	return out, cats
}

// Split shuffles 0..n-1 with seed and returns train and test indexes.
// The test set holds ceil(testSize*n) rows.
func Split(n int, testSize float64, seed uint64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("split: test size %.3g outside (0, 1)", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain == 0 {
		return nil, nil, fmt.Errorf("split: %d rows leave an empty train or test set", n)
	}
	perm := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// LinearModel is an ordinary least squares fit y = Intercept + Coef·x.
type LinearModel struct {
	Intercept float64
	Coef      []float64
	Rank      int
}

// FitOLS solves the least squares problem on centered data with an SVD, so
// collinear or constant features get the minimum-norm solution.
func FitOLS(x [][]float64, y []float64) (*LinearModel, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, errors.New("ols: need matching non-empty x and y")
	}
	p := len(x[0])
	xmean := make([]float64, p)
	var ymean float64
	for i := range x {
		if len(x[i]) != p {
			return nil, fmt.Errorf("ols: row %d has %d features, want %d", i, len(x[i]), p)
		}
		for j, v := range x[i] {
			xmean[j] += v
		}
		ymean += y[i]
	}
	for j := range xmean {
		xmean[j] /= float64(n)
	}
	ymean /= float64(n)

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i := range x {
		for j, v := range x[i] {
			xc.Set(i, j, v-xmean[j])
		}
		yc.SetVec(i, y[i]-ymean)
	}

	m := &LinearModel{Coef: make([]float64, p)}
	var svd mat.SVD
	if !svd.Factorize(xc, mat.SVDThin) {
		return nil, errors.New("ols: svd factorization failed")
	}
	m.Rank = svd.Rank(1e-12)
	if m.Rank > 0 {
		var beta mat.VecDense
		svd.SolveVecTo(&beta, yc, m.Rank)
		for j := range m.Coef {
			m.Coef[j] = beta.AtVec(j)
		}
	}
	m.Intercept = ymean
	for j, b := range m.Coef {
		m.Intercept -= b * xmean[j]
	}
	return m, nil
}

// Predict evaluates the model on each row.
func (m *LinearModel) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		v := m.Intercept
		for j, b := range m.Coef {
			v += b * row[j]
		}
		out[i] = v
	}
	return out
}

// RSquared is the coefficient of determination. ok is false when actual has no variance.
func RSquared(actual, pred []float64) (r2 float64, ok bool) {
	if len(actual) == 0 || len(actual) != len(pred) {
		return 0, false
	}
	var mean float64
	for _, v := range actual {
		mean += v
	}
	mean /= float64(len(actual))
	var ssRes, ssTot float64
	for i, v := range actual {
		ssRes += (v - pred[i]) * (v - pred[i])
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		return 0, false
	}
	return 1 - ssRes/ssTot, true
}

// RMSE is the root mean squared error of pred against actual.
func RMSE(actual, pred []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var s float64
	for i, v := range actual {
		s += (v - pred[i]) * (v - pred[i])
	}
	return math.Sqrt(s / float64(len(actual)))
}
