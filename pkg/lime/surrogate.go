package lime

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// surrogateFit is the sparse weighted linear model fitted to the black-box
// output over the indicator space, restricted to the selected features.
type surrogateFit struct {
	features  []int
	coefs     []float64
	intercept float64
	r2        float64
}

// fitSurrogate ranks indicator columns by weighted absolute correlation with
// the black-box output, selects up to k non-degenerate columns, and refits
// an unregularized weighted least-squares regression on the selection.
// Zero-variance columns are silently dropped with the next-ranked column
// substituting; a singular refit substitutes the lowest-ranked selected
// column until candidates run out.
func fitSurrogate(samples []*Sample, outputs []float64, k int) (*surrogateFit, error) {
	n := len(samples)
	d := len(samples[0].Mask)

	weights := make([]float64, n)
	for i, s := range samples {
		weights[i] = s.Weight
	}
	columns := make([][]float64, d)
	for u := 0; u < d; u++ {
		col := make([]float64, n)
		for i, s := range samples {
			col[i] = s.Mask[u]
		}
		columns[u] = col
	}

	type candidate struct {
		feature int
		score   float64
	}
	var ranked []candidate
	for u := 0; u < d; u++ {
		if stat.Variance(columns[u], weights) == 0 {
			continue
		}
		score := stat.Correlation(columns[u], outputs, weights)
		if math.IsNaN(score) {
			score = 0
		}
		ranked = append(ranked, candidate{feature: u, score: math.Abs(score)})
	}
	if len(ranked) == 0 {
		return nil, &SingularFitError{Viable: 0}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].feature < ranked[j].feature
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	selected := make([]int, k)
	for i := range selected {
		selected[i] = ranked[i].feature
	}
	next := k

	for {
		coefs, intercept, err := solveWeightedLeastSquares(columns, outputs, weights, selected)
		if err == nil {
			return &surrogateFit{
				features:  selected,
				coefs:     coefs,
				intercept: intercept,
				r2:        weightedRSquared(columns, outputs, weights, selected, coefs, intercept),
			}, nil
		}
		switch {
		case next < len(ranked):
			selected[len(selected)-1] = ranked[next].feature
			next++
		case len(selected) > 1:
			selected = selected[:len(selected)-1]
		default:
			return nil, &SingularFitError{Viable: len(ranked)}
		}
	}
}

// solveWeightedLeastSquares solves the intercept-augmented regression by
// scaling every row with the square root of its kernel weight. An
// ill-conditioned solution is accepted; a singular one is an error.
func solveWeightedLeastSquares(columns [][]float64, outputs, weights []float64, selected []int) ([]float64, float64, error) {
	n := len(outputs)
	k := len(selected)
	a := mat.NewDense(n, k+1, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		sw := math.Sqrt(weights[i])
		a.Set(i, 0, sw)
		for j, u := range selected {
			a.Set(i, j+1, sw*columns[u][i])
		}
		b.SetVec(i, sw*outputs[i])
	}

	var solution mat.VecDense
	if err := solution.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			// An infinite condition number means an exactly singular
			// design; the coefficients would be meaningless.
			return nil, 0, err
		}
	}

	coefs := make([]float64, k)
	for j := range coefs {
		coefs[j] = solution.AtVec(j + 1)
	}
	return coefs, solution.AtVec(0), nil
}

func weightedRSquared(columns [][]float64, outputs, weights []float64, selected []int, coefs []float64, intercept float64) float64 {
	mean := stat.Mean(outputs, weights)
	ssTot, ssRes := 0.0, 0.0
	for i, y := range outputs {
		predicted := intercept
		for j, u := range selected {
			predicted += coefs[j] * columns[u][i]
		}
		ssTot += weights[i] * (y - mean) * (y - mean)
		ssRes += weights[i] * (y - predicted) * (y - predicted)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
