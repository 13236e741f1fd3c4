package model

import (
	"context"
	"fmt"
)

// Forest averages the class distributions of an ensemble of decision trees.
type Forest struct {
	Trees   []*DecisionTree
	Classes int
}

func (f *Forest) NumClasses() int {
	return f.Classes
}

func (f *Forest) PredictBatch(ctx context.Context, batch []*Record) ([][]float64, error) {
	if len(f.Trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	result := make([][]float64, len(batch))
	for i := range result {
		result[i] = make([]float64, f.Classes)
	}
	for _, tree := range f.Trees {
		if tree.Classes != f.Classes {
			return nil, fmt.Errorf("tree predicts %d classes, forest expects %d", tree.Classes, f.Classes)
		}
		probas, err := tree.PredictBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		for i := range probas {
			for c, p := range probas[i] {
				result[i][c] += p
			}
		}
	}
	n := float64(len(f.Trees))
	for i := range result {
		for c := range result[i] {
			result[i][c] /= n
		}
	}
	return result, nil
}
