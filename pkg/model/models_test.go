package model

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func oldpeakTree() *DecisionTree {
	// Splits on the encoded Oldpeak value (index 1), with a categorical
	// refinement on the Thal level (index 2) for the high-Oldpeak branch.
	return &DecisionTree{
		Classes: 2,
		Root: &TreeNode{
			Feature:   1,
			Threshold: 1.5,
			Left:      &TreeNode{Leaf: true, Probas: []float64{0.8, 0.2}},
			Right: &TreeNode{
				Feature:     2,
				Threshold:   1,
				Categorical: true,
				Left:        &TreeNode{Leaf: true, Probas: []float64{0.1, 0.9}},
				Right:       &TreeNode{Leaf: true, Probas: []float64{0.4, 0.6}},
			},
		},
	}
}

func TestDecisionTreePredictBatch(t *testing.T) {
	tree := oldpeakTree()
	require.Equal(t, 2, tree.NumClasses())

	batch := []*Record{
		{Continuous: []float64{50, 0.5}, Categorical: []int{1}},
		{Continuous: []float64{50, 2.5}, Categorical: []int{1}},
		{Continuous: []float64{50, 2.5}, Categorical: []int{0}},
	}
	probas, err := tree.PredictBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Equal(t, []float64{0.8, 0.2}, probas[0])
	require.Equal(t, []float64{0.1, 0.9}, probas[1])
	require.Equal(t, []float64{0.4, 0.6}, probas[2])
}

func TestDecisionTreeMalformed(t *testing.T) {
	tree := &DecisionTree{Classes: 2}
	_, err := tree.PredictBatch(context.Background(), []*Record{{}})
	require.Error(t, err)

	tree = &DecisionTree{
		Classes: 2,
		Root: &TreeNode{
			Feature:   0,
			Threshold: 1,
			Left:      &TreeNode{Leaf: true, Probas: []float64{1, 0}},
		},
	}
	_, err = tree.PredictBatch(context.Background(), []*Record{{Continuous: []float64{2}}})
	require.Error(t, err)

	tree = &DecisionTree{
		Classes: 2,
		Root:    &TreeNode{Feature: 5, Threshold: 1},
	}
	_, err = tree.PredictBatch(context.Background(), []*Record{{Continuous: []float64{2}}})
	require.Error(t, err)
}

func TestForestAveragesTrees(t *testing.T) {
	constantTree := func(p0, p1 float64) *DecisionTree {
		return &DecisionTree{
			Classes: 2,
			Root:    &TreeNode{Leaf: true, Probas: []float64{p0, p1}},
		}
	}
	forest := &Forest{
		Classes: 2,
		Trees:   []*DecisionTree{constantTree(1, 0), constantTree(0.5, 0.5)},
	}

	probas, err := forest.PredictBatch(context.Background(), []*Record{{Continuous: []float64{1}}})
	require.NoError(t, err)
	require.InDelta(t, 0.75, probas[0][0], 1e-12)
	require.InDelta(t, 0.25, probas[0][1], 1e-12)

	empty := &Forest{Classes: 2}
	_, err = empty.PredictBatch(context.Background(), []*Record{{}})
	require.Error(t, err)
}

func TestLinearPredictBatch(t *testing.T) {
	// Two classes over two features with opposing weight rows: the softmax
	// reduces to a sigmoid of the logit difference.
	m := &Linear{
		Weights:     []float64{1, -1, -1, 1},
		Biases:      []float64{0.5, -0.5},
		Classes:     2,
		NumFeatures: 2,
	}
	require.Equal(t, 2, m.NumClasses())

	record := &Record{Continuous: []float64{2, 1}}
	probas, err := m.PredictBatch(context.Background(), []*Record{record})
	require.NoError(t, err)
	require.Len(t, probas[0], 2)
	require.InDelta(t, 1.0, probas[0][0]+probas[0][1], 1e-12)

	// logit difference is (2-1+0.5)-(-2+1-0.5) = 3
	expected := 1.0 / (1.0 + math.Exp(-3))
	require.InDelta(t, expected, probas[0][0], 1e-12)

	_, err = m.PredictBatch(context.Background(), []*Record{{Continuous: []float64{1}}})
	require.Error(t, err)
}

func TestMarginPredictBatch(t *testing.T) {
	m := &Margin{
		SupportVectors: [][]float64{{0, 0}, {2, 2}},
		Alphas:         []float64{-1, 1},
		Bias:           0.1,
		Gamma:          0.5,
		CalibrationA:   -1,
		CalibrationB:   0,
	}
	require.Equal(t, 2, m.NumClasses())

	batch := []*Record{
		{Continuous: []float64{0, 0}},
		{Continuous: []float64{2, 2}},
	}
	probas, err := m.PredictBatch(context.Background(), batch)
	require.NoError(t, err)
	for _, p := range probas {
		require.Len(t, p, 2)
		require.InDelta(t, 1.0, p[0]+p[1], 1e-12)
	}
	// The instance sitting on the positive support vector scores higher.
	require.Greater(t, probas[1][1], probas[0][1])

	_, err = m.PredictBatch(context.Background(), []*Record{{Continuous: []float64{1}}})
	require.Error(t, err)
}

func TestEncodeLayout(t *testing.T) {
	record := &Record{Continuous: []float64{52, 1.8}, Categorical: []int{2, 0}}
	require.Equal(t, []float64{52, 1.8, 2, 0}, Encode(record))

	clone := record.Clone()
	clone.Continuous[0] = 99
	clone.Categorical[0] = 1
	require.Equal(t, 52.0, record.Continuous[0])
	require.Equal(t, 2, record.Categorical[0])
}

func TestPredictBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := oldpeakTree().PredictBatch(ctx, []*Record{{Continuous: []float64{50, 0.5}, Categorical: []int{1}}})
	require.Error(t, err)
}
