package model

import (
	"context"
	"fmt"
)

// TreeNode is one node of a CART-style decision tree. Internal nodes split
// on an encoded feature index: continuous features compare against Threshold
// (value <= Threshold goes left), categorical features test equality with
// Threshold (equal goes left). Leaves carry a class distribution.
type TreeNode struct {
	Leaf        bool
	Feature     int
	Threshold   float64
	Categorical bool
	Left        *TreeNode
	Right       *TreeNode

	// Probas is the class probability distribution at a leaf.
	Probas []float64
}

// DecisionTree is a trained decision tree exposed through the BlackBox
// capability. Training happens outside this package; the tree is constructed
// from its fitted nodes.
type DecisionTree struct {
	Root    *TreeNode
	Classes int
}

func (t *DecisionTree) NumClasses() int {
	return t.Classes
}

func (t *DecisionTree) PredictBatch(ctx context.Context, batch []*Record) ([][]float64, error) {
	if t.Root == nil {
		return nil, fmt.Errorf("decision tree has no root node")
	}
	result := make([][]float64, len(batch))
	for i, record := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		probas, err := t.walk(Encode(record))
		if err != nil {
			return nil, err
		}
		result[i] = probas
	}
	return result, nil
}

func (t *DecisionTree) walk(features []float64) ([]float64, error) {
	node := t.Root
	for !node.Leaf {
		if node.Feature < 0 || node.Feature >= len(features) {
			return nil, fmt.Errorf("split on feature %d outside of encoded record of size %d", node.Feature, len(features))
		}
		value := features[node.Feature]
		feature := node.Feature
		var left bool
		if node.Categorical {
			left = value == node.Threshold
		} else {
			left = value <= node.Threshold
		}
		if left {
			node = node.Left
		} else {
			node = node.Right
		}
		if node == nil {
			return nil, fmt.Errorf("malformed tree: missing child below feature %d", feature)
		}
	}
	if len(node.Probas) != t.Classes {
		return nil, fmt.Errorf("leaf distribution has %d classes, expected %d", len(node.Probas), t.Classes)
	}
	out := make([]float64, t.Classes)
	copy(out, node.Probas)
	return out, nil
}
