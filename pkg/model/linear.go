package model

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Linear is a multinomial logistic classifier over the encoded record
// vector: one weight row and bias per class, softmax over the resulting
// logits. For binary models a single row may be used together with its
// negation by storing both rows explicitly.
type Linear struct {
	// Weights is flattened row-major: Classes rows of NumFeatures columns.
	Weights     []float64
	Biases      []float64
	Classes     int
	NumFeatures int
}

func (m *Linear) NumClasses() int {
	return m.Classes
}

func (m *Linear) PredictBatch(ctx context.Context, batch []*Record) ([][]float64, error) {
	if len(m.Weights) != m.Classes*m.NumFeatures {
		return nil, fmt.Errorf("weight matrix has %d entries, expected %d", len(m.Weights), m.Classes*m.NumFeatures)
	}
	if len(m.Biases) != m.Classes {
		return nil, fmt.Errorf("bias vector has %d entries, expected %d", len(m.Biases), m.Classes)
	}
	weights := mat.NewDense(m.Classes, m.NumFeatures, m.Weights)

	result := make([][]float64, len(batch))
	for i, record := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		encoded := Encode(record)
		if len(encoded) != m.NumFeatures {
			return nil, fmt.Errorf("encoded record has %d features, model expects %d", len(encoded), m.NumFeatures)
		}
		var logits mat.VecDense
		logits.MulVec(weights, mat.NewVecDense(m.NumFeatures, encoded))
		raw := make([]float64, m.Classes)
		for c := 0; c < m.Classes; c++ {
			raw[c] = logits.AtVec(c) + m.Biases[c]
		}
		result[i] = softmax(raw)
	}
	return result, nil
}
