package model

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Margin is a binary kernel-margin classifier (an RBF support-vector machine
// in fitted form): the decision value is a weighted sum of RBF kernel
// evaluations against the support vectors, mapped to a probability with a
// sigmoid calibration (Platt scaling). Class 1 is the positive class.
type Margin struct {
	SupportVectors [][]float64
	// Alphas are the signed dual coefficients (label times multiplier).
	Alphas []float64
	Bias   float64
	Gamma  float64

	// CalibrationA and CalibrationB are the fitted sigmoid calibration
	// parameters: p = sigmoid(-(A*decision + B)).
	CalibrationA float64
	CalibrationB float64
}

func (m *Margin) NumClasses() int {
	return 2
}

func (m *Margin) PredictBatch(ctx context.Context, batch []*Record) ([][]float64, error) {
	if len(m.SupportVectors) == 0 {
		return nil, fmt.Errorf("margin model has no support vectors")
	}
	if len(m.Alphas) != len(m.SupportVectors) {
		return nil, fmt.Errorf("margin model has %d coefficients for %d support vectors", len(m.Alphas), len(m.SupportVectors))
	}
	result := make([][]float64, len(batch))
	for i, record := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		encoded := Encode(record)
		decision, err := m.decisionValue(encoded)
		if err != nil {
			return nil, err
		}
		positive := sigmoid(-(m.CalibrationA*decision + m.CalibrationB))
		result[i] = []float64{1 - positive, positive}
	}
	return result, nil
}

func (m *Margin) decisionValue(encoded []float64) (float64, error) {
	decision := m.Bias
	for i, sv := range m.SupportVectors {
		if len(sv) != len(encoded) {
			return 0, fmt.Errorf("support vector %d has %d features, record has %d", i, len(sv), len(encoded))
		}
		d := floats.Distance(encoded, sv, 2)
		decision += m.Alphas[i] * math.Exp(-m.Gamma*d*d)
	}
	return decision, nil
}
