package model

import (
	"context"
	"encoding/gob"
	"math"
)

// Record is a single instance: continuous feature values and categorical
// level indexes, laid out according to the Metadata column maps. Records are
// treated as immutable once loaded; the explainer clones before perturbing.
type Record struct {
	// ID identifies the record within its corpus (the input row number).
	// It seeds the per-explanation random stream.
	ID int

	Continuous  []float64
	Categorical []int

	Target float64
}

func (r *Record) Clone() *Record {
	clone := &Record{
		ID:     r.ID,
		Target: r.Target,
	}
	if r.Continuous != nil {
		clone.Continuous = make([]float64, len(r.Continuous))
		copy(clone.Continuous, r.Continuous)
	}
	if r.Categorical != nil {
		clone.Categorical = make([]int, len(r.Categorical))
		copy(clone.Categorical, r.Categorical)
	}
	return clone
}

// BlackBox is the only capability the explanation core requires of a
// classifier: batched class-probability prediction. Implementations must be
// safe for concurrent calls; the explainer issues one batched call per
// explanation and may run many explanations in parallel.
type BlackBox interface {
	// PredictBatch returns one probability distribution over classes per
	// input record.
	PredictBatch(ctx context.Context, batch []*Record) ([][]float64, error)
	NumClasses() int
}

// Model bundles a trained classifier with the metadata describing the data
// layout it was trained on.
type Model struct {
	MetaData *Metadata
	BlackBox BlackBox
}

func init() {
	gob.Register(&DecisionTree{})
	gob.Register(&Forest{})
	gob.Register(&Linear{})
	gob.Register(&Margin{})
	gob.Register(&Network{})
}

// Encode flattens a record into a single dense vector: continuous features
// first, categorical level indexes appended as raw values. All adapters
// share this layout.
func Encode(r *Record) []float64 {
	encoded := make([]float64, 0, len(r.Continuous)+len(r.Categorical))
	encoded = append(encoded, r.Continuous...)
	for _, level := range r.Categorical {
		encoded = append(encoded, float64(level))
	}
	return encoded
}

func softmax(logits []float64) []float64 {
	max := math.Inf(-1)
	for _, v := range logits {
		if v > max {
			max = v
		}
	}
	sum := 0.0
	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
