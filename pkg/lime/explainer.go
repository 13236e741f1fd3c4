package lime

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand"

	"glime/pkg/model"
)

const (
	DefaultNumPerturbations = 2000
	DefaultNumFeatures      = 5
	DefaultNumBins          = 4
)

// Config carries the explanation parameters. Zero values fall back to the
// documented defaults; a zero KernelBandwidth derives the bandwidth from the
// feature count.
type Config struct {
	NumPerturbations int
	NumFeatures      int
	NumBins          int
	KernelBandwidth  float64
	RandomSeed       uint64
}

func (c Config) withDefaults() Config {
	if c.NumPerturbations <= 0 {
		c.NumPerturbations = DefaultNumPerturbations
	}
	if c.NumFeatures <= 0 {
		c.NumFeatures = DefaultNumFeatures
	}
	if c.NumBins <= 0 {
		c.NumBins = DefaultNumBins
	}
	return c
}

// Explainer explains single predictions of a black-box classifier by
// fitting sparse weighted linear surrogates in a perturbation neighborhood.
// Fit must complete before the first Explain call; afterwards the explainer
// holds no mutable state and arbitrarily many Explain calls may run in
// parallel.
type Explainer struct {
	blackBox model.BlackBox
	config   Config
	scheme   *Scheme
}

func NewExplainer(blackBox model.BlackBox, config Config) *Explainer {
	return &Explainer{
		blackBox: blackBox,
		config:   config.withDefaults(),
	}
}

// Fit learns the discretization scheme from the training corpus.
func (e *Explainer) Fit(meta *model.Metadata, records []*model.Record) error {
	scheme, err := Fit(meta, records, e.config.NumBins)
	if err != nil {
		return err
	}
	e.scheme = scheme
	return nil
}

// Scheme exposes the fitted discretization scheme, nil before Fit.
func (e *Explainer) Scheme() *Scheme {
	return e.scheme
}

// Explain produces the local explanation of the classifier's probability for
// label on one record. The perturbation stream is seeded by (configured
// seed, record ID, label), so identical inputs yield identical explanations
// regardless of scheduling. Cancelling the context aborts the call without
// surfacing partial results.
func (e *Explainer) Explain(ctx context.Context, record *model.Record, label string) (*Explanation, error) {
	if e.scheme == nil {
		return nil, ErrUnfit
	}
	labelIndex, ok := e.scheme.meta.TargetMap.ContainsName(label)
	if !ok {
		return nil, fmt.Errorf("unknown label %q", label)
	}

	disc, err := e.scheme.Transform(record)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(explainSeed(e.config.RandomSeed, record.ID, label)))
	samples := sampleNeighborhood(rng, e.scheme, record, disc, e.config.NumPerturbations)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := make([]*model.Record, len(samples))
	for i, s := range samples {
		batch[i] = s.Record
	}
	probabilities, err := e.predictWithRetry(ctx, batch)
	if err != nil {
		return nil, err
	}

	outputs := make([]float64, len(samples))
	for i, probs := range probabilities {
		if labelIndex >= len(probs) {
			return nil, &BlackBoxError{Err: fmt.Errorf("prediction %d has %d classes, label index is %d", i, len(probs), labelIndex)}
		}
		outputs[i] = probs[labelIndex]
	}

	bandwidth := e.config.KernelBandwidth
	if bandwidth <= 0 {
		bandwidth = defaultBandwidth(e.scheme.NumFeatures())
	}
	applyKernel(samples, bandwidth)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fit, err := fitSurrogate(samples, outputs, e.config.NumFeatures)
	if err != nil {
		return nil, err
	}

	terms := make([]Term, len(fit.features))
	for i, u := range fit.features {
		terms[i] = Term{
			Feature:   e.scheme.FeatureName(u),
			Condition: e.scheme.Describe(u, disc.Bins[u]),
			Weight:    fit.coefs[i],
		}
	}
	return &Explanation{
		RecordID:  record.ID,
		Label:     label,
		Terms:     terms,
		Intercept: fit.intercept,
		RSquared:  fit.r2,
	}, nil
}

// predictWithRetry issues the single batched inference call of an
// explanation, retrying once before surfacing the failure.
func (e *Explainer) predictWithRetry(ctx context.Context, batch []*model.Record) ([][]float64, error) {
	probabilities, err := e.blackBox.PredictBatch(ctx, batch)
	if err == nil {
		return probabilities, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	probabilities, err = e.blackBox.PredictBatch(ctx, batch)
	if err != nil {
		return nil, &BlackBoxError{Err: err}
	}
	return probabilities, nil
}

// explainSeed derives the per-call random seed from the configured seed and
// the (record, label) identity.
func explainSeed(seed uint64, recordID int, label string) int64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seed)
	_, _ = h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(recordID))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(label))
	return int64(h.Sum64())
}
