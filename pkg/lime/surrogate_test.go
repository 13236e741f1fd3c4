package lime

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func maskedSamples(rng *rand.Rand, n, d int) []*Sample {
	samples := make([]*Sample, n)
	for i := range samples {
		mask := make([]float64, d)
		for u := range mask {
			if i == 0 || rng.Float64() < 0.5 {
				mask[u] = 1
			}
		}
		samples[i] = &Sample{Mask: mask, Weight: 1}
	}
	return samples
}

func TestFitSurrogateRecoversLinearModel(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	samples := maskedSamples(rng, 400, 4)
	outputs := make([]float64, len(samples))
	for i, s := range samples {
		outputs[i] = 0.5 + 2*s.Mask[0] - s.Mask[1]
	}

	fit, err := fitSurrogate(samples, outputs, 3)
	require.NoError(t, err)
	require.Len(t, fit.features, 3)
	require.Equal(t, 0, fit.features[0])
	require.Equal(t, 1, fit.features[1])
	require.InDelta(t, 2.0, fit.coefs[0], 1e-9)
	require.InDelta(t, -1.0, fit.coefs[1], 1e-9)
	require.InDelta(t, 0.0, fit.coefs[2], 1e-9)
	require.InDelta(t, 0.5, fit.intercept, 1e-9)
	require.InDelta(t, 1.0, fit.r2, 1e-9)
}

func TestFitSurrogateDropsDegenerateColumn(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	samples := maskedSamples(rng, 300, 4)
	for _, s := range samples {
		s.Mask[2] = 1 // zero variance across the whole sample set
	}
	outputs := make([]float64, len(samples))
	for i, s := range samples {
		outputs[i] = s.Mask[0] - 0.5*s.Mask[3]
	}

	fit, err := fitSurrogate(samples, outputs, 4)
	require.NoError(t, err)
	require.Len(t, fit.features, 3)
	require.NotContains(t, fit.features, 2)
}

func TestFitSurrogateSingular(t *testing.T) {
	samples := make([]*Sample, 50)
	for i := range samples {
		samples[i] = &Sample{Mask: []float64{1, 1, 1}, Weight: 1}
	}
	outputs := make([]float64, len(samples))

	_, err := fitSurrogate(samples, outputs, 2)
	var singular *SingularFitError
	require.True(t, errors.As(err, &singular))
	require.Equal(t, 0, singular.Viable)
}

func TestFitSurrogateCollinearColumns(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	samples := maskedSamples(rng, 200, 3)
	for _, s := range samples {
		s.Mask[1] = s.Mask[0] // duplicate indicator column
	}
	outputs := make([]float64, len(samples))
	for i, s := range samples {
		outputs[i] = s.Mask[0] + 0.3*s.Mask[2]
	}

	// The duplicated column makes any selection containing both copies
	// singular; the fitter must shrink to a solvable subset instead of
	// returning arbitrary coefficients.
	fit, err := fitSurrogate(samples, outputs, 3)
	require.NoError(t, err)
	require.NotContains(t, fit.features, 1)
	require.Contains(t, fit.features, 0)
	for i, u := range fit.features {
		if u == 0 {
			require.Greater(t, fit.coefs[i], 0.0)
		}
	}
}

func TestFitSurrogateConstantOutput(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	samples := maskedSamples(rng, 200, 3)
	outputs := make([]float64, len(samples))
	for i := range outputs {
		outputs[i] = 0.7
	}

	fit, err := fitSurrogate(samples, outputs, 2)
	require.NoError(t, err)
	require.InDelta(t, 0.7, fit.intercept, 1e-9)
	for _, c := range fit.coefs {
		require.InDelta(t, 0.0, c, 1e-9)
	}
}
