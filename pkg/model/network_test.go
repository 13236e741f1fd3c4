package model

import (
	"context"
	"testing"

	"github.com/nlpodyssey/spago/pkg/mat/rand"
	"github.com/stretchr/testify/require"
)

func TestNetworkPredictBatch(t *testing.T) {
	network := NewNetwork(4, 8, 2)
	network.Init(rand.NewLockedRand(42))
	require.Equal(t, 2, network.NumClasses())

	batch := []*Record{
		{Continuous: []float64{52, 1.8}, Categorical: []int{2, 0}},
		{Continuous: []float64{40, 0.2}, Categorical: []int{0, 1}},
	}
	probas, err := network.PredictBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, probas, 2)
	for _, p := range probas {
		require.Len(t, p, 2)
		sum := 0.0
		for _, v := range p {
			require.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		require.InDelta(t, 1.0, sum, 1e-6)
	}

	// Identical inputs produce identical distributions.
	again, err := network.PredictBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Equal(t, probas, again)
}

func TestNetworkDimensionMismatch(t *testing.T) {
	network := NewNetwork(4, 8, 2)
	network.Init(rand.NewLockedRand(42))

	_, err := network.PredictBatch(context.Background(), []*Record{{Continuous: []float64{1, 2}}})
	require.Error(t, err)
}
