package lime

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"glime/pkg/model"
)

// testMeta builds the metadata of a small corpus with two continuous
// features (Age, Oldpeak), one categorical feature (Thal) and a binary
// target (Disease).
func testMeta() *model.Metadata {
	meta := model.NewMetadata()
	meta.Columns = []string{"Age", "Oldpeak", "Thal", "Disease"}
	meta.ContinuousFeaturesMap.Set(0, 0)
	meta.ContinuousFeaturesMap.Set(1, 1)
	meta.CategoricalFeaturesMap.Set(2, 0)
	meta.TargetColumn = 3
	thal := model.NewNameMap()
	thal.Set("normal", 0)
	thal.Set("fixed", 1)
	thal.Set("reversible", 2)
	meta.CategoricalValuesMap[0] = thal
	meta.TargetMap.Set("absent", 0)
	meta.TargetMap.Set("present", 1)
	return meta
}

func testCorpus(n int) []*model.Record {
	records := make([]*model.Record, n)
	for i := 0; i < n; i++ {
		records[i] = &model.Record{
			ID:          i,
			Continuous:  []float64{float64(30 + i%41), float64(i) * 4.0 / float64(n)},
			Categorical: []int{i % 3},
			Target:      float64(i % 2),
		}
	}
	return records
}

func TestFitQuantileBins(t *testing.T) {
	meta := testMeta()
	records := testCorpus(1000)

	scheme, err := Fit(meta, records, 4)
	require.NoError(t, err)
	require.Equal(t, 3, scheme.NumFeatures())
	require.Len(t, scheme.edges[1], 3)
	for i := 1; i < len(scheme.edges[1]); i++ {
		require.Greater(t, scheme.edges[1][i], scheme.edges[1][i-1])
	}

	// Identical corpus and configuration must produce an identical scheme.
	again, err := Fit(meta, records, 4)
	require.NoError(t, err)
	require.Equal(t, scheme.edges, again.edges)
	require.Equal(t, scheme.catSeen, again.catSeen)
}

func TestTransformIsDeterministic(t *testing.T) {
	meta := testMeta()
	scheme, err := Fit(meta, testCorpus(1000), 4)
	require.NoError(t, err)

	record := &model.Record{ID: 1, Continuous: []float64{52, 1.8}, Categorical: []int{1}}
	first, err := scheme.Transform(record)
	require.NoError(t, err)
	second, err := scheme.Transform(record)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.GreaterOrEqual(t, first.Bins[1], 0)
	require.Less(t, first.Bins[1], 4)
	require.Equal(t, 1, first.Bins[2])
}

func TestTransformUnknownCategory(t *testing.T) {
	meta := testMeta()
	scheme, err := Fit(meta, testCorpus(100), 4)
	require.NoError(t, err)

	record := &model.Record{ID: 1, Continuous: []float64{52, 1.8}, Categorical: []int{7}}
	_, err = scheme.Transform(record)
	var unknown *UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "Thal", unknown.Column)
}

func TestFitConstantFeature(t *testing.T) {
	meta := testMeta()
	records := testCorpus(100)
	for _, r := range records {
		r.Continuous[0] = 55 // Age constant across the corpus
	}

	scheme, err := Fit(meta, records, 4)
	require.NoError(t, err)
	require.Empty(t, scheme.edges[0])

	disc, err := scheme.Transform(records[0])
	require.NoError(t, err)
	require.Equal(t, 0, disc.Bins[0])
	require.Equal(t, "Age", scheme.Describe(0, 0))
}

func TestDescribe(t *testing.T) {
	meta := testMeta()
	scheme, err := Fit(meta, testCorpus(1000), 4)
	require.NoError(t, err)

	edges := scheme.edges[1]
	require.Equal(t, fmt.Sprintf("Oldpeak <= %.2f", edges[0]), scheme.Describe(1, 0))
	require.Equal(t, fmt.Sprintf("%.2f < Oldpeak <= %.2f", edges[0], edges[1]), scheme.Describe(1, 1))
	require.Equal(t, fmt.Sprintf("Oldpeak > %.2f", edges[2]), scheme.Describe(1, 3))
	require.Equal(t, "Thal = fixed", scheme.Describe(2, 1))
}

func TestFitEmptyCorpus(t *testing.T) {
	_, err := Fit(testMeta(), nil, 4)
	require.Error(t, err)
}
