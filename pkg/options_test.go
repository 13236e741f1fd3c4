package pkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	content := `
corpus: corpus.csv
num_perturbations: 500
num_features: 3
labels:
  - present
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	opts := Options{
		ModelFile:        "heart.model",
		CorpusFile:       "original.csv",
		NumPerturbations: 2000,
		RandomSeed:       42,
	}
	require.NoError(t, opts.ApplyConfigFile(file))

	// Fields present in the file win, absent fields keep their values.
	require.Equal(t, "corpus.csv", opts.CorpusFile)
	require.Equal(t, "heart.model", opts.ModelFile)
	require.Equal(t, 500, opts.NumPerturbations)
	require.Equal(t, 3, opts.NumFeatures)
	require.Equal(t, []string{"present"}, opts.Labels)
	require.Equal(t, uint64(42), opts.RandomSeed)
}

func TestApplyConfigFileErrors(t *testing.T) {
	opts := Options{}
	require.Error(t, opts.ApplyConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))

	file := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(file, []byte("corpus: [unterminated"), 0644))
	require.Error(t, opts.ApplyConfigFile(file))
}
