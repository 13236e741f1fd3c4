package pkg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options drives the explanation pipeline. Flags populate it on the command
// line; a YAML config file may overlay any subset of fields.
type Options struct {
	ModelFile      string `yaml:"model"`
	CorpusFile     string `yaml:"corpus"`
	InputFile      string `yaml:"input"`
	OutputFile     string `yaml:"output"`
	ImportanceFile string `yaml:"importance"`

	NumPerturbations int     `yaml:"num_perturbations"`
	NumFeatures      int     `yaml:"num_features"`
	NumBins          int     `yaml:"num_bins"`
	KernelBandwidth  float64 `yaml:"kernel_bandwidth"`
	RandomSeed       uint64  `yaml:"random_seed"`

	Labels      []string `yaml:"labels"`
	SampleSize  int      `yaml:"sample_size"`
	Parallelism int      `yaml:"parallelism"`
}

// ApplyConfigFile overlays the fields present in a YAML file onto the
// options. Fields absent from the file keep their current values.
func (o *Options) ApplyConfigFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	overlay := Options{}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", fileName, err)
	}

	if overlay.ModelFile != "" {
		o.ModelFile = overlay.ModelFile
	}
	if overlay.CorpusFile != "" {
		o.CorpusFile = overlay.CorpusFile
	}
	if overlay.InputFile != "" {
		o.InputFile = overlay.InputFile
	}
	if overlay.OutputFile != "" {
		o.OutputFile = overlay.OutputFile
	}
	if overlay.ImportanceFile != "" {
		o.ImportanceFile = overlay.ImportanceFile
	}
	if overlay.NumPerturbations != 0 {
		o.NumPerturbations = overlay.NumPerturbations
	}
	if overlay.NumFeatures != 0 {
		o.NumFeatures = overlay.NumFeatures
	}
	if overlay.NumBins != 0 {
		o.NumBins = overlay.NumBins
	}
	if overlay.KernelBandwidth != 0 {
		o.KernelBandwidth = overlay.KernelBandwidth
	}
	if overlay.RandomSeed != 0 {
		o.RandomSeed = overlay.RandomSeed
	}
	if len(overlay.Labels) != 0 {
		o.Labels = overlay.Labels
	}
	if overlay.SampleSize != 0 {
		o.SampleSize = overlay.SampleSize
	}
	if overlay.Parallelism != 0 {
		o.Parallelism = overlay.Parallelism
	}
	return nil
}
