package pkg

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	gio "io"
	"math/rand"
	"os"
	"runtime"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"glime/pkg/io"
	"glime/pkg/lime"
	"glime/pkg/model"
)

type NoopWriter struct{}

func (x NoopWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func printDataErrors(errors []io.DataError) {
	for _, err := range errors {
		log.Error().Msgf("Error parsing data at line %d: %s", err.Line, err.Error)
	}
}

// lowFidelityThreshold flags explanations whose surrogate R-squared is too
// low to trust. The explanation is still emitted.
const lowFidelityThreshold = 0.25

// Explain runs the full pipeline: load the trained model and its corpus,
// fit the discretization scheme, explain a sample of instances in parallel,
// aggregate the explanations and optionally reconcile them against global
// feature importances.
func Explain(opts Options) error {

	modelFile, err := os.Open(opts.ModelFile)
	if err != nil {
		return fmt.Errorf("error opening model file %s: %w", opts.ModelFile, err)
	}
	m, err := io.LoadModel(modelFile)
	modelFile.Close()
	if err != nil {
		return fmt.Errorf("error loading model from file %s: %w", opts.ModelFile, err)
	}
	meta := m.MetaData

	_, records, dataErrors, err := io.LoadData(io.DataParameters{
		DataFile:     opts.CorpusFile,
		TargetColumn: meta.Columns[meta.TargetColumn],
	}, meta)
	if err != nil {
		return fmt.Errorf("error loading corpus from %s: %w", opts.CorpusFile, err)
	}
	printDataErrors(dataErrors)
	if len(records) == 0 {
		return fmt.Errorf("no corpus records to fit the discretization scheme on")
	}

	explainer := lime.NewExplainer(m.BlackBox, lime.Config{
		NumPerturbations: opts.NumPerturbations,
		NumFeatures:      opts.NumFeatures,
		NumBins:          opts.NumBins,
		KernelBandwidth:  opts.KernelBandwidth,
		RandomSeed:       opts.RandomSeed,
	})
	if err := explainer.Fit(meta, records); err != nil {
		return fmt.Errorf("error fitting discretization scheme: %w", err)
	}

	sample, err := selectInstances(opts, meta, records)
	if err != nil {
		return err
	}
	labels := opts.Labels
	if len(labels) == 0 {
		labels = sortedLabels(meta)
	}

	type job struct {
		record *model.Record
		label  string
	}
	var jobs []job
	for _, record := range sample {
		for _, label := range labels {
			jobs = append(jobs, job{record: record, label: label})
		}
	}

	results := make([]*lime.Explanation, len(jobs))
	g, ctx := errgroup.WithContext(context.Background())
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(parallelism)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			explanation, err := explainer.Explain(ctx, j.record, j.label)
			if err != nil {
				var unknownCategory *lime.UnknownCategoryError
				var singularFit *lime.SingularFitError
				if errors.As(err, &unknownCategory) || errors.As(err, &singularFit) {
					log.Warn().Int("Record", j.record.ID).Str("Label", j.label).Msg(err.Error())
					return nil
				}
				return err
			}
			if explanation.RSquared < lowFidelityThreshold {
				log.Warn().Int("Record", j.record.ID).Str("Label", j.label).
					Float64("RSquared", explanation.RSquared).Msg("Low-fidelity explanation")
			}
			results[i] = explanation
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var explanations []*lime.Explanation
	for _, e := range results {
		if e != nil {
			explanations = append(explanations, e)
		}
	}
	if len(explanations) == 0 {
		return fmt.Errorf("no explanations produced")
	}

	var outputWriter gio.Writer = NoopWriter{}
	if opts.OutputFile != "" {
		outputFile, err := os.Create(opts.OutputFile)
		if err != nil {
			return fmt.Errorf("error opening output file %s: %w", opts.OutputFile, err)
		}
		defer outputFile.Close()
		outputWriter = outputFile
	}
	csvWriter := csv.NewWriter(outputWriter)
	for _, e := range explanations {
		for _, t := range e.Terms {
			row := []string{
				strconv.Itoa(e.RecordID),
				e.Label,
				t.Condition,
				strconv.FormatFloat(t.Weight, 'f', 5, 64),
				strconv.FormatFloat(e.RSquared, 'f', 5, 64),
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("error writing explanation output: %w", err)
			}
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("error writing explanation output: %w", err)
	}

	set := lime.Aggregate(explanations)
	for _, t := range set.Terms {
		log.Info().Str("Condition", t.Condition).
			Float64("MeanWeight", t.Mean).
			Float64("StdDev", t.StdDev).
			Int("Cases", t.Count).
			Msg("")
	}

	if opts.ImportanceFile != "" {
		importance, err := io.LoadImportance(opts.ImportanceFile)
		if err != nil {
			return err
		}
		k := opts.NumFeatures
		if k <= 0 {
			k = lime.DefaultNumFeatures
		}
		for _, c := range lime.Compare(importance, set, k) {
			log.Info().Str("Feature", c.Feature).
				Str("Presence", c.Presence.String()).
				Float64("GlobalScore", c.GlobalScore).
				Float64("LocalWeight", c.LocalWeight).
				Msg("")
		}
	}

	log.Info().Int("Explanations", len(explanations)).Int("Instances", len(sample)).Msg("")
	return nil
}

func selectInstances(opts Options, meta *model.Metadata, records []*model.Record) ([]*model.Record, error) {
	if opts.InputFile != "" {
		_, sample, dataErrors, err := io.LoadData(io.DataParameters{
			DataFile:     opts.InputFile,
			TargetColumn: meta.Columns[meta.TargetColumn],
		}, meta)
		if err != nil {
			return nil, fmt.Errorf("error loading instances from %s: %w", opts.InputFile, err)
		}
		printDataErrors(dataErrors)
		return sample, nil
	}

	size := opts.SampleSize
	if size <= 0 {
		size = 50
	}
	ds := io.NewDataSet(records, rand.New(rand.NewSource(int64(opts.RandomSeed))))
	return ds.RandomSplit(size)[0].Records(), nil
}

// sortedLabels returns every target class name in deterministic order.
func sortedLabels(meta *model.Metadata) []string {
	labels := make([]string, 0, meta.TargetMap.Size())
	for label := range meta.TargetMap.NameToIndex {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
