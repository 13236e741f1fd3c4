package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"glime/pkg"
	"glime/pkg/lime"

	"github.com/spf13/cobra"
)

func ExplainCommand() *cobra.Command {

	var opts pkg.Options
	var configFile string

	var cmd = &cobra.Command{
		Use:   "explain -m modelFile -i corpusFile",
		Short: "Explains individual predictions of a trained model with sparse local surrogate models",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := opts.ApplyConfigFile(configFile); err != nil {
					return err
				}
			}
			return pkg.Explain(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ModelFile, "model", "m", "", "name of the trained model file")
	cmd.Flags().StringVarP(&opts.CorpusFile, "corpus", "i", "", "name of the training corpus used to fit the discretization scheme")
	cmd.Flags().StringVarP(&opts.InputFile, "input", "", "", "name of the file with instances to explain (optional, defaults to a random corpus sample)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "", "name of the per-instance explanation output file (optional)")
	cmd.Flags().StringVarP(&opts.ImportanceFile, "importance-file", "g", "", "name of a JSON file with global feature importances (optional)")
	cmd.Flags().StringVarP(&configFile, "config", "", "", "name of a YAML file overriding explanation options")

	cmd.Flags().IntVarP(&opts.NumPerturbations, "num-perturbations", "p", lime.DefaultNumPerturbations, "neighborhood sample size per explanation")
	cmd.Flags().IntVarP(&opts.NumFeatures, "num-features", "k", lime.DefaultNumFeatures, "number of features retained by the surrogate model")
	cmd.Flags().IntVarP(&opts.NumBins, "num-bins", "b", lime.DefaultNumBins, "number of quantile bins for continuous features")
	cmd.Flags().Float64VarP(&opts.KernelBandwidth, "kernel-bandwidth", "w", 0.0, "proximity kernel bandwidth (0 derives it from the feature count)")
	cmd.Flags().Uint64VarP(&opts.RandomSeed, "random-seed", "x", 42, "random seed")
	cmd.Flags().StringSliceVarP(&opts.Labels, "labels", "l", nil, "class labels to explain (defaults to all classes)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample-size", "s", 50, "number of corpus instances to explain when no input file is given")
	cmd.Flags().IntVarP(&opts.Parallelism, "parallelism", "j", 0, "maximum concurrent explanations (0 uses GOMAXPROCS)")

	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("corpus")

	return cmd
}

var logLevel string
var logFormat string

func main() {

	Main := &cobra.Command{Use: "glime", PersistentPreRun: setupLogging}

	Main.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "Logging level: info error or debug")
	Main.PersistentFlags().StringVarP(&logFormat, "log-format", "", "pretty", "Logging format: pretty or json")

	Main.AddCommand(ExplainCommand())

	if err := Main.Execute(); err != nil {
		panic(err)
	}
}

func setupLogging(cmd *cobra.Command, args []string) {

	switch logLevel {
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		panic("Invalid logging level specified")
	}

	switch logFormat {
	case "pretty":
		setupPrettyLogging()
	case "json":
	default:
		panic("Invalid log format specified")

	}

}

func setupPrettyLogging() {
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	writer.FormatFieldValue = func(i interface{}) string {
		switch v := i.(type) {
		case json.Number:
			val, _ := v.Float64()
			return fmt.Sprintf("%.3f", val)
		default:
			return fmt.Sprintf("%s", i)
		}

	}
	log.Logger = log.Output(writer)

}
