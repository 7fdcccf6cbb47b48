package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pner/pkg"

	"github.com/spf13/cobra"
)

func TrainCommand() *cobra.Command {

	var trainFile string
	var devFile string
	var outputFile string
	var configFile string
	var noShuffle bool
	trainingParameters := pkg.DefaultTrainingParameters()

	var cmd = &cobra.Command{
		Use:   "train -i trainData -o outputFile [-d devData]",
		Short: "Trains a new tagger on the provided training data and saves the trained model",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := trainingParameters
			if configFile != "" {
				loaded, err := pkg.LoadTrainingParameters(configFile, pkg.DefaultTrainingParameters())
				if err != nil {
					return err
				}
				params = overrideParameters(cmd, loaded, trainingParameters)
			}
			if noShuffle {
				params.Shuffle = false
			}
			return pkg.Train(trainFile, devFile, outputFile, params)
		},
	}

	cmd.Flags().StringVarP(&trainFile, "train-file", "i", "", "name of train file")
	cmd.Flags().StringVarP(&devFile, "dev-file", "d", "", "name of development file evaluated after each epoch (optional)")
	cmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "name of the file to save model to.")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML file with training parameters; flags given on the command line take precedence")
	cmd.Flags().Float64VarP(&trainingParameters.LearningRate, "learning-rate", "l", trainingParameters.LearningRate, "learning rate")
	cmd.Flags().IntVarP(&trainingParameters.NumEpochs, "num-epochs", "n", trainingParameters.NumEpochs, "number of epochs to train")
	cmd.Flags().Uint64VarP(&trainingParameters.RndSeed, "random-seed", "x", trainingParameters.RndSeed, "random seed")
	cmd.Flags().BoolVarP(&noShuffle, "no-shuffle", "", false, "keep the training sentences in file order")

	_ = cmd.MarkFlagRequired("train-file")
	_ = cmd.MarkFlagRequired("output-file")

	return cmd
}

// overrideParameters applies the flags explicitly set on the command line on
// top of parameters loaded from a config file.
func overrideParameters(cmd *cobra.Command, loaded, flags pkg.TrainingParameters) pkg.TrainingParameters {
	if cmd.Flags().Changed("learning-rate") {
		loaded.LearningRate = flags.LearningRate
	}
	if cmd.Flags().Changed("num-epochs") {
		loaded.NumEpochs = flags.NumEpochs
	}
	if cmd.Flags().Changed("random-seed") {
		loaded.RndSeed = flags.RndSeed
	}
	return loaded
}

func TestCommand() *cobra.Command {
	var modelFile string
	var inputFile string
	var reportFile string

	var cmd = &cobra.Command{
		Use:   "test -m modelFile -i testFile [-o reportFile]",
		Short: "Tags the provided labeled data with the model and reports token and entity metrics",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pkg.Test(modelFile, inputFile, reportFile)
		},
	}

	cmd.Flags().StringVarP(&modelFile, "model", "m", "", "name of model to test")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "name of labeled data file")
	cmd.Flags().StringVarP(&reportFile, "output", "o", "", "name of report file (optional)")

	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func TagCommand() *cobra.Command {
	var modelFile string
	var inputFile string
	var outputFile string

	var cmd = &cobra.Command{
		Use:   "tag -m modelFile -i inputFile -o outputFile",
		Short: "Tags the provided data with the model and writes the predicted labels",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pkg.Tag(modelFile, inputFile, outputFile)
		},
	}

	cmd.Flags().StringVarP(&modelFile, "model", "m", "", "name of model")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "name of data file")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "name of output file")

	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

var logLevel string
var logFormat string

func main() {

	Main := &cobra.Command{Use: "pner", PersistentPreRunE: setupLogging}

	Main.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "Logging level: info error or debug")
	Main.PersistentFlags().StringVarP(&logFormat, "log-format", "", "pretty", "Logging format: pretty or json")

	Main.AddCommand(TrainCommand())
	Main.AddCommand(TestCommand())
	Main.AddCommand(TagCommand())

	if err := Main.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {

	switch logLevel {
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		return fmt.Errorf("invalid logging level %s", logLevel)
	}

	switch logFormat {
	case "pretty":
		setupPrettyLogging()
	case "json":
	default:
		return fmt.Errorf("invalid log format %s", logFormat)
	}
	return nil
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
