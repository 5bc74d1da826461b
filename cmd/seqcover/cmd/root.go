// Package cmd provides CLI command implementations
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jkoedam/seqcover/config"
)

var (
	// Flags for match command
	rawFile    string
	identFile  string
	outputFile string
	outputFmt  string
)

var rootCmd = &cobra.Command{
	Use:   "seqcover",
	Short: "seqcover - sequence coverage for peptide-spectrum matches",
	Long: `seqcover scores how well identified peptides explain their MS2 spectra.

For every peptide-spectrum match in an mzIdentML file it predicts the
fragment ions of each backbone cleavage site and reports the percentage of
sites whose ions are observed in the matching spectrum of the mzML file.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults()
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVarP(&rawFile, "raw", "r", "", "Input mzML file (required)")
	matchCmd.Flags().StringVarP(&identFile, "ident", "i", "", "Input mzIdentML file (required)")
	matchCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output file (default: stdout)")
	matchCmd.Flags().StringVar(&outputFmt, "format", "tsv", "Output format: tsv or sqlite")

	matchCmd.Flags().StringSlice("ion-types", []string{"b", "y"}, "Ion series to predict (a,b,c,x,y,z)")
	matchCmd.Flags().StringSlice("neutral-losses", nil, "Neutral losses to predict (H2O, NH3)")
	matchCmd.Flags().String("tolerance", "20ppm", "Peak match tolerance, e.g. '20ppm' or '0.02Da'")
	matchCmd.Flags().Int("max-fragment-charge", 1, "Highest fragment charge state to predict")
	matchCmd.Flags().Float64("max-qvalue", 1.0, "Drop matches with a q-value above this")
	matchCmd.Flags().Int("workers", 0, "Worker goroutines (0 = one per CPU)")

	viper.BindPFlag("match.ion-types", matchCmd.Flags().Lookup("ion-types"))
	viper.BindPFlag("match.neutral-losses", matchCmd.Flags().Lookup("neutral-losses"))
	viper.BindPFlag("match.tolerance", matchCmd.Flags().Lookup("tolerance"))
	viper.BindPFlag("match.max-fragment-charge", matchCmd.Flags().Lookup("max-fragment-charge"))
	viper.BindPFlag("filter.max-qvalue", matchCmd.Flags().Lookup("max-qvalue"))
	viper.BindPFlag("run.workers", matchCmd.Flags().Lookup("workers"))

	matchCmd.MarkFlagRequired("raw")
	matchCmd.MarkFlagRequired("ident")
}

// initConfig loads an optional seqcover.yaml from the working directory.
// A missing file is fine; flags and defaults cover everything.
func initConfig() {
	viper.SetConfigName("seqcover")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: could not read config file: %v\n", err)
		}
	}
}
