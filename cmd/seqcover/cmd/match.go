package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jkoedam/seqcover/config"
	"github.com/jkoedam/seqcover/internal/cover"
	"github.com/jkoedam/seqcover/internal/mzidentml"
	"github.com/jkoedam/seqcover/internal/mzml"
	"github.com/jkoedam/seqcover/internal/report"
	"github.com/jkoedam/seqcover/internal/score"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Compute sequence coverage for all identifications",
	Long: `Match the identifications of an mzIdentML file against the MS2 spectra of
an mzML file and report the sequence coverage of each peptide-spectrum match.

Examples:
  # Default b/y ions at 20 ppm, results to stdout
  seqcover match --raw run01.mzML --ident run01.mzid

  # ETD data with wider tolerance, write a SQLite database
  seqcover match --raw run01.mzML --ident run01.mzid \
    --ion-types c,z --tolerance 0.02Da --format sqlite --out run01.db`,
	RunE: runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	if outputFmt != "tsv" && outputFmt != "sqlite" {
		return fmt.Errorf("invalid output format %q, must be tsv or sqlite", outputFmt)
	}
	if outputFmt == "sqlite" && outputFile == "" {
		return fmt.Errorf("sqlite output requires --out")
	}

	scheme, err := cfg.Match.Scheme()
	if err != nil {
		return err
	}
	tol, err := cfg.Match.MassTolerance()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, err := mzml.Open(rawFile)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rawFile, err)
	}
	defer raw.Close()

	matches, err := cover.Process(ctx, raw, mzidentml.File{Path: identFile}, cover.Config{
		Provider: scheme,
		Scorer:   score.Correlator{Tol: tol},
		Workers:  cfg.Run.Workers,
		Progress: printProgress,
	})
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "interrupted, no results written")
		return nil
	}

	matches = matches.FilterQValue(cfg.Filter.MaxQValue)

	if outputFmt == "sqlite" {
		w, err := report.NewSQLiteWriter(outputFile)
		if err != nil {
			return err
		}
		if err := w.WriteMatches(matches); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	}

	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return report.WriteTSV(out, matches)
}

func printProgress(percent float64, message string) {
	fmt.Fprintf(os.Stderr, "\r%-30s %3.0f%%", message, percent)
	if percent >= 100 {
		fmt.Fprintln(os.Stderr)
	}
}
