package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/smart-categorizer/internal/cli"
	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/model"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Categorize a batch of transactions",
		Long: `Read transactions as a JSON array or JSON lines from a file (or stdin),
categorize and enrich each one, and write the processed transactions as JSON.

Each input object needs a description and an amount. Positive amounts are
debits, negative amounts are credits.`,
		Example: `  smartcat process statement.json --summary
  cat statement.jsonl | smartcat process --format table`,
		Args: cobra.MaximumNArgs(1),
		RunE: runProcess,
	}

	cmd.Flags().StringP("output", "o", "", "write JSON results to this file instead of stdout")
	cmd.Flags().String("format", "json", "output format (json, table)")
	cmd.Flags().Bool("summary", false, "print a summary report to stderr")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")
	cmd.Flags().Int("workers", 0, "concurrent workers (default from config)")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	showSummary, _ := cmd.Flags().GetBool("summary")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	workers, _ := cmd.Flags().GetInt("workers")

	if format != "json" && format != "table" {
		return fmt.Errorf("unknown format %q", format)
	}

	inputPath := ""
	if len(args) == 1 {
		inputPath = args[0]
	}
	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	txns, err := cli.ReadTransactions(in)
	_ = in.Close()
	if err != nil {
		return common.NewUserError("Could not read transactions", err)
	}

	if workers > 0 {
		viper.Set("pipeline.workers", workers)
	}
	p, cfg, closeFn, err := openPipeline(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	stderr := cmd.ErrOrStderr()
	handler := cli.NewInterruptHandler(stderr)
	ctx, stop := handler.HandleInterrupts(cmd.Context(), len(txns))
	defer stop()

	bar := newProgressBar(stderr, len(txns), noProgress)
	start := time.Now()

	results, err := p.ProcessBatch(ctx, txns, func() {
		handler.Progress()
		_ = bar.Add(1)
	})
	if err != nil {
		if handler.WasInterrupted() {
			return fmt.Errorf("processing canceled: %w", err)
		}
		return err
	}

	slog.Info("Processed transactions",
		"count", len(results),
		"workers", cfg.Workers,
		"duration", time.Since(start).Round(time.Millisecond))

	if err := writeResults(cmd.OutOrStdout(), outputPath, format, results); err != nil {
		return err
	}

	if showSummary {
		fmt.Fprintln(stderr, cli.RenderSummary(p.Summary(results)))
	}
	return nil
}

func newProgressBar(w io.Writer, total int, disabled bool) *progressbar.ProgressBar {
	if disabled {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Categorizing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}

func writeResults(stdout io.Writer, path, format string, results []model.ProcessedTransaction) error {
	w := stdout
	if path != "" {
		f, err := os.Create(path) //nolint:gosec // user supplied output file
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Warn("Failed to close output file", "error", err)
			}
		}()
		w = f
	}

	if format == "table" {
		_, err := fmt.Fprintln(w, cli.RenderTransactions(results))
		return err
	}
	if err := writeJSON(w, results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}
