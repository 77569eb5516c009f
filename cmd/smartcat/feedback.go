package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/smart-categorizer/internal/cli"
)

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Manage recorded corrections",
	}
	cmd.AddCommand(pruneFeedbackCmd())
	return cmd
}

func pruneFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prune",
		Short:   "Delete corrections older than a cutoff",
		Example: `  smartcat feedback prune --older-than 2160h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			olderThan, _ := cmd.Flags().GetDuration("older-than")
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}

			p, _, closeFn, err := openPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			removed, err := p.PruneFeedback(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Removed %d corrections", removed)))
			return nil
		},
	}
	cmd.Flags().Duration("older-than", 90*24*time.Hour, "age of the oldest correction to keep")
	return cmd
}

func trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Retrain the classifier on the seed corpus and all corrections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, closeFn, err := openPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			start := time.Now()
			if err := p.Retrain(cmd.Context()); err != nil {
				return fmt.Errorf("failed to retrain: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Classifier retrained in %s", time.Since(start).Round(time.Millisecond))))
			return nil
		},
	}
}
