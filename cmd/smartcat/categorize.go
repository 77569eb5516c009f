package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/smart-categorizer/internal/model"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize <description>",
		Short: "Categorize a single transaction",
		Long: `Categorize one transaction given on the command line.

When --category is set, the category decided by an external classifier is
used instead of the local cascade. Unknown categories fall back to local
categorization.`,
		Example: `  smartcat categorize "UPI-ZOMATO-ORDER-8812" --amount 450
  smartcat categorize "SHOP 42 MG ROAD" --amount 1200 --category "Shopping > Clothing" --confidence 0.8`,
		Args: cobra.ExactArgs(1),
		RunE: runCategorize,
	}

	cmd.Flags().Float64("amount", 0, "amount (positive debit, negative credit)")
	cmd.Flags().String("id", "", "transaction id (generated when empty)")
	cmd.Flags().String("date", "", "transaction date (YYYY-MM-DD)")
	cmd.Flags().String("category", "", "externally decided \"Category > Subcategory\"")
	cmd.Flags().Float64("confidence", 0.8, "confidence of the external category")
	cmd.Flags().Int("candidates", 0, "also print this many candidate categories")

	return cmd
}

func runCategorize(cmd *cobra.Command, args []string) error {
	amount, _ := cmd.Flags().GetFloat64("amount")
	id, _ := cmd.Flags().GetString("id")
	date, _ := cmd.Flags().GetString("date")
	external, _ := cmd.Flags().GetString("category")
	confidence, _ := cmd.Flags().GetFloat64("confidence")
	candidates, _ := cmd.Flags().GetInt("candidates")

	p, _, closeFn, err := openPipeline(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	txn := model.Transaction{
		ID:          id,
		Date:        date,
		Description: args[0],
		Amount:      amount,
	}

	var result model.ProcessedTransaction
	if external != "" {
		cat, sub, err := parseCategoryPath(external)
		if err != nil {
			return err
		}
		result = p.ProcessWithCategory(txn, cat, sub, confidence, model.MethodMLModel)
	} else {
		result = p.Process(txn)
	}

	if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if candidates > 0 {
		for _, c := range p.CandidateCategories(args[0], candidates) {
			fmt.Fprintln(cmd.ErrOrStderr(), c)
		}
	}
	return nil
}
