package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/smart-categorizer/internal/cli"
	"github.com/Veraticus/smart-categorizer/internal/common"
)

func correctCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct <description> <category>",
		Short: "Correct the category of a transaction",
		Long: `Record a correction so that the same transaction, and other transactions
from the same merchant, are categorized the same way from now on.

The category is given as "Category > Subcategory"; common aliases such as
"groceries" are accepted for the category name.`,
		Example: `  smartcat correct "XYZ TRADERS PVT LTD" "Shopping > Electronics" --id t-42`,
		Args:    cobra.ExactArgs(2),
		RunE:    runCorrect,
	}

	cmd.Flags().String("id", "", "transaction id being corrected")
	cmd.Flags().String("merchant", "", "merchant name, when known")
	cmd.Flags().String("was", "", "previous \"Category > Subcategory\"")

	return cmd
}

func runCorrect(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	merchantName, _ := cmd.Flags().GetString("merchant")
	was, _ := cmd.Flags().GetString("was")

	cat, sub, err := parseCategoryPath(args[1])
	if err != nil {
		return err
	}

	oldCategory := ""
	if was != "" {
		oldCategory, _, err = parseCategoryPath(was)
		if err != nil {
			return err
		}
	}

	p, _, closeFn, err := openPipeline(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	if err := p.CorrectTransaction(cmd.Context(), id, args[0], merchantName, oldCategory, cat, sub); err != nil {
		if errors.Is(err, common.ErrInvalidCategory) {
			return common.NewUserError("Unknown category, run 'smartcat taxonomy' for valid pairs", err)
		}
		return err
	}
	if resolvedCat, resolvedSub, err := p.Taxonomy().Resolve(cat, sub); err == nil {
		cat, sub = resolvedCat, resolvedSub
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded correction to %s > %s", cat, sub)))
	return nil
}
