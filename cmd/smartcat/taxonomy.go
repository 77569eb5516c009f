package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/smart-categorizer/internal/cli"
	"github.com/Veraticus/smart-categorizer/internal/taxonomy"
)

func taxonomyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "Show the category taxonomy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := taxonomy.Default()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, category := range reg.Categories() {
				fmt.Fprintln(out, cli.TitleStyle.UnsetMargins().Render(category))
				fmt.Fprintln(out, cli.SubtleStyle.Render("  "+strings.Join(reg.Subcategories(category), ", ")))
			}
			return nil
		},
	}
}
