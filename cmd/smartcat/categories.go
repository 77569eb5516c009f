package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/smart-categorizer/internal/cli"
	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/model"
	"github.com/Veraticus/smart-categorizer/internal/pattern"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage custom categories",
		Long: `List, create, update and delete custom categories. Custom categories tag
transactions matching their rules without changing the base category.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(createCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(budgetCategoryCmd())
	cmd.AddCommand(addRuleCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List custom categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			p, _, closeFn, err := openPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			categories := p.ListCustomCategories()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), categories)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCustomCategories(categories))
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print categories as JSON")
	return cmd
}

func createCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a custom category",
		Long: `Create a custom category. Rules are given as kind=value, for example
keyword=mehendi, merchant=GoDaddy, amount_range=1000-5000, day_of_week=saturday
or original_category=Shopping.`,
		Example: `  smartcat categories create "Wedding Fund" --icon 💍 --budget 500000 \
    --rule keyword=wedding --rule merchant=WeddingWire --tag wedding`,
		Args: cobra.ExactArgs(1),
		RunE: runCreateCategory,
	}

	cmd.Flags().String("description", "", "category description")
	cmd.Flags().String("color", "", "hex color such as #FF69B4")
	cmd.Flags().String("icon", "", "icon shown next to the category")
	cmd.Flags().String("parent", "", "base category this one refines")
	cmd.Flags().Float64("budget", 0, "budget limit (0 for none)")
	cmd.Flags().StringSlice("tag", nil, "tag added to matching transactions (repeatable)")
	cmd.Flags().StringArray("rule", nil, "rule as kind=value (repeatable)")
	cmd.Flags().Int("priority", 0, "priority for every rule (lower runs first)")

	return cmd
}

func runCreateCategory(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")
	color, _ := cmd.Flags().GetString("color")
	icon, _ := cmd.Flags().GetString("icon")
	parent, _ := cmd.Flags().GetString("parent")
	budget, _ := cmd.Flags().GetFloat64("budget")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	rawRules, _ := cmd.Flags().GetStringArray("rule")
	priority, _ := cmd.Flags().GetInt("priority")

	spec := pattern.CategorySpec{
		Name:           args[0],
		Description:    description,
		Color:          color,
		Icon:           icon,
		ParentCategory: parent,
		Tags:           tags,
	}
	if cmd.Flags().Changed("budget") {
		spec.BudgetLimit = &budget
	}
	for _, raw := range rawRules {
		cond, err := parseRule(raw)
		if err != nil {
			return err
		}
		spec.Rules = append(spec.Rules, pattern.RuleSpec{Condition: cond, Priority: priority})
	}

	p, _, closeFn, err := openPipeline(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	created, err := p.CreateCustomCategory(cmd.Context(), spec)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s %s (%s)", created.Icon, created.Name, created.ID)))
	return nil
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, closeFn, err := openPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := p.DeleteCustomCategory(cmd.Context(), args[0]); err != nil {
				return notFound(err, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+args[0]))
			return nil
		},
	}
}

func budgetCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budget <id> <amount|none>",
		Short: "Set or clear a custom category budget",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := parseBudget(args[1])
			if err != nil {
				return err
			}

			p, _, closeFn, err := openPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := p.UpdateCustomCategoryBudget(cmd.Context(), args[0], limit); err != nil {
				return notFound(err, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Updated budget for "+args[0]))
			return nil
		},
	}
}

func addRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add-rule <id> <kind=value>",
		Short:   "Add a rule to a custom category",
		Example: `  smartcat categories add-rule 3f2c... merchant=Hostinger --priority 1 --exclusive`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, _ := cmd.Flags().GetInt("priority")
			exclusive, _ := cmd.Flags().GetBool("exclusive")

			cond, err := parseRule(args[1])
			if err != nil {
				return err
			}

			p, _, closeFn, err := openPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			updated, err := p.AddCustomCategoryRule(cmd.Context(), args[0], pattern.RuleSpec{
				Condition: cond,
				Priority:  priority,
				Exclusive: exclusive,
			})
			if err != nil {
				return notFound(err, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("%s now has %d rules", updated.Name, len(updated.Rules))))
			return nil
		},
	}
	cmd.Flags().Int("priority", 0, "rule priority (lower runs first)")
	cmd.Flags().Bool("exclusive", false, "stop evaluating further rules when this one matches")
	return cmd
}

func notFound(err error, id string) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("No custom category %q, see 'smartcat categories list'", id), err)
	}
	return err
}

// parseRule parses "kind=value" into a rule condition.
func parseRule(raw string) (model.Condition, error) {
	kind, value, ok := strings.Cut(raw, "=")
	if !ok {
		return nil, fmt.Errorf("rule %q must be kind=value", raw)
	}
	return pattern.ParseCondition(model.RuleKind(strings.TrimSpace(kind)), value)
}

func parseBudget(raw string) (*float64, error) {
	if strings.EqualFold(raw, "none") {
		return nil, nil
	}
	limit, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("budget must be a number or none: %w", err)
	}
	return &limit, nil
}
