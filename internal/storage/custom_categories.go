package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/model"
)

const customCategoryColumns = `id, position, name, description, color, icon, parent_category,
	budget_limit, tags, is_active, created_at, updated_at`

// ListCustomCategories returns all custom categories in creation order.
func (s *SQLiteStorage) ListCustomCategories(ctx context.Context) ([]model.CustomCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+customCategoryColumns+` FROM custom_categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom categories: %w", err)
	}

	var categories []model.CustomCategory
	for rows.Next() {
		cat, scanErr := scanCustomCategory(rows)
		if scanErr != nil {
			_ = rows.Close()
			return nil, scanErr
		}
		categories = append(categories, *cat)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to iterate custom categories: %w", err)
	}
	_ = rows.Close()

	for i := range categories {
		rules, err := s.loadRules(ctx, s.db, categories[i].ID)
		if err != nil {
			return nil, err
		}
		categories[i].Rules = rules
	}
	return categories, nil
}

// GetCustomCategory returns a single custom category with its rules.
func (s *SQLiteStorage) GetCustomCategory(ctx context.Context, id string) (*model.CustomCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+customCategoryColumns+` FROM custom_categories WHERE id = ?`, id)
	cat, err := scanCustomCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("custom category %q: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rules, err := s.loadRules(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	cat.Rules = rules
	return cat, nil
}

// SaveCustomCategory inserts or replaces a category and its rule list.
// A zero Position is assigned the next creation-order slot.
func (s *SQLiteStorage) SaveCustomCategory(ctx context.Context, category *model.CustomCategory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCustomCategory(category); err != nil {
		return err
	}

	tags, err := json.Marshal(nonNilTags(category.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	now := time.Now()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	if category.UpdatedAt.IsZero() {
		category.UpdatedAt = category.CreatedAt
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if category.Position == 0 {
			position, err := s.positionFor(ctx, tx, category.ID)
			if err != nil {
				return err
			}
			category.Position = position
		}

		var budget sql.NullFloat64
		if category.BudgetLimit != nil {
			budget = sql.NullFloat64{Float64: *category.BudgetLimit, Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO custom_categories (`+customCategoryColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				color = excluded.color,
				icon = excluded.icon,
				parent_category = excluded.parent_category,
				budget_limit = excluded.budget_limit,
				tags = excluded.tags,
				is_active = excluded.is_active,
				updated_at = excluded.updated_at
		`, category.ID, category.Position, category.Name, category.Description, category.Color,
			category.Icon, category.ParentCategory, budget, string(tags), category.IsActive,
			category.CreatedAt, category.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save custom category: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM custom_category_rules WHERE category_id = ?`, category.ID); err != nil {
			return fmt.Errorf("failed to clear custom category rules: %w", err)
		}

		for i, rule := range category.Rules {
			data, err := json.Marshal(rule)
			if err != nil {
				return fmt.Errorf("failed to encode rule %q: %w", rule.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO custom_category_rules (category_id, ordinal, rule) VALUES (?, ?, ?)
			`, category.ID, i, string(data)); err != nil {
				return fmt.Errorf("failed to save rule %q: %w", rule.ID, err)
			}
		}
		return nil
	})
}

// DeleteCustomCategory removes a category and its rules.
func (s *SQLiteStorage) DeleteCustomCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM custom_category_rules WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete custom category rules: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM custom_categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete custom category: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check deleted rows: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("custom category %q: %w", id, common.ErrNotFound)
		}
		return nil
	})
}

// positionFor keeps an existing category's slot, or allocates the next one.
func (s *SQLiteStorage) positionFor(ctx context.Context, q queryable, id string) (int64, error) {
	var position int64
	err := q.QueryRowContext(ctx, `SELECT position FROM custom_categories WHERE id = ?`, id).Scan(&position)
	if err == nil {
		return position, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up category position: %w", err)
	}

	if err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM custom_categories`).Scan(&position); err != nil {
		return 0, fmt.Errorf("failed to allocate category position: %w", err)
	}
	return position, nil
}

func (s *SQLiteStorage) loadRules(ctx context.Context, q queryable, categoryID string) ([]model.TagRule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT rule FROM custom_category_rules WHERE category_id = ? ORDER BY ordinal
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.TagRule
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		var rule model.TagRule
		if err := json.Unmarshal([]byte(data), &rule); err != nil {
			return nil, fmt.Errorf("failed to decode rule for %q: %w", categoryID, err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomCategory(row rowScanner) (*model.CustomCategory, error) {
	var (
		cat    model.CustomCategory
		budget sql.NullFloat64
		tags   string
	)
	err := row.Scan(&cat.ID, &cat.Position, &cat.Name, &cat.Description, &cat.Color, &cat.Icon,
		&cat.ParentCategory, &budget, &tags, &cat.IsActive, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan custom category: %w", err)
	}

	if budget.Valid {
		limit := budget.Float64
		cat.BudgetLimit = &limit
	}
	if err := json.Unmarshal([]byte(tags), &cat.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags for %q: %w", cat.ID, err)
	}
	return &cat, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
