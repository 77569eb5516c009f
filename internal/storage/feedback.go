package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/smart-categorizer/internal/model"
)

// LoadCorrections returns every stored fingerprint correction.
func (s *SQLiteStorage) LoadCorrections(ctx context.Context) ([]model.FeedbackCorrection, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, sample_text, category, subcategory, corrected_at, count
		FROM feedback_corrections
		ORDER BY corrected_at, fingerprint
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var corrections []model.FeedbackCorrection
	for rows.Next() {
		var c model.FeedbackCorrection
		if err := rows.Scan(&c.Fingerprint, &c.SampleText, &c.Category, &c.Subcategory, &c.CorrectedAt, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		corrections = append(corrections, c)
	}
	return corrections, rows.Err()
}

// SaveCorrection inserts or replaces the correction for its fingerprint.
func (s *SQLiteStorage) SaveCorrection(ctx context.Context, correction model.FeedbackCorrection) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCorrection(correction); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO feedback_corrections (fingerprint, sample_text, category, subcategory, corrected_at, count)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(fingerprint) DO UPDATE SET
				sample_text = excluded.sample_text,
				category = excluded.category,
				subcategory = excluded.subcategory,
				corrected_at = excluded.corrected_at,
				count = excluded.count
		`, correction.Fingerprint, correction.SampleText, correction.Category,
			correction.Subcategory, correction.CorrectedAt, correction.Count)
		if err != nil {
			return fmt.Errorf("failed to save correction: %w", err)
		}
		return nil
	})
}

// DeleteCorrectionsBefore removes corrections last seen before cutoff.
func (s *SQLiteStorage) DeleteCorrectionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var deleted int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM feedback_corrections WHERE corrected_at < ?`, cutoff)
		if err != nil {
			return fmt.Errorf("failed to prune corrections: %w", err)
		}
		deleted, err = result.RowsAffected()
		return err
	})
	return deleted, err
}

// LoadMerchantOverrides returns every stored merchant override.
func (s *SQLiteStorage) LoadMerchantOverrides(ctx context.Context) ([]model.MerchantOverride, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT merchant, category, subcategory, updated_at
		FROM merchant_overrides
		ORDER BY merchant
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var overrides []model.MerchantOverride
	for rows.Next() {
		var o model.MerchantOverride
		if err := rows.Scan(&o.Merchant, &o.Category, &o.Subcategory, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan merchant override: %w", err)
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

// SaveMerchantOverride inserts or replaces the override for a merchant.
func (s *SQLiteStorage) SaveMerchantOverride(ctx context.Context, override model.MerchantOverride) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOverride(override); err != nil {
		return err
	}
	if override.UpdatedAt.IsZero() {
		override.UpdatedAt = time.Now()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO merchant_overrides (merchant, category, subcategory, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(merchant) DO UPDATE SET
				category = excluded.category,
				subcategory = excluded.subcategory,
				updated_at = excluded.updated_at
		`, override.Merchant, override.Category, override.Subcategory, override.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save merchant override: %w", err)
		}
		return nil
	})
}
