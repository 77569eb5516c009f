package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/smart-categorizer/internal/common"
)

// LoadModel returns the serialized classifier stored under name.
func (s *SQLiteStorage) LoadModel(ctx context.Context, name string) ([]byte, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM classifier_models WHERE name = ?`, name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("classifier model %q: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load classifier model: %w", err)
	}
	return blob, nil
}

// SaveModel atomically replaces the serialized classifier stored under name.
func (s *SQLiteStorage) SaveModel(ctx context.Context, name string, blob []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}
	if len(blob) == 0 {
		return fmt.Errorf("%w: blob", ErrNilParameter)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO classifier_models (name, blob, trained_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(name) DO UPDATE SET
				blob = excluded.blob,
				trained_at = excluded.trained_at
		`, name, blob)
		if err != nil {
			return fmt.Errorf("failed to save classifier model: %w", err)
		}
		return nil
	})
}
