package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/phrasebook/internal/apperror"
	"github.com/sakif/phrasebook/internal/model"
	"github.com/sakif/phrasebook/internal/repository"
)

var _ repository.SettingRepository = (*DB)(nil)

func scanSetting(row rowScanner) (*model.Setting, error) {
	var (
		s     model.Setting
		value sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Key, &value, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Value = stringPtr(value)
	return &s, nil
}

// ListSettings returns all settings ordered by key.
func (db *DB) ListSettings(ctx context.Context) ([]model.Setting, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, key, value, updated_at FROM site_settings ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing settings: %w", err)
	}
	defer rows.Close()

	settings := make([]model.Setting, 0)
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning setting row: %w", err)
		}
		settings = append(settings, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating settings: %w", err)
	}

	return settings, nil
}

// GetSetting returns apperror.ErrNotFound for an unknown key.
func (db *DB) GetSetting(ctx context.Context, key string) (*model.Setting, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, key, value, updated_at FROM site_settings WHERE key = ?`, key)

	s, err := scanSetting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("setting", key)
		}
		return nil, fmt.Errorf("sqlite: getting setting %q: %w", key, err)
	}
	return s, nil
}

// SetSetting upserts by key in a single statement: the row keeps its id and
// only value and updated_at change. Concurrent writers of the same key are
// last-commit-wins.
func (db *DB) SetSetting(ctx context.Context, key string, value *string) (*model.Setting, error) {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO site_settings (key, value, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, nullString(value), db.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: setting %q: %w", key, err)
	}

	return db.GetSetting(ctx, key)
}
