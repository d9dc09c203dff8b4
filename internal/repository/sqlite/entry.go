package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/sakif/phrasebook/internal/apperror"
	"github.com/sakif/phrasebook/internal/model"
	"github.com/sakif/phrasebook/internal/repository"
)

var _ repository.EntryRepository = (*DB)(nil)

const entryColumns = `id, phrase, translation, usage_context, pronunciation, audio_url, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*model.Entry, error) {
	var (
		e                           model.Entry
		usage, pronunciation, audio sql.NullString
	)
	if err := row.Scan(
		&e.ID, &e.Phrase, &e.Translation,
		&usage, &pronunciation, &audio,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.UsageContext = stringPtr(usage)
	e.Pronunciation = stringPtr(pronunciation)
	e.AudioURL = stringPtr(audio)
	return &e, nil
}

// Create inserts a new entry and fills in its ID and timestamps.
func (db *DB) Create(ctx context.Context, entry *model.Entry) error {
	now := db.now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO dictionary_entries
		   (phrase, translation, usage_context, pronunciation, audio_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Phrase,
		entry.Translation,
		nullString(entry.UsageContext),
		nullString(entry.Pronunciation),
		nullString(entry.AudioURL),
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading entry id: %w", err)
	}
	entry.ID = id

	return nil
}

// GetByID returns apperror.ErrNotFound when no entry has the given id.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.Entry, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM dictionary_entries WHERE id = ?`, id)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("dictionary entry", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting entry %d: %w", id, err)
	}

	return entry, nil
}

// List returns every entry in store order. The glossary is small, and search
// filters the full set in memory, so there is no pagination.
func (db *DB) List(ctx context.Context) ([]model.Entry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM dictionary_entries ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning entry row: %w", err)
		}
		entries = append(entries, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating entries: %w", err)
	}

	return entries, nil
}

// Update overwrites every mutable column of the entry. Partial updates are
// merged by the service before calling this.
func (db *DB) Update(ctx context.Context, entry *model.Entry) error {
	entry.UpdatedAt = db.now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE dictionary_entries
		 SET phrase = ?, translation = ?, usage_context = ?, pronunciation = ?, audio_url = ?, updated_at = ?
		 WHERE id = ?`,
		entry.Phrase,
		entry.Translation,
		nullString(entry.UsageContext),
		nullString(entry.Pronunciation),
		nullString(entry.AudioURL),
		entry.UpdatedAt,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating entry %d: %w", entry.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("dictionary entry", strconv.FormatInt(entry.ID, 10))
	}

	return nil
}

// Delete removes an entry. Same RowsAffected check as Update.
func (db *DB) Delete(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM dictionary_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting entry %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("dictionary entry", strconv.FormatInt(id, 10))
	}

	return nil
}

func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dictionary_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting entries: %w", err)
	}
	return n, nil
}
