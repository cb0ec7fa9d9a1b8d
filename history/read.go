package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get for an unknown record id.
var ErrNotFound = errors.New("history: record not found")

// Record is one stored invocation.
type Record struct {
	ID        string
	Schema    string
	Rendered  string
	ExitCode  int
	Stdout    string
	Stderr    string
	CreatedAt time.Time
}

// List returns the most recent records, newest first. A limit of zero or
// less means no limit.
//
// Returns an empty slice (not nil) when the log is empty.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, schema_name, rendered, exit_code, stdout, stderr, created_at
		FROM invocations
		ORDER BY created_at DESC, id COLLATE BINARY DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}

	return records, nil
}

// Get returns the record stored under id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, schema_name, rendered, exit_code, stdout, stderr, created_at
		FROM invocations
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var createdAt string
	err := row.Scan(&rec.ID, &rec.Schema, &rec.Rendered, &rec.ExitCode, &rec.Stdout, &rec.Stderr, &createdAt)
	if err != nil {
		return Record{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = ts

	return rec, nil
}
