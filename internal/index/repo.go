package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/gistnote/internal/apperr"
	"github.com/starford/gistnote/internal/models"
)

const defaultHistoryLimit = 50

// RecordPublication appends one create/update to the history.
func (db *DB) RecordPublication(ctx context.Context, p models.Publication) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO publications (command, path, gist_id, gist_url, checksum, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Command, p.Path, p.GistID, p.GistURL, p.Checksum, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("index: record publication: %w", err)
	}
	return nil
}

// UpsertTracked inserts or replaces the ledger row for a tracked note.
func (db *DB) UpsertTracked(ctx context.Context, n models.TrackedNote) error {
	if n.PublishedAt.IsZero() {
		n.PublishedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO tracked (path, gist_id, gist_url, checksum, published_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			gist_id      = excluded.gist_id,
			gist_url     = excluded.gist_url,
			checksum     = excluded.checksum,
			published_at = excluded.published_at
	`, n.Path, n.GistID, n.GistURL, n.Checksum, n.PublishedAt)
	if err != nil {
		return fmt.Errorf("index: upsert tracked: %w", err)
	}
	return nil
}

// DeleteTracked removes the ledger row for path. History is kept.
func (db *DB) DeleteTracked(ctx context.Context, path string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM tracked WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete tracked: %w", err)
	}
	return nil
}

// GetTracked returns the ledger row for path, or apperr.ErrNotFound.
func (db *DB) GetTracked(ctx context.Context, path string) (*models.TrackedNote, error) {
	var n models.TrackedNote
	err := db.conn.QueryRowContext(ctx, `
		SELECT path, gist_id, gist_url, checksum, published_at
		FROM tracked WHERE path = ?
	`, path).Scan(&n.Path, &n.GistID, &n.GistURL, &n.Checksum, &n.PublishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get tracked: %w", err)
	}
	return &n, nil
}

// ListTracked returns every tracked note, most recently published first.
func (db *DB) ListTracked(ctx context.Context) ([]models.TrackedNote, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT path, gist_id, gist_url, checksum, published_at
		FROM tracked ORDER BY published_at DESC, path ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: list tracked: %w", err)
	}
	defer rows.Close()

	var out []models.TrackedNote
	for rows.Next() {
		var n models.TrackedNote
		if err := rows.Scan(&n.Path, &n.GistID, &n.GistURL, &n.Checksum, &n.PublishedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ListPublications returns the newest publications, optionally for one path.
// A non-positive limit uses the default.
func (db *DB) ListPublications(ctx context.Context, path string, limit int) ([]models.Publication, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	query := `SELECT id, command, path, gist_id, gist_url, checksum, created_at FROM publications`
	args := []any{}
	if path != "" {
		query += ` WHERE path = ?`
		args = append(args, path)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list publications: %w", err)
	}
	defer rows.Close()

	var out []models.Publication
	for rows.Next() {
		var p models.Publication
		if err := rows.Scan(&p.ID, &p.Command, &p.Path, &p.GistID, &p.GistURL, &p.Checksum, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AllChecksums returns path → last published checksum for every tracked note.
func (db *DB) AllChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path, checksum FROM tracked`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
