package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AaronLPS/ai4news/internal/domain"
	"github.com/AaronLPS/ai4news/internal/identity"
)

// Upsert looks the target up by normalized URL, updating type and name in
// place when it exists and creating it otherwise. The returned id is stable
// for the target's lifetime. Runs in one transaction so a repeated call can
// never create a second row for the same URL.
func (s *Store) Upsert(ctx context.Context, url string, targetType domain.TargetType, name string) (int64, error) {
	if _, err := domain.ParseTargetType(string(targetType)); err != nil {
		return 0, err
	}
	url = identity.NormalizeTargetURL(url)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("upsert target: begin tx: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM targets WHERE url = ?`, url).Scan(&id)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx,
			`UPDATE targets SET type = ?, name = ? WHERE id = ?`,
			string(targetType), name, id,
		); err != nil {
			return 0, fmt.Errorf("upsert target: update: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		result, err := tx.ExecContext(ctx,
			`INSERT INTO targets (url, type, name, created_at) VALUES (?, ?, ?, ?)`,
			url, string(targetType), name, timestamp(s.now()),
		)
		if err != nil {
			return 0, fmt.Errorf("upsert target: insert: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("upsert target: last insert id: %w", err)
		}
	default:
		return 0, fmt.Errorf("upsert target: lookup: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("upsert target: commit: %w", err)
	}

	return id, nil
}

// Remove deletes the target with the given URL and cascades to every post it
// owns, atomically. Returns false when the target does not exist.
func (s *Store) Remove(ctx context.Context, url string) (bool, error) {
	url = identity.NormalizeTargetURL(url)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("remove target: begin tx: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM targets WHERE url = ?`, url).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove target: lookup: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE target_id = ?`, id); err != nil {
		return false, fmt.Errorf("remove target: delete posts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM targets WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("remove target: delete target: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("remove target: commit: %w", err)
	}

	return true, nil
}

// List returns every target in insertion order.
func (s *Store) List(ctx context.Context) ([]domain.Target, error) {
	query, args, err := sq.Select("id", "url", "type", "name", "created_at").
		From("targets").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list targets: build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list targets: query: %w", err)
	}
	defer rows.Close()

	var targets []domain.Target
	for rows.Next() {
		var (
			t         domain.Target
			typ       string
			createdAt string
		)
		if err := rows.Scan(&t.ID, &t.URL, &typ, &t.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("list targets: scan: %w", err)
		}
		t.Type = domain.TargetType(typ)
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		targets = append(targets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list targets: iterate: %w", err)
	}

	if targets == nil {
		targets = []domain.Target{}
	}

	return targets, nil
}
