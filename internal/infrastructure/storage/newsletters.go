package storage

import (
	"context"
	"fmt"
	"time"
)

// Record appends an audit row for a rendered digest. The log is append-only;
// nothing in this package updates or deletes newsletter rows.
func (s *Store) Record(ctx context.Context, filePath string, postCount int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO newsletters (file_path, post_count, created_at)
		VALUES (?, ?, ?)
	`, filePath, postCount, timestamp(s.now()))
	if err != nil {
		return fmt.Errorf("record newsletter: %w", err)
	}
	return nil
}

// NewsletterRecord is one audit row of the digest log.
type NewsletterRecord struct {
	ID        int64
	FilePath  string
	PostCount int
	CreatedAt time.Time
}

// Newsletters returns the audit log, oldest first.
func (s *Store) Newsletters(ctx context.Context) ([]NewsletterRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_path, post_count, created_at
		FROM newsletters
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list newsletters: %w", err)
	}
	defer rows.Close()

	var records []NewsletterRecord
	for rows.Next() {
		var (
			rec       NewsletterRecord
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.FilePath, &rec.PostCount, &createdAt); err != nil {
			return nil, fmt.Errorf("list newsletters: scan: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list newsletters: iterate: %w", err)
	}

	return records, nil
}
