package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AaronLPS/ai4news/internal/domain"
)

// postedAtLayouts are the timestamp shapes LinkedIn markup has been seen to
// report. posted_at is source-reported free text, so parsing is best effort.
var postedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Insert stores a post under its resolved identity. If a post with the same
// identity already exists anywhere in the store the call is a no-op reporting
// OutcomeDuplicate; the existing row is never touched. Inserting against a
// target id that does not exist fails with domain.ErrTargetNotFound.
//
// The target check and the insert share one transaction, and the UNIQUE
// constraint on linkedin_id (via ON CONFLICT DO NOTHING plus RowsAffected)
// decides dedup, so repeated or concurrent submissions of one identity can
// never produce two rows.
func (s *Store) Insert(ctx context.Context, post domain.NewPost) (domain.InsertOutcome, error) {
	media := post.MediaURLs
	if media == nil {
		media = []string{}
	}
	mediaJSON, err := json.Marshal(media)
	if err != nil {
		return 0, fmt.Errorf("insert post: marshal media urls: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert post: begin tx: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM targets WHERE id = ?`, post.TargetID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("insert post %s: target id %d: %w", post.LinkedInID, post.TargetID, domain.ErrTargetNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("insert post: check target: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO posts (target_id, linkedin_id, author, text, url, media_urls, posted_at, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(linkedin_id) DO NOTHING
	`,
		post.TargetID,
		post.LinkedInID,
		post.Author,
		post.Text,
		post.URL,
		string(mediaJSON),
		post.PostedAt,
		timestamp(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert post: rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert post: commit: %w", err)
	}

	if affected == 0 {
		return domain.OutcomeDuplicate, nil
	}
	return domain.OutcomeInserted, nil
}

// QueryRecent returns posts scraped strictly after now minus windowDays,
// joined with their owning target and ordered by publish time descending.
//
// posted_at is free-form source text; values that fail to parse sort as the
// earliest possible time and therefore land at the end of the result. That is
// a deliberate compromise, not a bug.
func (s *Store) QueryRecent(ctx context.Context, windowDays int) ([]domain.StoredPost, error) {
	cutoff := timestamp(s.now().Add(-time.Duration(windowDays) * 24 * time.Hour))

	query, args, err := sq.Select(
		"p.id", "p.linkedin_id", "p.target_id", "p.author", "p.text", "p.url",
		"p.media_urls", "p.posted_at", "p.scraped_at",
		"t.name", "t.type", "t.url",
	).
		From("posts p").
		Join("targets t ON p.target_id = t.id").
		Where(sq.Gt{"p.scraped_at": cutoff}).
		OrderBy("p.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("query recent: build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var posts []domain.StoredPost
	for rows.Next() {
		post, err := scanStoredPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query recent: iterate: %w", err)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return parsePostedAt(posts[i].PostedAt).After(parsePostedAt(posts[j].PostedAt))
	})

	if posts == nil {
		posts = []domain.StoredPost{}
	}

	return posts, nil
}

func scanStoredPost(rows *sql.Rows) (domain.StoredPost, error) {
	var (
		post      domain.StoredPost
		mediaJSON string
		scrapedAt string
		typ       string
	)
	if err := rows.Scan(
		&post.ID, &post.LinkedInID, &post.TargetID, &post.Author, &post.Text, &post.URL,
		&mediaJSON, &post.PostedAt, &scrapedAt,
		&post.TargetName, &typ, &post.TargetURL,
	); err != nil {
		return domain.StoredPost{}, fmt.Errorf("query recent: scan: %w", err)
	}

	post.TargetType = domain.TargetType(typ)

	if err := json.Unmarshal([]byte(mediaJSON), &post.MediaURLs); err != nil {
		return domain.StoredPost{}, fmt.Errorf("query recent: decode media urls for %s: %w", post.LinkedInID, err)
	}

	parsed, err := time.Parse(time.RFC3339, scrapedAt)
	if err != nil {
		return domain.StoredPost{}, fmt.Errorf("query recent: parse scraped_at for %s: %w", post.LinkedInID, err)
	}
	post.ScrapedAt = parsed

	return post, nil
}

// parsePostedAt parses a source-reported timestamp, returning the zero time
// when no known layout matches.
func parsePostedAt(raw string) time.Time {
	for _, layout := range postedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
