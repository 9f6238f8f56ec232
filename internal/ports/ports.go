package ports

import (
	"context"
	"io"
	"time"

	"github.com/AaronLPS/ai4news/internal/domain"
)

// TargetRegistry maintains the set of followed targets keyed by canonical URL.
type TargetRegistry interface {
	// Upsert creates the target or updates type/name in place, returning the
	// stable id either way. Safe to repeat with identical arguments.
	Upsert(ctx context.Context, url string, targetType domain.TargetType, name string) (int64, error)
	// Remove deletes the target and every post it owns as one atomic step.
	// Returns false when no such target exists.
	Remove(ctx context.Context, url string) (bool, error)
	// List returns all targets in insertion order.
	List(ctx context.Context) ([]domain.Target, error)
}

// PostStore persists posts with at-most-once semantics per post identity.
type PostStore interface {
	// Insert stores the post unless its identity already exists anywhere in
	// the store, in which case it reports OutcomeDuplicate and changes nothing.
	Insert(ctx context.Context, post domain.NewPost) (domain.InsertOutcome, error)
	// QueryRecent returns posts scraped within the window, newest first by
	// publish time, each joined with its owning target.
	QueryRecent(ctx context.Context, windowDays int) ([]domain.StoredPost, error)
}

// DigestLog is the append-only audit trail of rendered digests.
type DigestLog interface {
	Record(ctx context.Context, filePath string, postCount int) error
}

// Extractor turns feed markup from the extraction collaborator into candidate
// post records. Candidates may lack a resolvable identity.
type Extractor interface {
	Extract(r io.Reader) ([]domain.CandidatePost, error)
}

// Scheduler controls when the recurring ingest job executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
