package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AaronLPS/ai4news/internal/newsletter"
	"github.com/AaronLPS/ai4news/internal/ports"
)

// Annotation is the caller-supplied enrichment for one stored post: the AI
// summary and, for non-English posts, an optional translation.
type Annotation struct {
	LinkedInID  string `json:"linkedin_id"`
	Summary     string `json:"summary"`
	Translation string `json:"translation,omitempty"`
}

// DigestWriter renders a digest artifact and returns its location.
type DigestWriter interface {
	Write(posts []newsletter.Post) (string, error)
}

// DigestDeps wires the digest workflow.
type DigestDeps struct {
	Posts  ports.PostStore
	Writer DigestWriter
	Log    ports.DigestLog
	Logger *slog.Logger
}

// Digester composes recent posts and annotations into a rendered digest.
type Digester struct {
	posts  ports.PostStore
	writer DigestWriter
	log    ports.DigestLog
	logger *slog.Logger
}

// NewDigester constructs the digest orchestration component.
func NewDigester(deps DigestDeps) *Digester {
	return &Digester{
		posts:  deps.Posts,
		writer: deps.Writer,
		log:    deps.Log,
		logger: deps.Logger,
	}
}

// DigestResult reports a composed digest. AuditWarning is set when the render
// succeeded but the audit record could not be written; that never fails the
// compose itself.
type DigestResult struct {
	Path         string `json:"path"`
	PostCount    int    `json:"post_count"`
	AuditWarning string `json:"audit_warning,omitempty"`
}

// Compose pulls posts from the window, attaches annotations by post identity,
// writes the digest file, and appends the audit record.
func (d *Digester) Compose(ctx context.Context, sinceDays int, annotations []Annotation) (DigestResult, error) {
	stored, err := d.posts.QueryRecent(ctx, sinceDays)
	if err != nil {
		return DigestResult{}, fmt.Errorf("compose digest: %w", err)
	}

	byID := make(map[string]Annotation, len(annotations))
	for _, a := range annotations {
		byID[a.LinkedInID] = a
	}

	posts := make([]newsletter.Post, 0, len(stored))
	for _, p := range stored {
		a := byID[p.LinkedInID]
		posts = append(posts, newsletter.Post{
			Author:      p.Author,
			TargetName:  p.TargetName,
			Text:        p.Text,
			Summary:     a.Summary,
			Translation: a.Translation,
			URL:         p.URL,
			MediaURLs:   p.MediaURLs,
			PostedAt:    p.PostedAt,
		})
	}

	path, err := d.writer.Write(posts)
	if err != nil {
		return DigestResult{}, fmt.Errorf("compose digest: %w", err)
	}

	result := DigestResult{Path: path, PostCount: len(posts)}

	if err := d.log.Record(ctx, path, len(posts)); err != nil {
		// Rendering succeeded; bookkeeping did not. Surface, don't escalate.
		result.AuditWarning = fmt.Sprintf("digest rendered but audit record failed: %v", err)
		d.warn("audit record failed", "path", path, "error", err)
	}

	d.info("composed digest", "path", path, "posts", len(posts))
	return result, nil
}

func (d *Digester) warn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}

func (d *Digester) info(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Info(msg, args...)
	}
}
