package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/AaronLPS/ai4news/internal/config"
	"github.com/AaronLPS/ai4news/internal/domain"
	"github.com/AaronLPS/ai4news/internal/identity"
	"github.com/AaronLPS/ai4news/internal/ports"
)

// IngestDeps wires the driven adapters into the ingest workflow.
type IngestDeps struct {
	Registry  ports.TargetRegistry
	Posts     ports.PostStore
	Extractor ports.Extractor
	Logger    *slog.Logger
}

// Ingester turns extraction-agent output into stored posts.
type Ingester struct {
	registry  ports.TargetRegistry
	posts     ports.PostStore
	extractor ports.Extractor
	logger    *slog.Logger
}

// NewIngester constructs the ingest orchestration component.
func NewIngester(deps IngestDeps) *Ingester {
	return &Ingester{
		registry:  deps.Registry,
		posts:     deps.Posts,
		extractor: deps.Extractor,
		logger:    deps.Logger,
	}
}

// IngestResult reports what one ingest run did. Errors holds per-item
// failures; the run as a whole still succeeds when some items failed.
type IngestResult struct {
	Scraped int      `json:"scraped"`
	New     int      `json:"new"`
	Errors  []string `json:"errors"`
}

func (r *IngestResult) merge(other IngestResult) {
	r.Scraped += other.Scraped
	r.New += other.New
	r.Errors = append(r.Errors, other.Errors...)
}

// IngestTarget extracts candidate posts from markup belonging to one target
// and stores each under its resolved identity. Candidates with no resolvable
// identity are discarded; they are never stored under a synthetic key. A
// failing insert is recorded in the result's error list and the batch
// continues.
func (i *Ingester) IngestTarget(ctx context.Context, entry config.TargetEntry, markup io.Reader) (IngestResult, error) {
	var result IngestResult

	targetType, err := domain.ParseTargetType(entry.Type)
	if err != nil {
		return result, err
	}

	targetID, err := i.registry.Upsert(ctx, entry.URL, targetType, entry.Name)
	if err != nil {
		return result, fmt.Errorf("ingest %s: %w", entry.URL, err)
	}

	candidates, err := i.extractor.Extract(markup)
	if err != nil {
		return result, fmt.Errorf("ingest %s: %w", entry.URL, err)
	}

	for _, candidate := range candidates {
		linkedinID, ok := identity.ExtractPostID(candidate.DataURN, candidate.Permalink)
		if !ok {
			i.debug("discarding candidate without identity", "target", entry.URL, "author", candidate.Author)
			continue
		}
		result.Scraped++

		postURL := candidate.Permalink
		if postURL == "" {
			postURL = identity.PermalinkFor(linkedinID)
		}

		outcome, err := i.posts.Insert(ctx, domain.NewPost{
			TargetID:   targetID,
			LinkedInID: linkedinID,
			Author:     candidate.Author,
			Text:       candidate.Text,
			URL:        postURL,
			MediaURLs:  candidate.MediaURLs,
			PostedAt:   candidate.PostedAt,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("post %s: %v", linkedinID, err))
			continue
		}
		if outcome == domain.OutcomeInserted {
			result.New++
		}
	}

	i.info("ingested target", "target", entry.URL, "scraped", result.Scraped, "new", result.New, "errors", len(result.Errors))
	return result, nil
}

// spoolEnvelope is the file format the extraction agent drops into the spool
// directory: one scraped feed per file, attributed to its target URL.
type spoolEnvelope struct {
	TargetURL string `json:"target_url"`
	HTML      string `json:"html"`
}

// IngestSpool consumes every *.json envelope in the spool directory. Each
// envelope is attributed to a configured target by normalized URL; envelopes
// for unknown targets and unreadable files land in the error list while the
// rest of the batch proceeds. Successfully ingested files are renamed with a
// .done suffix (re-ingesting one would be harmless, dedup makes it a no-op,
// but the rename keeps the spool tidy).
func (i *Ingester) IngestSpool(ctx context.Context, spoolDir string, targets []config.TargetEntry) (IngestResult, error) {
	var result IngestResult

	byURL := make(map[string]config.TargetEntry, len(targets))
	for _, entry := range targets {
		byURL[identity.NormalizeTargetURL(entry.URL)] = entry
	}

	files, err := filepath.Glob(filepath.Join(spoolDir, "*.json"))
	if err != nil {
		return result, fmt.Errorf("ingest spool: %w", err)
	}

	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file, err))
			continue
		}

		var envelope spoolEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file, err))
			continue
		}

		entry, ok := byURL[identity.NormalizeTargetURL(envelope.TargetURL)]
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: target %s is not configured", file, envelope.TargetURL))
			continue
		}

		targetResult, err := i.IngestTarget(ctx, entry, strings.NewReader(envelope.HTML))
		result.merge(targetResult)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file, err))
			continue
		}

		if err := os.Rename(file, file+".done"); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: mark done: %v", file, err))
		}
	}

	return result, nil
}

func (i *Ingester) debug(msg string, args ...any) {
	if i.logger != nil {
		i.logger.Debug(msg, args...)
	}
}

func (i *Ingester) info(msg string, args ...any) {
	if i.logger != nil {
		i.logger.Info(msg, args...)
	}
}
