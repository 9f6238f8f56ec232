package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/AaronLPS/ai4news/internal/config"
	"github.com/AaronLPS/ai4news/internal/domain"
	"github.com/AaronLPS/ai4news/internal/identity"
	"github.com/AaronLPS/ai4news/internal/ports"
)

// TargetsDeps wires target administration.
type TargetsDeps struct {
	Registry   ports.TargetRegistry
	MirrorPath string
	Logger     *slog.Logger
}

// Targets keeps the registry and the targets.yaml mirror reconciled. The
// registry is the operational source of truth; the mirror is the
// human-editable copy and is rolled back against, never trusted over the
// registry.
type Targets struct {
	registry   ports.TargetRegistry
	mirrorPath string
	logger     *slog.Logger
}

// NewTargets constructs the target administration component.
func NewTargets(deps TargetsDeps) *Targets {
	return &Targets{
		registry:   deps.Registry,
		mirrorPath: deps.MirrorPath,
		logger:     deps.Logger,
	}
}

// Add validates the type, upserts the registry, then updates the mirror. If
// the mirror write fails and the registry row was freshly created, the row is
// removed again so no half-applied state survives.
func (t *Targets) Add(ctx context.Context, url, rawType, name string) (domain.Target, error) {
	targetType, err := domain.ParseTargetType(rawType)
	if err != nil {
		return domain.Target{}, err
	}

	existed, err := t.exists(ctx, url)
	if err != nil {
		return domain.Target{}, err
	}

	id, err := t.registry.Upsert(ctx, url, targetType, name)
	if err != nil {
		return domain.Target{}, err
	}

	if err := t.mirrorAdd(url, rawType, name); err != nil {
		if !existed {
			if _, rollbackErr := t.registry.Remove(ctx, url); rollbackErr != nil {
				return domain.Target{}, fmt.Errorf("%w (rollback also failed: %v)", err, rollbackErr)
			}
		}
		return domain.Target{}, err
	}

	return domain.Target{
		ID:   id,
		URL:  identity.NormalizeTargetURL(url),
		Type: targetType,
		Name: name,
	}, nil
}

// RemoveResult reports a target removal. Warning is set when the registry
// delete succeeded but the mirror could not be updated.
type RemoveResult struct {
	Removed bool   `json:"removed"`
	URL     string `json:"url"`
	Warning string `json:"warning,omitempty"`
}

// Remove deletes the target (cascading to its posts) and prunes the mirror.
// A mirror failure after a successful registry delete is a warning: the
// registry decides what exists.
func (t *Targets) Remove(ctx context.Context, url string) (RemoveResult, error) {
	removed, err := t.registry.Remove(ctx, url)
	if err != nil {
		return RemoveResult{}, err
	}

	result := RemoveResult{Removed: removed, URL: url}
	if !removed {
		return result, nil
	}

	if err := t.mirrorRemove(url); err != nil {
		result.Warning = fmt.Sprintf("target removed but mirror update failed: %v", err)
		t.warn("mirror update failed", "url", url, "error", err)
	}

	return result, nil
}

// List returns the registry contents in insertion order.
func (t *Targets) List(ctx context.Context) ([]domain.Target, error) {
	return t.registry.List(ctx)
}

func (t *Targets) exists(ctx context.Context, url string) (bool, error) {
	targets, err := t.registry.List(ctx)
	if err != nil {
		return false, err
	}
	normalized := identity.NormalizeTargetURL(url)
	for _, target := range targets {
		if target.URL == normalized {
			return true, nil
		}
	}
	return false, nil
}

func (t *Targets) mirrorAdd(url, rawType, name string) error {
	entries, err := t.loadMirror()
	if err != nil {
		return err
	}

	normalized := identity.NormalizeTargetURL(url)
	updated := false
	for i, entry := range entries {
		if identity.NormalizeTargetURL(entry.URL) == normalized {
			entries[i].Type = rawType
			entries[i].Name = name
			updated = true
			break
		}
	}
	if !updated {
		entries = append(entries, config.TargetEntry{Type: rawType, Name: name, URL: normalized})
	}

	return config.SaveTargets(t.mirrorPath, entries)
}

func (t *Targets) mirrorRemove(url string) error {
	entries, err := t.loadMirror()
	if err != nil {
		return err
	}

	normalized := identity.NormalizeTargetURL(url)
	kept := entries[:0]
	for _, entry := range entries {
		if identity.NormalizeTargetURL(entry.URL) != normalized {
			kept = append(kept, entry)
		}
	}

	return config.SaveTargets(t.mirrorPath, kept)
}

func (t *Targets) loadMirror() ([]config.TargetEntry, error) {
	entries, err := config.LoadTargets(t.mirrorPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return entries, err
}

func (t *Targets) warn(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Warn(msg, args...)
	}
}
