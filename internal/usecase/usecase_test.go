package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AaronLPS/ai4news/internal/config"
	"github.com/AaronLPS/ai4news/internal/domain"
	"github.com/AaronLPS/ai4news/internal/newsletter"
)

type fakeRegistry struct {
	targets   []domain.Target
	nextID    int64
	upsertErr error
	removeErr error
}

func (f *fakeRegistry) Upsert(_ context.Context, url string, typ domain.TargetType, name string) (int64, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	normalized := strings.TrimSuffix(url, "/")
	for _, t := range f.targets {
		if t.URL == normalized {
			return t.ID, nil
		}
	}
	f.nextID++
	f.targets = append(f.targets, domain.Target{ID: f.nextID, URL: normalized, Type: typ, Name: name})
	return f.nextID, nil
}

func (f *fakeRegistry) Remove(_ context.Context, url string) (bool, error) {
	if f.removeErr != nil {
		return false, f.removeErr
	}
	normalized := strings.TrimSuffix(url, "/")
	for i, t := range f.targets {
		if t.URL == normalized {
			f.targets = append(f.targets[:i], f.targets[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegistry) List(_ context.Context) ([]domain.Target, error) {
	return append([]domain.Target{}, f.targets...), nil
}

type fakePosts struct {
	inserted []domain.NewPost
	failIDs  map[string]bool
	stored   []domain.StoredPost
	queryErr error
	seen     map[string]bool
}

func (f *fakePosts) Insert(_ context.Context, post domain.NewPost) (domain.InsertOutcome, error) {
	if f.failIDs[post.LinkedInID] {
		return 0, errors.New("disk full")
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[post.LinkedInID] {
		return domain.OutcomeDuplicate, nil
	}
	f.seen[post.LinkedInID] = true
	f.inserted = append(f.inserted, post)
	return domain.OutcomeInserted, nil
}

func (f *fakePosts) QueryRecent(_ context.Context, _ int) ([]domain.StoredPost, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.stored, nil
}

type fakeExtractor struct {
	candidates []domain.CandidatePost
	err        error
}

func (f *fakeExtractor) Extract(_ io.Reader) ([]domain.CandidatePost, error) {
	return f.candidates, f.err
}

type fakeDigestLog struct {
	paths  []string
	counts []int
	err    error
}

func (f *fakeDigestLog) Record(_ context.Context, path string, count int) error {
	if f.err != nil {
		return f.err
	}
	f.paths = append(f.paths, path)
	f.counts = append(f.counts, count)
	return nil
}

type fakeWriter struct {
	posts []newsletter.Post
	path  string
	err   error
}

func (f *fakeWriter) Write(posts []newsletter.Post) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.posts = posts
	return f.path, nil
}

var testEntry = config.TargetEntry{
	Type: "person",
	Name: "Satya Nadella",
	URL:  "https://www.linkedin.com/in/satyanadella",
}

func TestIngestTarget_ResolvesIdentityAndCounts(t *testing.T) {
	t.Parallel()

	posts := &fakePosts{}
	ing := NewIngester(IngestDeps{
		Registry: &fakeRegistry{},
		Posts:    posts,
		Extractor: &fakeExtractor{candidates: []domain.CandidatePost{
			{DataURN: "urn:li:activity:1", Author: "A", Text: "first"},
			{Permalink: "https://www.linkedin.com/feed/update/urn:li:activity:2/", Author: "B", Text: "second"},
			{Author: "C", Text: "no identity anywhere"},
			{DataURN: "urn:li:activity:1", Author: "A", Text: "repeat"},
		}},
	})

	result, err := ing.IngestTarget(context.Background(), testEntry, strings.NewReader("<html></html>"))
	if err != nil {
		t.Fatalf("IngestTarget failed: %v", err)
	}

	if result.Scraped != 3 {
		t.Errorf("Scraped = %d, want 3 (identity-less candidate discarded)", result.Scraped)
	}
	if result.New != 2 {
		t.Errorf("New = %d, want 2 (repeat is a duplicate)", result.New)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}

	if len(posts.inserted) != 2 {
		t.Fatalf("stored %d posts, want 2", len(posts.inserted))
	}
	if posts.inserted[0].LinkedInID != "urn:li:activity:1" {
		t.Errorf("first id = %q", posts.inserted[0].LinkedInID)
	}
	// No permalink in the markup: the canonical one is synthesized.
	if posts.inserted[0].URL != "https://www.linkedin.com/feed/update/urn:li:activity:1" {
		t.Errorf("first url = %q", posts.inserted[0].URL)
	}
	// A permalink in the markup is kept as-is.
	if posts.inserted[1].URL != "https://www.linkedin.com/feed/update/urn:li:activity:2/" {
		t.Errorf("second url = %q", posts.inserted[1].URL)
	}
}

func TestIngestTarget_InsertFailureDoesNotStopBatch(t *testing.T) {
	t.Parallel()

	posts := &fakePosts{failIDs: map[string]bool{"urn:li:activity:2": true}}
	ing := NewIngester(IngestDeps{
		Registry: &fakeRegistry{},
		Posts:    posts,
		Extractor: &fakeExtractor{candidates: []domain.CandidatePost{
			{DataURN: "urn:li:activity:1"},
			{DataURN: "urn:li:activity:2"},
			{DataURN: "urn:li:activity:3"},
		}},
	})

	result, err := ing.IngestTarget(context.Background(), testEntry, strings.NewReader(""))
	if err != nil {
		t.Fatalf("IngestTarget failed: %v", err)
	}

	if result.Scraped != 3 || result.New != 2 {
		t.Errorf("Scraped/New = %d/%d, want 3/2", result.Scraped, result.New)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "urn:li:activity:2") {
		t.Errorf("Errors = %v, want one naming the failed post", result.Errors)
	}
}

func TestIngestTarget_RejectsInvalidType(t *testing.T) {
	t.Parallel()

	ing := NewIngester(IngestDeps{Registry: &fakeRegistry{}, Posts: &fakePosts{}, Extractor: &fakeExtractor{}})

	entry := config.TargetEntry{Type: "group", URL: "https://www.linkedin.com/groups/1"}
	if _, err := ing.IngestTarget(context.Background(), entry, strings.NewReader("")); err == nil {
		t.Fatal("expected error for invalid target type")
	}
}

func writeSpoolFile(t *testing.T, dir, name string, v any) {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write envelope: %v", err)
	}
}

func TestIngestSpool_ProcessesConfiguredTargets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSpoolFile(t, dir, "a.json", spoolEnvelope{TargetURL: "https://www.linkedin.com/in/satyanadella/", HTML: "<html></html>"})
	writeSpoolFile(t, dir, "b.json", spoolEnvelope{TargetURL: "https://www.linkedin.com/in/stranger", HTML: "<html></html>"})
	if err := os.WriteFile(filepath.Join(dir, "c.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write bad file: %v", err)
	}

	posts := &fakePosts{}
	ing := NewIngester(IngestDeps{
		Registry:  &fakeRegistry{},
		Posts:     posts,
		Extractor: &fakeExtractor{candidates: []domain.CandidatePost{{DataURN: "urn:li:activity:1"}}},
	})

	result, err := ing.IngestSpool(context.Background(), dir, []config.TargetEntry{testEntry})
	if err != nil {
		t.Fatalf("IngestSpool failed: %v", err)
	}

	if result.New != 1 {
		t.Errorf("New = %d, want 1", result.New)
	}
	if len(result.Errors) != 2 {
		t.Errorf("Errors = %v, want unknown-target and parse failures", result.Errors)
	}

	if _, err := os.Stat(filepath.Join(dir, "a.json.done")); err != nil {
		t.Error("processed envelope should be renamed to .done")
	}
	if _, err := os.Stat(filepath.Join(dir, "b.json")); err != nil {
		t.Error("unattributed envelope should stay in place")
	}
}

func TestIngestSpool_EmptyDirectory(t *testing.T) {
	t.Parallel()

	ing := NewIngester(IngestDeps{Registry: &fakeRegistry{}, Posts: &fakePosts{}, Extractor: &fakeExtractor{}})

	result, err := ing.IngestSpool(context.Background(), t.TempDir(), []config.TargetEntry{testEntry})
	if err != nil {
		t.Fatalf("IngestSpool failed: %v", err)
	}
	if result.Scraped != 0 || result.New != 0 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result for empty spool: %+v", result)
	}
}

func TestTargetsAdd_UpdatesRegistryAndMirror(t *testing.T) {
	t.Parallel()

	mirror := filepath.Join(t.TempDir(), "targets.yaml")
	registry := &fakeRegistry{}
	targets := NewTargets(TargetsDeps{Registry: registry, MirrorPath: mirror})

	added, err := targets.Add(context.Background(), "https://www.linkedin.com/in/satyanadella/", "person", "Satya Nadella")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if added.URL != "https://www.linkedin.com/in/satyanadella" {
		t.Errorf("URL = %q, want normalized form", added.URL)
	}

	entries, err := config.LoadTargets(mirror)
	if err != nil {
		t.Fatalf("LoadTargets failed: %v", err)
	}
	if len(entries) != 1 || entries[0].URL != "https://www.linkedin.com/in/satyanadella" {
		t.Fatalf("unexpected mirror contents: %+v", entries)
	}
}

func TestTargetsAdd_RollsBackFreshRowWhenMirrorFails(t *testing.T) {
	t.Parallel()

	// A directory at the mirror path makes every mirror write fail.
	mirror := t.TempDir()
	registry := &fakeRegistry{}
	targets := NewTargets(TargetsDeps{Registry: registry, MirrorPath: mirror})

	_, err := targets.Add(context.Background(), "https://www.linkedin.com/in/satyanadella", "person", "Satya")
	if err == nil {
		t.Fatal("expected error when mirror write fails")
	}
	if len(registry.targets) != 0 {
		t.Fatalf("fresh registry row should be rolled back, got %+v", registry.targets)
	}
}

func TestTargetsAdd_KeepsExistingRowWhenMirrorFails(t *testing.T) {
	t.Parallel()

	mirror := t.TempDir()
	registry := &fakeRegistry{}
	if _, err := registry.Upsert(context.Background(), "https://www.linkedin.com/in/satyanadella", domain.TargetPerson, "Satya"); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}

	targets := NewTargets(TargetsDeps{Registry: registry, MirrorPath: mirror})

	_, err := targets.Add(context.Background(), "https://www.linkedin.com/in/satyanadella", "person", "Satya Renamed")
	if err == nil {
		t.Fatal("expected error when mirror write fails")
	}
	if len(registry.targets) != 1 {
		t.Fatalf("pre-existing registry row must survive, got %+v", registry.targets)
	}
}

func TestTargetsRemove_PrunesMirror(t *testing.T) {
	t.Parallel()

	mirror := filepath.Join(t.TempDir(), "targets.yaml")
	registry := &fakeRegistry{}
	targets := NewTargets(TargetsDeps{Registry: registry, MirrorPath: mirror})

	ctx := context.Background()
	if _, err := targets.Add(ctx, "https://www.linkedin.com/in/a", "person", "A"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := targets.Add(ctx, "https://www.linkedin.com/company/b", "company", "B"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	result, err := targets.Remove(ctx, "https://www.linkedin.com/in/a/")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !result.Removed || result.Warning != "" {
		t.Fatalf("unexpected result: %+v", result)
	}

	entries, err := config.LoadTargets(mirror)
	if err != nil {
		t.Fatalf("LoadTargets failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "B" {
		t.Fatalf("unexpected mirror contents: %+v", entries)
	}
}

func TestTargetsRemove_MissingTargetIsNotAnError(t *testing.T) {
	t.Parallel()

	targets := NewTargets(TargetsDeps{
		Registry:   &fakeRegistry{},
		MirrorPath: filepath.Join(t.TempDir(), "targets.yaml"),
	})

	result, err := targets.Remove(context.Background(), "https://www.linkedin.com/in/nobody")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if result.Removed {
		t.Fatal("Removed = true for a missing target")
	}
}

func TestCompose_AttachesAnnotationsByIdentity(t *testing.T) {
	t.Parallel()

	posts := &fakePosts{stored: []domain.StoredPost{
		{LinkedInID: "urn:li:activity:1", Author: "A", Text: "one", URL: "u1", TargetName: "A", PostedAt: "2026-02-14T10:00:00"},
		{LinkedInID: "urn:li:activity:2", Author: "B", Text: "two", URL: "u2", TargetName: "B"},
	}}
	writer := &fakeWriter{path: "/out/newsletter.html"}
	log := &fakeDigestLog{}

	d := NewDigester(DigestDeps{Posts: posts, Writer: writer, Log: log})

	result, err := d.Compose(context.Background(), 7, []Annotation{
		{LinkedInID: "urn:li:activity:1", Summary: "sum one", Translation: "un"},
	})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if result.Path != "/out/newsletter.html" || result.PostCount != 2 || result.AuditWarning != "" {
		t.Fatalf("unexpected result: %+v", result)
	}

	if len(writer.posts) != 2 {
		t.Fatalf("writer got %d posts, want 2", len(writer.posts))
	}
	if writer.posts[0].Summary != "sum one" || writer.posts[0].Translation != "un" {
		t.Errorf("annotation not attached: %+v", writer.posts[0])
	}
	// No annotation for the second post: fields stay empty, the post still ships.
	if writer.posts[1].Summary != "" || writer.posts[1].Translation != "" {
		t.Errorf("unexpected annotation on unannotated post: %+v", writer.posts[1])
	}

	if len(log.paths) != 1 || log.paths[0] != "/out/newsletter.html" || log.counts[0] != 2 {
		t.Fatalf("audit record mismatch: %v %v", log.paths, log.counts)
	}
}

func TestCompose_AuditFailureIsAWarning(t *testing.T) {
	t.Parallel()

	d := NewDigester(DigestDeps{
		Posts:  &fakePosts{stored: []domain.StoredPost{{LinkedInID: "urn:li:activity:1"}}},
		Writer: &fakeWriter{path: "/out/newsletter.html"},
		Log:    &fakeDigestLog{err: errors.New("database is locked")},
	})

	result, err := d.Compose(context.Background(), 7, nil)
	if err != nil {
		t.Fatalf("Compose should not fail on an audit error: %v", err)
	}
	if result.Path != "/out/newsletter.html" {
		t.Errorf("Path = %q", result.Path)
	}
	if !strings.Contains(result.AuditWarning, "database is locked") {
		t.Errorf("AuditWarning = %q, should carry the cause", result.AuditWarning)
	}
}

func TestCompose_WriterFailureFailsCompose(t *testing.T) {
	t.Parallel()

	d := NewDigester(DigestDeps{
		Posts:  &fakePosts{},
		Writer: &fakeWriter{err: errors.New("no space left on device")},
		Log:    &fakeDigestLog{},
	})

	if _, err := d.Compose(context.Background(), 7, nil); err == nil {
		t.Fatal("expected error when the writer fails")
	}
}
