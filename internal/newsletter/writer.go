package newsletter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Writer renders digests into an output directory, one new file per call.
type Writer struct {
	dir   string
	now   func() time.Time
	newID func() string
}

// NewWriter targets the given output directory, creating it on first write.
func NewWriter(dir string) *Writer {
	return &Writer{
		dir:   dir,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Write groups the posts, renders the digest, and writes it to a uniquely
// named file. Files are never overwritten: the name carries a timestamp plus
// a random suffix, so every composition call produces a distinct artifact.
func (w *Writer) Write(posts []Post) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("write digest: create output dir: %w", err)
	}

	name := fmt.Sprintf("newsletter_%s_%s.html",
		w.now().UTC().Format("20060102-150405"), w.newID()[:8])
	path := filepath.Join(w.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("write digest: create %s: %w", path, err)
	}

	if err := Render(f, GroupByTarget(posts), len(posts)); err != nil {
		f.Close()
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write digest: close %s: %w", path, err)
	}

	return path, nil
}
