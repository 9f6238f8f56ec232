package newsletter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriter_WritesUniquelyNamedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "out"))
	w.now = func() time.Time { return time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC) }
	w.newID = func() string { return "deadbeef-0000-0000-0000-000000000000" }

	path, err := w.Write(weeklyPosts())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if got := filepath.Base(path); got != "newsletter_20260214-080000_deadbeef.html" {
		t.Fatalf("unexpected file name: %s", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if !strings.Contains(string(data), "<p class=\"count\">3 new posts</p>") {
		t.Error("written digest missing post count")
	}
}

func TestWriter_NeverOverwrites(t *testing.T) {
	t.Parallel()

	w := NewWriter(t.TempDir())
	w.now = func() time.Time { return time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC) }
	w.newID = func() string { return "deadbeef-0000-0000-0000-000000000000" }

	if _, err := w.Write(nil); err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	if _, err := w.Write(nil); err == nil {
		t.Fatal("second Write onto the same name should fail, not overwrite")
	}
}
