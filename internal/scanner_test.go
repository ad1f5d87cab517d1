package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/claude-log-viewer/testutil"
)

func TestScannerDetectsNewFiles(t *testing.T) {
	root := t.TempDir()
	s := NewScanner(root)

	changed, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("empty tree reported %d changes", len(changed))
	}

	testutil.WriteSourceLog(t, root, "p", "fresh", 1, time.Now())
	changed, err = s.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(changed) != 1 {
		t.Fatalf("changed = %v, want 1 entry", changed)
	}
	if SessionID(changed[0]) != "fresh" {
		t.Errorf("changed file = %q, want the new log", changed[0])
	}
}

func TestScannerDetectsModifiedFiles(t *testing.T) {
	root := t.TempDir()
	base := time.Now().Add(-time.Hour)
	path := testutil.WriteSourceLog(t, root, "p", "sess", 1, base)

	s := NewScanner(root)
	if _, err := s.Scan(); err != nil {
		t.Fatalf("initial Scan failed: %v", err)
	}

	// Unchanged tree reports nothing.
	changed, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("unchanged tree reported %v", changed)
	}

	// Bump the mtime forward.
	testutil.TouchFile(t, path, base.Add(time.Minute))
	changed, err = s.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(changed) != 1 {
		t.Errorf("changed = %v, want the touched file", changed)
	}
}

func TestScannerIgnoresDeletions(t *testing.T) {
	root := t.TempDir()
	path := testutil.WriteSourceLog(t, root, "p", "gone", 1, time.Now())

	s := NewScanner(root)
	if _, err := s.Scan(); err != nil {
		t.Fatalf("initial Scan failed: %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("Failed to remove file: %v", err)
	}
	changed, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("deletion reported as change: %v", changed)
	}
}

func TestScannerIgnoresNonSourceFiles(t *testing.T) {
	root := t.TempDir()
	s := NewScanner(root)
	if _, err := s.Scan(); err != nil {
		t.Fatalf("initial Scan failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "report.html"), []byte("<html>"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	changed, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("generated artifact reported as change: %v", changed)
	}
}

func TestScannerMissingRoot(t *testing.T) {
	s := NewScanner(filepath.Join(t.TempDir(), "missing"))
	if _, err := s.Scan(); err == nil {
		t.Fatal("Scan should fail when the root is unreadable")
	}
}

func TestNewestSourceModTime(t *testing.T) {
	root := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	testutil.WriteSourceLog(t, root, "p", "old", 1, base)
	testutil.WriteSourceLog(t, root, "p", "new", 1, base.Add(30*time.Minute))

	got := NewestSourceModTime(root)
	if !got.Equal(base.Add(30 * time.Minute)) {
		t.Errorf("NewestSourceModTime = %v, want %v", got, base.Add(30*time.Minute))
	}

	if !NewestSourceModTime(t.TempDir()).IsZero() {
		t.Error("empty tree should report a zero mod time")
	}
}

// watcherHarness drives Watcher.tick with a synthetic clock.
type watcherHarness struct {
	watcher *Watcher
	fires   int
	now     time.Time
}

func newWatcherHarness(t *testing.T, root string, debounce time.Duration) *watcherHarness {
	t.Helper()
	h := &watcherHarness{now: time.Now()}
	h.watcher = NewWatcher(NewScanner(root), time.Second, debounce, func() { h.fires++ })
	return h
}

func (h *watcherHarness) tickAfter(d time.Duration) {
	h.now = h.now.Add(d)
	h.watcher.tick(h.now)
}

func TestWatcherDebouncesBurst(t *testing.T) {
	root := t.TempDir()
	h := newWatcherHarness(t, root, 500*time.Millisecond)

	// Prime the state.
	h.tickAfter(0)

	// A burst: new files appearing across three consecutive scans.
	base := time.Now()
	for i := 0; i < 3; i++ {
		testutil.WriteSourceLog(t, root, "p", string(rune('a'+i))+"-session", 1, base)
		h.tickAfter(100 * time.Millisecond)
	}
	if h.fires != 0 {
		t.Fatalf("fired %d time(s) during the burst, want 0", h.fires)
	}

	// Quiet period long enough to close the debounce window.
	h.tickAfter(time.Second)
	if h.fires != 1 {
		t.Errorf("fires = %d, want exactly 1 after the burst settles", h.fires)
	}

	// Still quiet: no further fires.
	h.tickAfter(time.Second)
	if h.fires != 1 {
		t.Errorf("fires = %d after quiet tick, want 1", h.fires)
	}
}

func TestWatcherFiresPerBurst(t *testing.T) {
	root := t.TempDir()
	h := newWatcherHarness(t, root, 500*time.Millisecond)
	h.tickAfter(0)

	testutil.WriteSourceLog(t, root, "p", "first", 1, time.Now())
	h.tickAfter(100 * time.Millisecond)
	h.tickAfter(time.Second)

	testutil.WriteSourceLog(t, root, "p", "second", 1, time.Now())
	h.tickAfter(100 * time.Millisecond)
	h.tickAfter(time.Second)

	if h.fires != 2 {
		t.Errorf("fires = %d, want 2 (one per burst)", h.fires)
	}
}

func TestWatcherSkipsCycleOnScanError(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "gone")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	h := &watcherHarness{now: time.Now()}
	h.watcher = NewWatcher(NewScanner(filepath.Join(root, "missing")), time.Second, 0, func() { h.fires++ })

	// Root missing: the cycle is skipped, the loop must not fire.
	h.tickAfter(time.Second)
	if h.fires != 0 {
		t.Errorf("fires = %d on scan error, want 0", h.fires)
	}
}
