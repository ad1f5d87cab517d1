package internal

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// WatchState tracks the last observed modification time of every source
// log file. It lives in memory only and is updated monotonically: a
// file is reported as changed when it is new or its mtime increased.
type WatchState struct {
	lastScan time.Time
	mtimes   map[string]time.Time
}

// Scanner walks the watched tree and reports changed source log files.
type Scanner struct {
	dir   string
	state WatchState
}

// NewScanner creates a scanner for the given project directory.
func NewScanner(dir string) *Scanner {
	return &Scanner{
		dir:   dir,
		state: WatchState{mtimes: make(map[string]time.Time)},
	}
}

// Scan walks the tree once and returns the source files that are new or
// whose modification time increased since the previous scan. Deleted
// files are never reported; they are reconciled by the next full
// regeneration pass.
func (s *Scanner) Scan() ([]string, error) {
	var changed []string

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.dir {
				return &ScanError{Path: path, Err: err}
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != s.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(d.Name()) != sourceExt {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		prev, seen := s.state.mtimes[path]
		if !seen || info.ModTime().After(prev) {
			changed = append(changed, path)
			s.state.mtimes[path] = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.state.lastScan = time.Now()
	return changed, nil
}

// NewestSourceModTime returns the most recent modification time among
// all source log files under dir. Used as the index cache key.
func NewestSourceModTime(dir string) time.Time {
	var newest time.Time
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(d.Name()) != sourceExt {
			return nil
		}
		if info, err := d.Info(); err == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest
}

// Watcher drives the scanner on a fixed interval and fires a single
// callback per burst of changes: a detected change arms the debounce
// window, and the callback fires only once the tree has been quiet for
// the whole window.
type Watcher struct {
	scanner  *Scanner
	interval time.Duration
	debounce time.Duration
	onChange func()

	dirty      bool
	lastChange time.Time
}

// NewWatcher creates a watcher that invokes onChange after each
// debounced burst of source file changes.
func NewWatcher(scanner *Scanner, interval, debounce time.Duration, onChange func()) *Watcher {
	return &Watcher{
		scanner:  scanner,
		interval: interval,
		debounce: debounce,
		onChange: onChange,
	}
}

// Run polls until the context is cancelled. Scan errors skip the cycle
// and are retried on the next tick; they never stop the loop.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	LogInfo("Watching %s every %s (debounce %s)", w.scanner.dir, w.interval, w.debounce)
	for {
		select {
		case <-ctx.Done():
			LogDebug("Watcher stopped: %v", ctx.Err())
			return
		case now := <-ticker.C:
			w.tick(now)
		}
	}
}

// tick runs one scan cycle. Split out from Run so tests can drive the
// debounce logic with synthetic clocks.
func (w *Watcher) tick(now time.Time) {
	changed, err := w.scanner.Scan()
	if err != nil {
		LogWarn("Scan failed, skipping cycle: %v", err)
		return
	}
	if len(changed) > 0 {
		LogDebug("Detected %d changed source file(s)", len(changed))
		w.dirty = true
		w.lastChange = now
	}
	if w.dirty && now.Sub(w.lastChange) >= w.debounce {
		w.dirty = false
		w.onChange()
	}
}
