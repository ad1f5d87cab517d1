package internal

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a regeneration job.
type JobStatus string

const (
	StatusIdle      JobStatus = "idle"
	StatusRunning   JobStatus = "running"
	StatusSucceeded JobStatus = "succeeded"
	StatusFailed    JobStatus = "failed"
)

// Trigger records what caused a regeneration.
type Trigger string

const (
	TriggerStartup    Trigger = "startup"
	TriggerFileChange Trigger = "file-change"
	TriggerManual     Trigger = "manual"
)

// JobState is a snapshot of the current (or most recent) regeneration
// job, served by the status endpoint and recorded in run history.
type JobState struct {
	ID           string    `json:"id,omitempty"`
	Status       JobStatus `json:"status"`
	Trigger      Trigger   `json:"trigger,omitempty"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`
	Error        string    `json:"error,omitempty"`
	SessionCount int       `json:"session_count"`
}

// Coordinator owns the decision of when the generator runs. It
// guarantees at most one regeneration at a time, coalesces triggers that
// arrive mid-run into a single follow-up pass, and swaps in each newly
// built session index atomically so readers always see a complete
// index. A failed run never touches the last-known-good index or any
// previously generated artifact.
type Coordinator struct {
	projectDir string
	invoker    Invoker
	history    *History    // optional
	cache      *IndexCache // optional

	mu      sync.Mutex
	job     JobState
	pending bool
	next    Trigger
	index   []Session
	wg      sync.WaitGroup
}

// NewCoordinator creates a coordinator. history and cache may be nil;
// both are best-effort side channels that never block regeneration.
func NewCoordinator(projectDir string, invoker Invoker, history *History, cache *IndexCache) *Coordinator {
	return &Coordinator{
		projectDir: projectDir,
		invoker:    invoker,
		history:    history,
		cache:      cache,
		job:        JobState{Status: StatusIdle},
	}
}

// Index returns the current session index snapshot. The returned slice
// is never mutated after the swap, so it is safe to read concurrently.
func (c *Coordinator) Index() []Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// SetIndex seeds the index, e.g. from the startup cache. It never
// overwrites an index produced by a successful regeneration.
func (c *Coordinator) SetIndex(sessions []Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.job.Status == StatusIdle && c.index == nil {
		c.index = sessions
		c.job.SessionCount = len(sessions)
	}
}

// Status returns a snapshot of the current job state.
func (c *Coordinator) Status() JobState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.job
}

// Trigger requests a regeneration. If one is already running the
// request is coalesced into a single pending follow-up run; otherwise a
// new job starts on a background goroutine and Trigger returns
// immediately.
func (c *Coordinator) Trigger(ctx context.Context, trigger Trigger) {
	c.mu.Lock()
	if c.job.Status == StatusRunning {
		c.pending = true
		c.next = trigger
		c.mu.Unlock()
		LogDebug("Regeneration already running, queued follow-up (%s)", trigger)
		return
	}
	c.startLocked(ctx, trigger)
	c.mu.Unlock()
}

// startLocked transitions to Running and launches the job goroutine.
// Callers must hold c.mu. Cancelling ctx kills an in-flight generator
// subprocess.
func (c *Coordinator) startLocked(ctx context.Context, trigger Trigger) {
	c.job = JobState{
		ID:           uuid.NewString(),
		Status:       StatusRunning,
		Trigger:      trigger,
		StartedAt:    time.Now(),
		SessionCount: len(c.index),
	}
	c.wg.Add(1)
	go c.run(ctx, trigger)
}

// Wait blocks until no regeneration is in flight. Used on shutdown
// after the context driving the invoker has been cancelled.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// run executes one regeneration pass and then fires the pending
// follow-up, if any.
func (c *Coordinator) run(ctx context.Context, trigger Trigger) {
	defer c.wg.Done()

	LogInfo("Regenerating reports (%s)...", trigger)
	err := c.invoker.Invoke(ctx, c.projectDir)

	var sessions []Session
	if err == nil {
		sessions, err = BuildIndex(c.projectDir)
	}

	c.mu.Lock()
	c.job.FinishedAt = time.Now()
	if err != nil {
		// Last-known-good index and artifacts stay in place.
		c.job.Status = StatusFailed
		c.job.Error = err.Error()
		LogError("Regeneration failed: %v", err)
	} else {
		c.index = sessions
		c.job.Status = StatusSucceeded
		c.job.Error = ""
		c.job.SessionCount = len(sessions)
		LogInfo("Regeneration succeeded: %d session(s)", len(sessions))
	}
	finished := c.job

	// A trigger that arrived mid-run fires exactly one follow-up pass,
	// no matter how many triggers were coalesced into it.
	rerun := c.pending && ctx.Err() == nil
	c.pending = false
	if rerun {
		c.startLocked(ctx, c.next)
	}
	c.mu.Unlock()

	if err == nil {
		c.pruneOrphans(sessions)
		if c.cache != nil {
			if cerr := c.cache.Save(sessions, NewestSourceModTime(c.projectDir)); cerr != nil {
				LogWarn("Failed to save index cache: %v", cerr)
			}
		}
	}

	if c.history != nil {
		if herr := c.history.Record(finished); herr != nil {
			LogWarn("Failed to record run history: %v", herr)
		}
	}
}

// pruneOrphans removes per-session HTML artifacts whose source log no
// longer exists. Cleanup happens only after a successful run, so a
// failure can never leave a window with no content.
func (c *Coordinator) pruneOrphans(sessions []Session) {
	live := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		live[s.ID] = struct{}{}
	}

	_ = filepath.WalkDir(c.projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != c.projectDir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != c.projectDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if !strings.HasPrefix(name, sessionFilePref) || filepath.Ext(name) != ".html" {
			return nil
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, sessionFilePref), ".html")
		if _, ok := live[id]; ok {
			return nil
		}
		if rerr := os.Remove(path); rerr != nil {
			LogWarn("Failed to prune orphaned artifact %s: %v", path, rerr)
		} else {
			LogDebug("Pruned orphaned artifact %s", path)
		}
		return nil
	})
}
