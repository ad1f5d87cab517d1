package internal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("OpenHistory failed: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHistoryRecordAndRecent(t *testing.T) {
	h := openTestHistory(t)
	base := time.Now().UTC().Truncate(time.Second)

	jobs := []JobState{
		{
			ID:           uuid.NewString(),
			Status:       StatusSucceeded,
			Trigger:      TriggerStartup,
			StartedAt:    base,
			FinishedAt:   base.Add(2 * time.Second),
			SessionCount: 3,
		},
		{
			ID:           uuid.NewString(),
			Status:       StatusFailed,
			Trigger:      TriggerFileChange,
			StartedAt:    base.Add(time.Minute),
			FinishedAt:   base.Add(time.Minute + time.Second),
			Error:        "generator error: gen exited with code 1",
			SessionCount: 3,
		},
	}
	for _, job := range jobs {
		if err := h.Record(job); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	runs, err := h.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}

	// Newest first.
	if runs[0].ID != jobs[1].ID || runs[1].ID != jobs[0].ID {
		t.Errorf("order wrong: got %s, %s", runs[0].ID, runs[1].ID)
	}
	if runs[0].Status != StatusFailed || runs[0].Error == "" {
		t.Errorf("failed run not preserved: %+v", runs[0])
	}
	if !runs[1].StartedAt.Equal(jobs[0].StartedAt) {
		t.Errorf("StartedAt = %v, want %v", runs[1].StartedAt, jobs[0].StartedAt)
	}
	if runs[1].SessionCount != 3 {
		t.Errorf("SessionCount = %d, want 3", runs[1].SessionCount)
	}
}

func TestHistoryRecentOrdersSubsecondRuns(t *testing.T) {
	h := openTestHistory(t)
	base := time.Now().UTC().Truncate(time.Second)

	// A run starting on the whole second stores a zero fraction; one
	// starting 500ms later must still sort as newer.
	older := JobState{
		ID:         "older",
		Status:     StatusSucceeded,
		Trigger:    TriggerStartup,
		StartedAt:  base,
		FinishedAt: base.Add(time.Second),
	}
	newer := JobState{
		ID:         "newer",
		Status:     StatusSucceeded,
		Trigger:    TriggerFileChange,
		StartedAt:  base.Add(500 * time.Millisecond),
		FinishedAt: base.Add(2 * time.Second),
	}
	for _, job := range []JobState{older, newer} {
		if err := h.Record(job); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	runs, err := h.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].ID != "newer" || runs[1].ID != "older" {
		t.Errorf("order = %s, %s; want the sub-second run first", runs[0].ID, runs[1].ID)
	}
	if !runs[0].StartedAt.Equal(newer.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", runs[0].StartedAt, newer.StartedAt)
	}
}

func TestHistoryRecentLimit(t *testing.T) {
	h := openTestHistory(t)
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		job := JobState{
			ID:         uuid.NewString(),
			Status:     StatusSucceeded,
			Trigger:    TriggerManual,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + time.Second),
		}
		if err := h.Record(job); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	runs, err := h.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("runs = %d, want 2", len(runs))
	}

	// Default limit kicks in for non-positive values.
	runs, err = h.Recent(0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 5 {
		t.Errorf("runs = %d, want all 5 under default limit", len(runs))
	}
}

func TestHistoryRecentEmpty(t *testing.T) {
	h := openTestHistory(t)
	runs, err := h.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("runs = %d, want 0", len(runs))
	}
}
