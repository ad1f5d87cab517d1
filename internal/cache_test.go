package internal

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func testSessions() []Session {
	return []Session{
		{
			ID:           "s1",
			DisplayName:  "First session",
			Project:      "home/kay/proj",
			SourcePath:   "proj/s1.jsonl",
			HTMLPath:     "proj/session-s1.html",
			LastModified: time.Now().Add(-time.Hour).Truncate(time.Second),
			MessageCount: 12,
			Preview:      "hello",
		},
		{
			ID:           "s2",
			DisplayName:  "Second session",
			SourcePath:   "proj/s2.jsonl",
			LastModified: time.Now().Add(-2 * time.Hour).Truncate(time.Second),
			MessageCount: 3,
		},
	}
}

func TestIndexCacheRoundtrip(t *testing.T) {
	cache := NewIndexCache(filepath.Join(t.TempDir(), "nested", "index.yaml"))
	sessions := testSessions()
	key := time.Now().Truncate(time.Second)

	if err := cache.Save(sessions, key); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, ok := cache.Load(key)
	if !ok {
		t.Fatal("Load reported a miss for a matching key")
	}
	if !reflect.DeepEqual(sessionsComparable(loaded), sessionsComparable(sessions)) {
		t.Errorf("roundtrip mismatch:\nsaved  = %+v\nloaded = %+v", sessions, loaded)
	}
}

// sessionsComparable normalizes time locations for DeepEqual; YAML
// round-trips preserve the instant but not the zone pointer.
func sessionsComparable(in []Session) []Session {
	out := make([]Session, len(in))
	for i, s := range in {
		s.LastModified = s.LastModified.UTC()
		out[i] = s
	}
	return out
}

func TestIndexCacheStaleKey(t *testing.T) {
	cache := NewIndexCache(filepath.Join(t.TempDir(), "index.yaml"))
	key := time.Now().Truncate(time.Second)

	if err := cache.Save(testSessions(), key); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, ok := cache.Load(key.Add(time.Second)); ok {
		t.Error("Load should miss when the source tree moved on")
	}
}

func TestIndexCacheMissingFile(t *testing.T) {
	cache := NewIndexCache(filepath.Join(t.TempDir(), "absent.yaml"))
	if _, ok := cache.Load(time.Now()); ok {
		t.Error("Load should miss when no cache file exists")
	}
}

func TestIndexCacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	cache := NewIndexCache(path)
	if _, ok := cache.Load(time.Now()); ok {
		t.Error("Load should miss on a corrupt cache file")
	}
}

func TestIndexCacheVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.yaml")
	key := time.Now().Truncate(time.Second)

	cache := NewIndexCache(path)
	if err := cache.Save(testSessions(), key); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read cache: %v", err)
	}
	if err := os.WriteFile(path, []byte("version: \"0.0\"\n"+stripVersionLine(string(data))), 0644); err != nil {
		t.Fatalf("Failed to rewrite cache: %v", err)
	}

	if _, ok := cache.Load(key); ok {
		t.Error("Load should miss on a version mismatch")
	}
}

func stripVersionLine(s string) string {
	lines := []byte(s)
	// Drop the first line (version: ...).
	for i, b := range lines {
		if b == '\n' {
			return string(lines[i+1:])
		}
	}
	return s
}
