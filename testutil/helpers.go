package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TouchFile updates a file's modification time, creating it if needed.
func TouchFile(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("Failed to set mtime: %v", err)
	}
}
