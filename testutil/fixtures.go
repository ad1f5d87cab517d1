// Package testutil provides filesystem fixtures shaped like a Claude
// Code project tree: per-project directories containing *.jsonl source
// logs, per-session HTML artifacts, and a combined transcript page.
package testutil

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// WriteSourceLog creates a source log file with the given number of
// records and sets its modification time. Returns the file path.
func WriteSourceLog(t *testing.T, root, project, id string, lines int, modTime time.Time) string {
	t.Helper()

	dir := filepath.Join(root, project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create project dir: %v", err)
	}

	var b strings.Builder
	for i := 0; i < lines; i++ {
		fmt.Fprintf(&b, `{"type":"user","sessionId":%q,"message":{"content":"line %d"}}`+"\n", id, i)
	}

	path := filepath.Join(dir, id+".jsonl")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("Failed to write source log: %v", err)
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(path, modTime, modTime); err != nil {
			t.Fatalf("Failed to set mtime: %v", err)
		}
	}
	return path
}

// WriteSessionHTML creates a generated per-session artifact. Returns
// the file path.
func WriteSessionHTML(t *testing.T, root, project, id, content string) string {
	t.Helper()

	dir := filepath.Join(root, project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create project dir: %v", err)
	}

	path := filepath.Join(dir, "session-"+id+".html")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write session artifact: %v", err)
	}
	return path
}

// CombinedSession describes one session entry in a combined transcript
// fixture.
type CombinedSession struct {
	ID       string
	Title    string
	Messages int
	Preview  string
}

// WriteCombinedTranscripts creates a combined_transcripts.html fixture
// in the markup shape the report generator emits.
func WriteCombinedTranscripts(t *testing.T, root, project string, sessions []CombinedSession) string {
	t.Helper()

	dir := filepath.Join(root, project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create project dir: %v", err)
	}

	var b strings.Builder
	b.WriteString("<html><body>\n")
	for _, s := range sessions {
		fmt.Fprintf(&b, "<a href='#msg-session-%s' class='session-link'>\n", s.ID)
		// Titles may carry markup; the generator emits them unescaped.
		fmt.Fprintf(&b, "<div class='session-link-title'> %s </div>\n", s.Title)
		fmt.Fprintf(&b, "<span>%d messages</span>\n", s.Messages)
		fmt.Fprintf(&b, "<pre class='session-preview'>%s</pre>\n", html.EscapeString(s.Preview))
		b.WriteString("</a>\n")
	}
	b.WriteString("</body></html>\n")

	path := filepath.Join(dir, "combined_transcripts.html")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("Failed to write combined transcripts: %v", err)
	}
	return path
}
