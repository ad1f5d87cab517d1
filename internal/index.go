package internal

import (
	"bytes"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	sourceExt        = ".jsonl"
	combinedFileName = "combined_transcripts.html"
	sessionFilePref  = "session-"
	previewMaxLen    = 200
)

// Regexes matching the markup emitted by claude-code-log. The combined
// transcript page is produced by one known generator, so targeted
// extraction is sufficient.
var (
	sessionLinkRe = regexp.MustCompile(`(?s)<a href='#msg-session-([^']+)'[^>]*class='session-link'>(.*?)</a>`)
	sessionTitRe  = regexp.MustCompile(`(?s)<div class='session-link-title'>\s*(.*?)\s*</div>`)
	messageCntRe  = regexp.MustCompile(`(\d+)\s*messages`)
	previewRe     = regexp.MustCompile(`(?s)<pre class='session-preview'>(.*?)</pre>`)
	htmlTagRe     = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// combinedMeta is the per-session metadata extracted from a project's
// combined transcript page.
type combinedMeta struct {
	Title        string
	MessageCount int
	Preview      string
}

// BuildIndex walks the project tree and produces the ordered session
// index: one Session per source log file, newest first. It is
// idempotent: unchanged disk state yields an identical sequence.
func BuildIndex(projectDir string) ([]Session, error) {
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, &ScanError{Path: projectDir, Err: err}
	}

	var sessions []Session
	combinedByDir := make(map[string]map[string]combinedMeta)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return &ScanError{Path: path, Err: err}
			}
			LogDebug("Skipping unreadable path %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(d.Name()) != sourceExt {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			LogDebug("Skipping %s: %v", path, err)
			return nil
		}

		dir := filepath.Dir(path)
		meta, ok := combinedByDir[dir]
		if !ok {
			meta = parseCombinedTranscripts(filepath.Join(dir, combinedFileName))
			combinedByDir[dir] = meta
		}

		sessions = append(sessions, buildSession(root, path, info.ModTime(), meta))
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Newest first; ties broken by id so the order is deterministic.
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].LastModified.Equal(sessions[j].LastModified) {
			return sessions[i].LastModified.After(sessions[j].LastModified)
		}
		return sessions[i].ID < sessions[j].ID
	})

	return sessions, nil
}

// buildSession assembles one Session from a source log file and any
// generated artifacts next to it. Paths are stored relative to the
// project root so the index is location independent.
func buildSession(root, sourcePath string, modTime time.Time, meta map[string]combinedMeta) Session {
	id := SessionID(sourcePath)
	rel, err := filepath.Rel(root, sourcePath)
	if err != nil {
		rel = sourcePath
	}

	s := Session{
		ID:           id,
		SourcePath:   filepath.ToSlash(rel),
		LastModified: modTime,
	}

	if relDir := filepath.Dir(rel); relDir != "." {
		// The first path element under the root names the project.
		s.Project = ProjectDisplayName(strings.Split(filepath.ToSlash(relDir), "/")[0])
	}

	htmlPath := filepath.Join(filepath.Dir(sourcePath), sessionFilePref+id+".html")
	if _, err := os.Stat(htmlPath); err == nil {
		relHTML, err := filepath.Rel(root, htmlPath)
		if err == nil {
			s.HTMLPath = filepath.ToSlash(relHTML)
		}
	}

	if m, ok := meta[id]; ok {
		s.DisplayName = m.Title
		s.MessageCount = m.MessageCount
		s.Preview = m.Preview
	}
	if s.DisplayName == "" {
		s.DisplayName = shortID(id)
	}
	if s.MessageCount == 0 {
		s.MessageCount = countLines(sourcePath)
	}

	return s
}

// parseCombinedTranscripts extracts per-session titles, message counts
// and previews from a combined transcript page. A missing or malformed
// page simply yields no metadata.
func parseCombinedTranscripts(path string) map[string]combinedMeta {
	meta := make(map[string]combinedMeta)

	data, err := os.ReadFile(path)
	if err != nil {
		return meta
	}
	content := string(data)

	for _, match := range sessionLinkRe.FindAllStringSubmatch(content, -1) {
		id, body := match[1], match[2]
		m := combinedMeta{}

		if tm := sessionTitRe.FindStringSubmatch(body); tm != nil {
			title := htmlTagRe.ReplaceAllString(tm[1], "")
			title = whitespaceRe.ReplaceAllString(title, " ")
			m.Title = strings.TrimSpace(html.UnescapeString(title))
		}
		if cm := messageCntRe.FindStringSubmatch(body); cm != nil {
			m.MessageCount, _ = strconv.Atoi(cm[1])
		}
		if pm := previewRe.FindStringSubmatch(body); pm != nil {
			preview := html.UnescapeString(pm[1])
			// Truncate by runes, not bytes, so a multi-byte character
			// is never split into invalid UTF-8.
			if r := []rune(preview); len(r) > previewMaxLen {
				preview = string(r[:previewMaxLen])
			}
			m.Preview = strings.TrimSpace(preview)
		}

		meta[id] = m
	}

	return meta
}

// countLines counts newline-delimited records in a source log file.
// Records can be arbitrarily long, so it counts raw newlines instead of
// scanning line by line.
func countLines(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	buf := make([]byte, 32*1024)
	var n int
	for {
		c, err := f.Read(buf)
		n += bytes.Count(buf[:c], []byte{'\n'})
		if err != nil {
			break
		}
	}
	return n
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
