package internal

import (
	"path/filepath"
	"strings"
	"time"
)

// Session represents one logical conversation unit: one source log file
// and, once the generator has run, one generated HTML artifact.
type Session struct {
	ID           string    `json:"id" yaml:"id"`
	DisplayName  string    `json:"display_name" yaml:"display_name"`
	Project      string    `json:"project,omitempty" yaml:"project,omitempty"`
	SourcePath   string    `json:"source_path" yaml:"source_path"`
	HTMLPath     string    `json:"html_path,omitempty" yaml:"html_path,omitempty"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
	MessageCount int       `json:"message_count" yaml:"message_count"`
	Preview      string    `json:"preview,omitempty" yaml:"preview,omitempty"`
}

// SessionID derives the stable session id for a source log file.
// Ids come from the filename stem so they survive regenerations and
// content changes of the same underlying file.
func SessionID(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ProjectDisplayName converts a project folder name like
// "-Users-kay-src-tool" into a readable "Users/kay/src/tool".
func ProjectDisplayName(folder string) string {
	return strings.TrimPrefix(strings.ReplaceAll(folder, "-", "/"), "/")
}
