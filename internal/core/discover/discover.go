// Package discover locates the Claude Code session logs belonging to a
// project. The core never searches the filesystem beyond what this
// package hands it.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultProjectsDir returns ~/.claude/projects
func DefaultProjectsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".claude", "projects"), nil
}

// EncodeProjectPath maps a project path onto its log directory name the
// way Claude Code does: /Users/neil/xuku/invoice -> -Users-neil-xuku-invoice
func EncodeProjectPath(projectPath string) string {
	cleaned := filepath.Clean(projectPath)
	encoded := strings.ReplaceAll(cleaned, "/", "-")
	encoded = strings.ReplaceAll(encoded, ".", "-")
	if !strings.HasPrefix(encoded, "-") {
		encoded = "-" + encoded
	}
	return encoded
}

// DecodeProjectDir reverses EncodeProjectPath as far as the encoding
// allows (dots are lost; dashes become slashes)
func DecodeProjectDir(dirName string) string {
	if len(dirName) > 0 && dirName[0] == '-' {
		return "/" + strings.ReplaceAll(dirName[1:], "-", "/")
	}
	return dirName
}

// ProjectLogDir returns the log directory for one project
func ProjectLogDir(projectsDir, projectPath string) string {
	return filepath.Join(projectsDir, EncodeProjectPath(projectPath))
}

// SessionFiles lists the session .jsonl files in a log directory, oldest
// mtime first so later files win on equal content.
func SessionFiles(logDir string) ([]string, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read log dir: %w", err)
	}

	type candidate struct {
		path  string
		mtime int64
	}
	var found []candidate
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{
			path:  filepath.Join(logDir, entry.Name()),
			mtime: info.ModTime().UnixNano(),
		})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].mtime < found[j].mtime })
	paths := make([]string, len(found))
	for i, c := range found {
		paths[i] = c.path
	}
	return paths, nil
}
