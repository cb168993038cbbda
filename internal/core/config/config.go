package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultReceiptTemplate renders the summary printed after a restore
const DefaultReceiptTemplate = `Restored {{path}} to its state at {{timestamp}} ({{time_since}}).
Event: {{event}}{{#prompt}}
Prompt: {{prompt}}{{/prompt}}{{#backup}}
Previous content saved to {{backup}}{{/backup}}`

type Config struct {
	ProjectsDir     string // override for ~/.claude/projects
	BackupDir       string // where restore safety copies go; empty = alongside target
	DiffContext     int    // unified diff context lines
	ReceiptTemplate string
}

type tomlConfig struct {
	ProjectsDir string `toml:"projects_dir"`
	BackupDir   string `toml:"backup_dir"`
	DiffContext int    `toml:"diff_context"`
}

// Load reads config from ~/.config/ccrewind/
func Load() (*Config, error) {
	cfg := &Config{
		DiffContext:     3,
		ReceiptTemplate: DefaultReceiptTemplate,
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil // Use defaults
	}

	configDir := filepath.Join(home, ".config", "ccrewind")
	tomlPath := filepath.Join(configDir, "config.toml")
	receiptPath := filepath.Join(configDir, "receipt_template.txt")

	// Load TOML config if it exists
	if _, err := os.Stat(tomlPath); err == nil {
		var tc tomlConfig
		if _, err := toml.DecodeFile(tomlPath, &tc); err == nil {
			if tc.ProjectsDir != "" {
				cfg.ProjectsDir = tc.ProjectsDir
			}
			if tc.BackupDir != "" {
				cfg.BackupDir = tc.BackupDir
			}
			if tc.DiffContext > 0 {
				cfg.DiffContext = tc.DiffContext
			}
		}
	}

	// If custom receipt template exists, use it
	if data, err := os.ReadFile(receiptPath); err == nil {
		cfg.ReceiptTemplate = strings.TrimSpace(string(data))
	}

	return cfg, nil
}

// CacheDBPath returns the default scan cache location
func CacheDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ccrewind-cache.db"
	}
	return filepath.Join(home, ".config", "ccrewind", "cache.db")
}
