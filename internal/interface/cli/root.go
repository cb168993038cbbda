package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neilberkman/ccrewind/internal/core/config"
	"github.com/neilberkman/ccrewind/internal/core/discover"
	"github.com/neilberkman/ccrewind/internal/core/timeline"
)

var (
	projectPath string
	projectsDir string
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ccrewind",
	Short: "Git-like history over Claude Code sessions",
	Long: `ccrewind - navigate and restore file states from Claude Code session logs

Reconstructs what every file looked like at any point in your Claude Code
history and offers status, log, diff, checkout, reset, revert, and blame
over it. The session logs are never modified; every undo is a replay.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectPath, "project", "", "Project path (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&projectsDir, "projects-dir", "", "Claude projects directory (default: ~/.claude/projects)")
}

// resolveProject returns the project path and its log directory
func resolveProject(cfg *config.Config) (string, string, error) {
	project := projectPath
	if project == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", fmt.Errorf("failed to get working directory: %w", err)
		}
		project = cwd
	}
	project = filepath.Clean(project)

	dir := projectsDir
	if dir == "" {
		dir = cfg.ProjectsDir
	}
	if dir == "" {
		var err error
		dir, err = discover.DefaultProjectsDir()
		if err != nil {
			return "", "", err
		}
	}
	return project, discover.ProjectLogDir(dir, project), nil
}

// loadTimeline builds the timeline for the selected project and reports
// parse issues to stderr without failing.
func loadTimeline() (*timeline.Timeline, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	project, logDir, err := resolveProject(cfg)
	if err != nil {
		return nil, nil, err
	}

	files, err := discover.SessionFiles(logDir)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no session logs found for %s (looked in %s)", project, logDir)
	}

	tl, err := timeline.Build(files)
	if err != nil {
		return nil, nil, err
	}
	for _, issue := range tl.Issues {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", issue)
	}
	return tl, cfg, nil
}
