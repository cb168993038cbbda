package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/cbroglie/mustache"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/ccrewind/internal/core/checkpoint"
	"github.com/neilberkman/ccrewind/internal/core/models"
)

var (
	logLimit    int
	logTemplate string
)

var logCmd = &cobra.Command{
	Use:   "log [path]",
	Short: "Show checkpoint history",
	Long: `List checkpoints, newest first: every file mutation with the human
prompt that triggered it. With a path, only that file's history.

Examples:
  ccrewind log
  ccrewind log src/app.py
  ccrewind log --limit 5
  ccrewind log --template '{{uuid}} {{path}}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().IntVar(&logLimit, "limit", 20, "Maximum number of checkpoints to display")
	logCmd.Flags().StringVar(&logTemplate, "template", "", "Mustache template rendered per checkpoint")
}

func runLog(cmd *cobra.Command, args []string) error {
	tl, _, err := loadTimeline()
	if err != nil {
		return err
	}

	d := checkpoint.New(tl)
	var cps []models.Checkpoint
	if len(args) == 1 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", args[0], err)
		}
		cps = d.History(abs)
	} else {
		for _, path := range tl.Index().Paths() {
			cps = append(cps, d.History(path)...)
		}
		// Re-sort across paths; History is per-path chronological
		sortCheckpoints(cps)
	}

	if len(cps) == 0 {
		fmt.Println("No checkpoints found.")
		return nil
	}

	// Newest first, capped
	reverse(cps)
	if len(cps) > logLimit {
		cps = cps[:logLimit]
	}

	for _, cp := range cps {
		if logTemplate != "" {
			out, err := mustache.Render(logTemplate, checkpointData(&cp))
			if err != nil {
				return fmt.Errorf("failed to render template: %w", err)
			}
			fmt.Println(out)
			continue
		}

		fmt.Printf("%s %s %s (%s)\n",
			uuidStyle.Render(shortUUID(cp.MutatingUUID)),
			string(cp.Operation),
			pathStyle.Render(cp.TargetPath),
			timestampStyle.Render(humanize.Time(cp.Timestamp)),
		)
		if cp.Prompt != "" {
			fmt.Printf("    %s\n", promptStyle.Render(firstLine(cp.Prompt)))
		}
	}
	return nil
}

func checkpointData(cp *models.Checkpoint) map[string]interface{} {
	return map[string]interface{}{
		"uuid":      cp.MutatingUUID,
		"trigger":   cp.TriggerUUID,
		"path":      cp.TargetPath,
		"operation": string(cp.Operation),
		"session":   cp.SessionID,
		"timestamp": cp.Timestamp.Format(time.RFC3339),
		"prompt":    cp.Prompt,
	}
}

func sortCheckpoints(cps []models.Checkpoint) {
	sort.SliceStable(cps, func(i, j int) bool {
		return cps[i].Timestamp.Before(cps[j].Timestamp)
	})
}

func reverse(cps []models.Checkpoint) {
	for i, j := 0, len(cps)-1; i < j; i, j = i+1, j-1 {
		cps[i], cps[j] = cps[j], cps[i]
	}
}

func shortUUID(uuid string) string {
	if len(uuid) > 8 {
		return uuid[:8]
	}
	return uuid
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	if len(s) > 100 {
		return s[:100] + "..."
	}
	return s
}
