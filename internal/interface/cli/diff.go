package cli

import (
	"fmt"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/neilberkman/ccrewind/internal/core/diffengine"
	"github.com/neilberkman/ccrewind/internal/core/models"
	"github.com/neilberkman/ccrewind/internal/core/reconstruct"
	"github.com/neilberkman/ccrewind/internal/core/timeline"
)

var (
	diffAt      string
	diffAgainst string
	diffCopy    bool
	diffNoColor bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <path>",
	Short: "Diff a reconstructed state against disk or another state",
	Long: `Show what checking out a past state would change. By default the
snapshot at --at (or the latest logged state) is diffed against the file
on disk; with --against, two logged states are diffed instead.

Examples:
  ccrewind diff src/app.py
  ccrewind diff src/app.py --at "yesterday 5pm"
  ccrewind diff src/app.py --at abc123 --against def456
  ccrewind diff src/app.py --copy`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVar(&diffAt, "at", "", "Event id, id prefix, or time (natural language works)")
	diffCmd.Flags().StringVar(&diffAgainst, "against", "", "Second event id/time; diffs snapshot-to-snapshot")
	diffCmd.Flags().BoolVar(&diffCopy, "copy", false, "Copy the raw diff to the clipboard")
	diffCmd.Flags().BoolVar(&diffNoColor, "no-color", false, "Disable colored output")
}

func runDiff(cmd *cobra.Command, args []string) error {
	tl, cfg, err := loadTimeline()
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	r := reconstruct.New(tl)

	first, err := snapshotAt(tl, r, path, diffAt)
	if err != nil {
		return err
	}

	var text string
	if diffAgainst != "" {
		second, err := snapshotAt(tl, r, path, diffAgainst)
		if err != nil {
			return err
		}
		text, err = diffengine.Snapshots(first, second, cfg.DiffContext)
		if err != nil {
			return err
		}
	} else {
		text, err = diffengine.AgainstDisk(first, cfg.DiffContext)
		if err != nil {
			return err
		}
	}

	if text == "" {
		fmt.Println("No differences.")
		return nil
	}

	if diffCopy {
		if err := clipboard.WriteAll(text); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to copy to clipboard: %v\n", err)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Diff copied to clipboard.")
		}
	}

	if diffNoColor {
		fmt.Print(text)
	} else {
		fmt.Print(colorizeDiff(text))
	}
	return nil
}

// snapshotAt reconstructs path at an --at value, or at its newest state
// when the value is empty
func snapshotAt(tl *timeline.Timeline, r *reconstruct.Reconstructor, path, at string) (*models.Snapshot, error) {
	if at == "" {
		return r.Latest(path)
	}
	uuid, err := resolveAt(tl, path, at)
	if err != nil {
		return nil, err
	}
	return r.Reconstruct(path, uuid)
}
