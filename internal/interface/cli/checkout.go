package cli

import (
	"fmt"
	"path/filepath"

	"github.com/cbroglie/mustache"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/ccrewind/internal/core/checkpoint"
	"github.com/neilberkman/ccrewind/internal/core/config"
	"github.com/neilberkman/ccrewind/internal/core/models"
	"github.com/neilberkman/ccrewind/internal/core/reconstruct"
	"github.com/neilberkman/ccrewind/internal/core/restore"
)

var checkoutAt string

var checkoutCmd = &cobra.Command{
	Use:   "checkout <path>",
	Short: "Restore a file to a logged state",
	Long: `Rebuild a file's content as of a point in the timeline and write it
back to disk. The current file is backed up first. Without --at, an
interactive picker lists the file's checkpoints.

Examples:
  ccrewind checkout src/app.py
  ccrewind checkout src/app.py --at abc123
  ccrewind checkout src/app.py --at "this morning"`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckout,
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
	checkoutCmd.Flags().StringVar(&checkoutAt, "at", "", "Event id, id prefix, or time")
}

func runCheckout(cmd *cobra.Command, args []string) error {
	tl, cfg, err := loadTimeline()
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	var uuid string
	if checkoutAt != "" {
		uuid, err = resolveAt(tl, path, checkoutAt)
		if err != nil {
			return err
		}
	} else {
		cps := checkpoint.New(tl).History(path)
		if len(cps) == 0 {
			return fmt.Errorf("no checkpoints recorded for %s", path)
		}
		picked, err := pickCheckpoint(cps)
		if err != nil {
			return err
		}
		if picked == nil {
			return nil // cancelled
		}
		uuid = picked.MutatingUUID
	}

	snap, err := reconstruct.New(tl).Reconstruct(path, uuid)
	if err != nil {
		return err
	}

	exec := restore.Executor{BackupDir: cfg.BackupDir}
	res, err := exec.Restore(snap)
	if err != nil {
		return err
	}

	ev, _ := tl.Index().ByUUID(uuid)
	printReceipt(cfg, ev, res)
	return nil
}

// printReceipt renders the configured mustache receipt for one restore
func printReceipt(cfg *config.Config, ev models.Event, res *restore.Result) {
	data := map[string]interface{}{
		"path":       res.Path,
		"event":      ev.UUID,
		"timestamp":  ev.Timestamp.Format("2006-01-02 15:04:05"),
		"time_since": humanize.Time(ev.Timestamp),
		"prompt":     firstLine(ev.Text),
		"backup":     res.BackupPath,
	}
	out, err := mustache.Render(cfg.ReceiptTemplate, data)
	if err != nil {
		// Fall back to a plain summary if the template is broken
		out = fmt.Sprintf("Restored %s (backup: %s)", res.Path, res.BackupPath)
	}
	fmt.Println(out)
}
