package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/ccrewind/internal/core/diffengine"
	"github.com/neilberkman/ccrewind/internal/core/reconstruct"
	"github.com/neilberkman/ccrewind/internal/core/restore"
)

var revertDryRun bool

var revertCmd = &cobra.Command{
	Use:   "revert <event>",
	Short: "Undo one event while keeping later changes",
	Long: `Apply the inverse of a single event to the file's latest reconstructed
state and write the result back. Edits are inverted in place; a full
write rolls the file back to its state just before the event. Later
changes that overlap the reverted text surface as delta conflicts rather
than being guessed around.

Examples:
  ccrewind revert abc123
  ccrewind revert abc123 --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runRevert,
}

func init() {
	rootCmd.AddCommand(revertCmd)
	revertCmd.Flags().BoolVar(&revertDryRun, "dry-run", false, "Show the resulting diff without writing")
}

func runRevert(cmd *cobra.Command, args []string) error {
	tl, cfg, err := loadTimeline()
	if err != nil {
		return err
	}

	uuid, err := tl.Index().ResolvePrefix(args[0])
	if err != nil {
		return err
	}

	snap, err := reconstruct.New(tl).Revert(uuid)
	if err != nil {
		return err
	}

	if revertDryRun {
		text, err := diffengine.AgainstDisk(snap, cfg.DiffContext)
		if err != nil {
			return err
		}
		if text == "" {
			fmt.Println("Revert would change nothing.")
			return nil
		}
		fmt.Print(colorizeDiff(text))
		return nil
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
