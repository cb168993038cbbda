package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/ccrewind/internal/core/reconstruct"
	"github.com/neilberkman/ccrewind/internal/core/restore"
)

var (
	resetAt     string
	resetDryRun bool
)

var resetCmd = &cobra.Command{
	Use:   "reset --at <event|time>",
	Short: "Restore every file to its state at a point in time",
	Long: `Roll the working tree back to a point in the timeline: every file
mutated after that point is restored to its reconstructed state there.
Files without a reconstructable state at that point are reported and
skipped. The logs themselves are never touched.

Examples:
  ccrewind reset --at abc123
  ccrewind reset --at "before lunch" --dry-run`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().StringVar(&resetAt, "at", "", "Event id, id prefix, or time (required)")
	resetCmd.Flags().BoolVar(&resetDryRun, "dry-run", false, "Show what would be restored without writing")
	_ = resetCmd.MarkFlagRequired("at")
}

func runReset(cmd *cobra.Command, args []string) error {
	tl, cfg, err := loadTimeline()
	if err != nil {
		return err
	}

	uuid, err := resolveAt(tl, "", resetAt)
	if err != nil {
		return err
	}
	ix := tl.Index()
	limit, _ := ix.Position(uuid)

	// Paths touched after the reset point need restoring
	var targets []string
	for _, path := range ix.Paths() {
		positions := ix.PathPositions(path)
		if positions[len(positions)-1] > limit {
			targets = append(targets, path)
		}
	}

	if len(targets) == 0 {
		fmt.Printf("Nothing changed after %s; working tree already matches.\n", shortUUID(uuid))
		return nil
	}

	r := reconstruct.New(tl)
	exec := restore.Executor{BackupDir: cfg.BackupDir}
	restored, skipped := 0, 0

	for _, path := range targets {
		snap, err := r.Reconstruct(path, uuid)
		if errors.Is(err, reconstruct.ErrNoBaseSnapshot) {
			fmt.Printf("  skip %s (no content recorded at that point)\n", path)
			skipped++
			continue
		}
		if err != nil {
			return err
		}

		if resetDryRun {
			fmt.Printf("  would restore %s (%d bytes)\n", path, len(snap.Content))
			restored++
			continue
		}

		res, err := exec.Restore(snap)
		if err != nil {
			return fmt.Errorf("failed to restore %s: %w", path, err)
		}
		fmt.Printf("  restored %s", path)
		if res.BackupPath != "" {
			fmt.Printf(" (backup: %s)", res.BackupPath)
		}
		fmt.Println()
		restored++
	}

	verb := "Restored"
	if resetDryRun {
		verb = "Would restore"
	}
	fmt.Printf("%s %d file(s) to %s; %d skipped.\n", verb, restored, shortUUID(uuid), skipped)
	return nil
}
