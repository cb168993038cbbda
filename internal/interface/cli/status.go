package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neilberkman/ccrewind/internal/core/reconstruct"
)

var statusCmd = &cobra.Command{
	Use:   "status [path...]",
	Short: "Compare tracked files against their last logged state",
	Long: `Show, for every file Claude touched in this project, whether the file on
disk still matches its most recent reconstructable state.

Examples:
  ccrewind status
  ccrewind status src/app.py`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	tl, _, err := loadTimeline()
	if err != nil {
		return err
	}

	paths := tl.Index().Paths()
	if len(args) > 0 {
		paths = nil
		for _, arg := range args {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", arg, err)
			}
			paths = append(paths, abs)
		}
	}

	if len(paths) == 0 {
		fmt.Println("No file mutations recorded for this project.")
		return nil
	}

	r := reconstruct.New(tl)
	for _, path := range paths {
		snap, err := r.Latest(path)
		switch {
		case errors.Is(err, reconstruct.ErrNoBaseSnapshot):
			fmt.Printf("  %s %s\n", modifiedStyle.Render("??"), path)
			continue
		case err != nil:
			fmt.Printf("  %s %s (%v)\n", removedStyle.Render("!!"), path, err)
			continue
		}

		live, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			fmt.Printf("  %s %s (deleted on disk)\n", removedStyle.Render(" D"), path)
		case err != nil:
			fmt.Printf("  %s %s (%v)\n", removedStyle.Render("!!"), path, err)
		case bytes.Equal(live, snap.Content):
			fmt.Printf("  %s %s\n", cleanStyle.Render("ok"), path)
		default:
			fmt.Printf("  %s %s\n", modifiedStyle.Render(" M"), path)
		}
	}
	return nil
}
