package cli

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/ccrewind/internal/core/blame"
)

var blameCmd = &cobra.Command{
	Use:   "blame <path>",
	Short: "Show which event introduced each line",
	Long: `Annotate every line of a file's latest reconstructed content with the
event that introduced it.

Examples:
  ccrewind blame src/app.py`,
	Args: cobra.ExactArgs(1),
	RunE: runBlame,
}

func init() {
	rootCmd.AddCommand(blameCmd)
}

func runBlame(cmd *cobra.Command, args []string) error {
	tl, _, err := loadTimeline()
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	lines, err := blame.File(tl, path)
	if err != nil {
		return err
	}

	for _, line := range lines {
		fmt.Printf("%s %s %4d  %s\n",
			uuidStyle.Render(fmt.Sprintf("%-10s", shortUUID(line.UUID))),
			timestampStyle.Render(fmt.Sprintf("%-14s", humanize.Time(line.Timestamp))),
			line.Number,
			line.Text,
		)
	}
	return nil
}
