package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List the sessions behind this project's timeline",
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	tl, _, err := loadTimeline()
	if err != nil {
		return err
	}

	if len(tl.Sessions) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}

	fmt.Printf("%d session(s), %d event(s) merged\n\n", len(tl.Sessions), len(tl.Events))
	for i, s := range tl.Sessions {
		fmt.Printf("[%d] %s\n", i+1, uuidStyle.Render(s.ID))
		if s.Summary != "" {
			fmt.Printf("    %s\n", s.Summary)
		}
		fmt.Printf("    %d events · %s – %s\n",
			s.EventCount,
			s.FirstEvent.Format("2006-01-02 15:04"),
			timestampStyle.Render(humanize.Time(s.LastEvent)),
		)
	}
	return nil
}
