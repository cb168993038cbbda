package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neilberkman/ccrewind/internal/core/config"
	"github.com/neilberkman/ccrewind/internal/core/models"
	"github.com/neilberkman/ccrewind/internal/core/scancache"
	"github.com/neilberkman/ccrewind/internal/core/timeline"
	"github.com/neilberkman/ccrewind/internal/core/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail the project's session logs and print new checkpoints",
	Long: `Follow the project's session logs as Claude writes them, printing each
new file mutation as it lands. Re-read lines are deduplicated by event
id, so log rewrites are harmless.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	_, logDir, err := resolveProject(cfg)
	if err != nil {
		return err
	}

	cache, err := scancache.Open(config.CacheDBPath())
	if err != nil {
		// The cache is an optimization; watch still works without it
		fmt.Fprintf(os.Stderr, "Warning: scan cache unavailable: %v\n", err)
		cache = nil
	} else {
		defer func() {
			_ = cache.Close()
		}()
	}

	w, err := watch.New(logDir, cache, printFresh)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s (ctrl-c to stop)\n", logDir)
	return w.Start(ctx)
}

var watchPrimed bool

// printFresh reports newly observed mutations. The initial build is
// summarized rather than replayed line by line.
func printFresh(tl *timeline.Timeline, fresh []models.Event) {
	if !watchPrimed {
		watchPrimed = true
		fmt.Printf("Timeline ready: %d events across %d session(s)\n", len(tl.Events), len(tl.Sessions))
		return
	}
	for _, ev := range fresh {
		if !ev.Operation.Mutating() {
			continue
		}
		fmt.Printf("%s %s %s\n",
			uuidStyle.Render(shortUUID(ev.UUID)),
			ev.Operation,
			pathStyle.Render(ev.TargetPath),
		)
	}
}
