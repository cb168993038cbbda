// Package watch tails a project's session log directory and rebuilds the
// timeline when logs grow. Appended lines are read at-least-once; events
// already indexed are deduplicated by uuid, so a re-read is a no-op.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/neilberkman/ccrewind/internal/core/discover"
	"github.com/neilberkman/ccrewind/internal/core/models"
	"github.com/neilberkman/ccrewind/internal/core/scancache"
	"github.com/neilberkman/ccrewind/internal/core/timeline"
)

// UpdateFunc receives the rebuilt timeline and the events that were not
// in the previous one, in global order
type UpdateFunc func(tl *timeline.Timeline, fresh []models.Event)

// Watcher tails one project log directory
type Watcher struct {
	logDir   string
	cache    *scancache.Cache
	watcher  *fsnotify.Watcher
	onUpdate UpdateFunc
}

// New creates a watcher over a project's log directory. The cache is
// optional; without it every change triggers a full re-parse.
func New(logDir string, cache *scancache.Cache, onUpdate UpdateFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if _, err := os.Stat(logDir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch path does not exist: %s", logDir)
	}
	return &Watcher{
		logDir:   logDir,
		cache:    cache,
		watcher:  fw,
		onUpdate: onUpdate,
	}, nil
}

// Start builds the initial timeline, then loops on filesystem events
// until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.logDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.logDir, err)
	}

	log.Printf("Watching: %s", w.logDir)

	tl, err := w.rebuild()
	if err != nil {
		return err
	}
	w.onUpdate(tl, tl.Events)
	known := tl.UUIDs()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Watcher shutting down...")
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if !shouldProcess(event) {
				continue
			}

			// Give the writer a moment to finish the line
			time.Sleep(100 * time.Millisecond)

			if w.cache != nil {
				changed, cerr := w.cache.Changed(event.Name)
				if cerr == nil && !changed {
					continue
				}
			}

			next, rerr := w.rebuild()
			if rerr != nil {
				log.Printf("Rebuild failed: %v", rerr)
				continue
			}

			var fresh []models.Event
			for _, ev := range next.Events {
				if _, seen := known[ev.UUID]; !seen {
					fresh = append(fresh, ev)
				}
			}
			known = next.UUIDs()
			if len(fresh) > 0 {
				w.onUpdate(next, fresh)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

// rebuild re-parses every log file and records fresh cursors. Ordering
// always comes from a full merge; the cache only skips redundant parses
// upstream.
func (w *Watcher) rebuild() (*timeline.Timeline, error) {
	files, err := discover.SessionFiles(w.logDir)
	if err != nil {
		return nil, err
	}
	tl, err := timeline.Build(files)
	if err != nil {
		return nil, err
	}
	for _, issue := range tl.Issues {
		log.Printf("Warning: %s", issue)
	}

	if w.cache != nil {
		w.storeCursors(files, tl)
	}
	return tl, nil
}

func (w *Watcher) storeCursors(files []string, tl *timeline.Timeline) {
	lastBySession := make(map[string]models.Event)
	for _, ev := range tl.Events {
		lastBySession[ev.SessionID] = ev
	}

	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		hash, err := scancache.FileHash(path)
		if err != nil {
			continue
		}
		cur := &scancache.Cursor{
			Path:   path,
			SHA256: hash,
			Size:   info.Size(),
			Mtime:  info.ModTime(),
		}
		for _, s := range tl.Sessions {
			if s.FilePath == path {
				if last, ok := lastBySession[s.ID]; ok {
					cur.LastUUID = last.UUID
					cur.LastLine = last.Sequence
				}
			}
		}
		if err := w.cache.Store(cur); err != nil {
			log.Printf("Warning: failed to store cursor for %s: %v", filepath.Base(path), err)
		}
	}
}

func shouldProcess(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".jsonl") {
		return false
	}
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create
}
