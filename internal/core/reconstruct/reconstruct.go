// Package reconstruct replays logged events to materialize the content
// of a file as of any point in the timeline. The log is never written;
// every rewind is a read.
package reconstruct

import (
	"errors"
	"fmt"
	"strings"

	"github.com/neilberkman/ccrewind/internal/core/models"
	"github.com/neilberkman/ccrewind/internal/core/timeline"
)

// ErrUnknownEvent means the requested point in time does not exist
var ErrUnknownEvent = errors.New("unknown event")

// ErrNoBaseSnapshot means no full content for the file exists at or
// before the requested point: the file predates the log or was never
// fully captured
var ErrNoBaseSnapshot = errors.New("no base snapshot in log")

// DeltaConflictError means a recorded old-string was not present in the
// running content. It signals log/filesystem divergence and is never
// resolved silently.
type DeltaConflictError struct {
	Path string
	UUID string
	Pair int // index within the event's delta list
	Old  string
}

func (e *DeltaConflictError) Error() string {
	old := e.Old
	if len(old) > 40 {
		old = old[:40] + "..."
	}
	return fmt.Sprintf("delta conflict at event %s (pair %d) for %s: old string %q not found", e.UUID, e.Pair, e.Path, old)
}

// Reconstructor replays events from one timeline
type Reconstructor struct {
	tl *timeline.Timeline
}

// New creates a reconstructor over a built timeline
func New(tl *timeline.Timeline) *Reconstructor {
	return &Reconstructor{tl: tl}
}

// Reconstruct returns the content of path as of the event asOf. The scan
// walks the path's mutating events backward from asOf until it hits full
// content, then replays any intervening deltas forward.
func (r *Reconstructor) Reconstruct(path, asOf string) (*models.Snapshot, error) {
	ix := r.tl.Index()
	limit, ok := ix.Position(asOf)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, asOf)
	}
	return r.reconstructAt(path, asOf, limit)
}

// Latest returns the content of path after its newest mutating event
func (r *Reconstructor) Latest(path string) (*models.Snapshot, error) {
	positions := r.tl.Index().PathPositions(path)
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: %s has no mutating events", ErrNoBaseSnapshot, path)
	}
	last := positions[len(positions)-1]
	return r.reconstructAt(path, r.tl.Index().At(last).UUID, last)
}

// Before returns the content of path as it was just before the event
// uuid, replaying only events at strictly earlier global positions.
func (r *Reconstructor) Before(path, uuid string) (*models.Snapshot, error) {
	ix := r.tl.Index()
	pos, ok := ix.Position(uuid)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, uuid)
	}
	return r.reconstructAt(path, uuid, pos-1)
}

func (r *Reconstructor) reconstructAt(path, asOf string, limit int) (*models.Snapshot, error) {
	ix := r.tl.Index()
	positions := ix.PathPositions(path)

	// Qualifying events: global position <= limit, scanned newest first
	end := len(positions)
	for end > 0 && positions[end-1] > limit {
		end--
	}
	if end == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBaseSnapshot, path)
	}

	var pending []models.Event // delta events between base and asOf
	baseIdx := -1
	for i := end - 1; i >= 0; i-- {
		ev := ix.At(positions[i])
		if ev.ContentMode == models.ContentFull {
			baseIdx = i
			break
		}
		if ev.ContentMode == models.ContentDelta {
			pending = append(pending, ev)
		}
	}
	if baseIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBaseSnapshot, path)
	}

	content := string(ix.At(positions[baseIdx]).Content)

	// Replay deltas in forward chronological order
	for i := len(pending) - 1; i >= 0; i-- {
		ev := pending[i]
		var err error
		content, err = applyDeltas(content, &ev)
		if err != nil {
			return nil, err
		}
	}

	return &models.Snapshot{
		TargetPath: path,
		Content:    []byte(content),
		AsOf:       asOf,
	}, nil
}

// Revert returns the latest content of the event's file with that single
// event undone: delta events are inverted in place, full writes roll back
// to the state just before them.
func (r *Reconstructor) Revert(uuid string) (*models.Snapshot, error) {
	ix := r.tl.Index()
	ev, ok := ix.ByUUID(uuid)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, uuid)
	}
	if !ev.Operation.Mutating() {
		return nil, fmt.Errorf("event %s does not modify a file", uuid)
	}

	if ev.ContentMode == models.ContentFull {
		return r.Before(ev.TargetPath, uuid)
	}

	latest, err := r.Latest(ev.TargetPath)
	if err != nil {
		return nil, err
	}

	content := string(latest.Content)
	for i := len(ev.Deltas) - 1; i >= 0; i-- {
		pair := ev.Deltas[i]
		inverse := models.DeltaPair{Old: pair.New, New: pair.Old, ReplaceAll: pair.ReplaceAll}
		content, err = applyPair(content, inverse, &ev, i)
		if err != nil {
			return nil, err
		}
	}
	latest.Content = []byte(content)
	return latest, nil
}

func applyDeltas(content string, ev *models.Event) (string, error) {
	var err error
	for i, pair := range ev.Deltas {
		content, err = applyPair(content, pair, ev, i)
		if err != nil {
			return "", err
		}
	}
	return content, nil
}

func applyPair(content string, pair models.DeltaPair, ev *models.Event, idx int) (string, error) {
	if !strings.Contains(content, pair.Old) {
		return "", &DeltaConflictError{Path: ev.TargetPath, UUID: ev.UUID, Pair: idx, Old: pair.Old}
	}
	if pair.ReplaceAll {
		return strings.ReplaceAll(content, pair.Old, pair.New), nil
	}
	return strings.Replace(content, pair.Old, pair.New, 1), nil
}
