// Package checkpoint finds recoverable points in a timeline: the last
// mutation of a path and the human turn that caused it.
package checkpoint

import (
	"strings"

	"github.com/neilberkman/ccrewind/internal/core/models"
	"github.com/neilberkman/ccrewind/internal/core/timeline"
)

// Detector answers checkpoint queries over one timeline
type Detector struct {
	tl *timeline.Timeline
}

// New creates a detector for a built timeline
func New(tl *timeline.Timeline) *Detector {
	return &Detector{tl: tl}
}

// Detect returns the most recent checkpoint for path, or false when no
// mutating event touches it.
func (d *Detector) Detect(path string) (models.Checkpoint, bool) {
	positions := d.tl.Index().PathPositions(path)
	if len(positions) == 0 {
		return models.Checkpoint{}, false
	}
	return d.at(positions[len(positions)-1]), true
}

// History returns one checkpoint per mutating event of path, oldest
// first.
func (d *Detector) History(path string) []models.Checkpoint {
	positions := d.tl.Index().PathPositions(path)
	cps := make([]models.Checkpoint, len(positions))
	for i, pos := range positions {
		cps[i] = d.at(pos)
	}
	return cps
}

// at builds the checkpoint for the mutating event at a global position.
// The trigger walk runs backward through the merged timeline across
// sessions, not just the mutating event's own session. A timeline with no
// leading human turn (a resumed session, say) yields an empty trigger,
// which is not an error.
func (d *Detector) at(pos int) models.Checkpoint {
	ix := d.tl.Index()
	mutating := ix.At(pos)

	cp := models.Checkpoint{
		TargetPath:   mutating.TargetPath,
		MutatingUUID: mutating.UUID,
		Timestamp:    mutating.Timestamp,
		Operation:    mutating.Operation,
		SessionID:    mutating.SessionID,
	}

	for i := pos - 1; i >= 0; i-- {
		ev := ix.At(i)
		if ev.Actor == models.ActorHuman {
			cp.TriggerUUID = ev.UUID
			cp.Prompt = strings.TrimSpace(ev.Text)
			break
		}
	}
	return cp
}
