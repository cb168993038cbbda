// Package blame attributes every line of a file's latest reconstructed
// content to the event that introduced it.
package blame

import (
	"errors"
	"fmt"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/neilberkman/ccrewind/internal/core/models"
	"github.com/neilberkman/ccrewind/internal/core/reconstruct"
	"github.com/neilberkman/ccrewind/internal/core/timeline"
)

// Line is one attributed line of the final content
type Line struct {
	Number    int
	Text      string
	UUID      string
	SessionID string
	Timestamp time.Time
	Operation models.Operation
}

type origin struct {
	uuid      string
	sessionID string
	timestamp time.Time
	operation models.Operation
}

// File replays every mutating event of path in global order, diffing
// consecutive snapshots to carry line attributions forward. Unchanged
// lines keep their original event; replaced or inserted lines take the
// event that produced the newer snapshot.
func File(tl *timeline.Timeline, path string) ([]Line, error) {
	events := tl.Index().PathEvents(path)
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s has no mutating events", reconstruct.ErrNoBaseSnapshot, path)
	}
	r := reconstruct.New(tl)

	var (
		prevLines []string
		prevAttr  []origin
		replayed  bool
	)

	for _, ev := range events {
		snap, err := r.Reconstruct(path, ev.UUID)
		if err != nil {
			// A pre-existing file is often first touched by an Edit
			// before any Write captures it. Attribution starts at the
			// first reconstructable snapshot.
			if errors.Is(err, reconstruct.ErrNoBaseSnapshot) {
				continue
			}
			return nil, err
		}
		replayed = true
		curLines := splitLines(string(snap.Content))
		curAttr := make([]origin, len(curLines))
		who := origin{uuid: ev.UUID, sessionID: ev.SessionID, timestamp: ev.Timestamp, operation: ev.Operation}

		matcher := difflib.NewMatcher(prevLines, curLines)
		for _, op := range matcher.GetOpCodes() {
			switch op.Tag {
			case 'e':
				for k := 0; k < op.I2-op.I1; k++ {
					curAttr[op.J1+k] = prevAttr[op.I1+k]
				}
			case 'r', 'i':
				for j := op.J1; j < op.J2; j++ {
					curAttr[j] = who
				}
			}
		}

		prevLines, prevAttr = curLines, curAttr
	}

	if !replayed {
		return nil, fmt.Errorf("%w: %s", reconstruct.ErrNoBaseSnapshot, path)
	}

	lines := make([]Line, len(prevLines))
	for i, text := range prevLines {
		lines[i] = Line{
			Number:    i + 1,
			Text:      text,
			UUID:      prevAttr[i].uuid,
			SessionID: prevAttr[i].sessionID,
			Timestamp: prevAttr[i].timestamp,
			Operation: prevAttr[i].operation,
		}
	}
	return lines, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
