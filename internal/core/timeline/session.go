package timeline

import (
	"sort"

	"github.com/neilberkman/ccrewind/internal/core/models"
)

// Session is one internally ordered event stream sharing a session ID
type Session struct {
	ID     string
	Events []models.Event
}

// NewSession orders events by their parent chain. When the chain is broken
// or branches (sidechains), it falls back to timestamp order, with the
// source line number as the tie-break.
func NewSession(id string, events []models.Event) *Session {
	s := &Session{ID: id, Events: chainOrder(events)}
	return s
}

func chainOrder(events []models.Event) []models.Event {
	if len(events) < 2 {
		return events
	}

	byUUID := make(map[string]int, len(events))
	for i, ev := range events {
		byUUID[ev.UUID] = i
	}

	// One child per parent, exactly one root, no cycles: a clean chain.
	children := make(map[string][]int)
	roots := 0
	for i, ev := range events {
		if _, ok := byUUID[ev.ParentUUID]; ev.ParentUUID == "" || !ok {
			roots++
			continue
		}
		children[ev.ParentUUID] = append(children[ev.ParentUUID], i)
	}

	linear := roots == 1
	for _, c := range children {
		if len(c) > 1 {
			linear = false
			break
		}
	}

	if linear {
		ordered := make([]models.Event, 0, len(events))
		cur := -1
		for i, ev := range events {
			if _, ok := byUUID[ev.ParentUUID]; ev.ParentUUID == "" || !ok {
				cur = i
				break
			}
		}
		for cur >= 0 {
			ordered = append(ordered, events[cur])
			next := children[events[cur].UUID]
			if len(next) == 0 {
				break
			}
			cur = next[0]
		}
		if len(ordered) == len(events) {
			return ordered
		}
		// Chain did not cover every event; fall through to timestamp order
	}

	ordered := make([]models.Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Timestamp.Before(ordered[j].Timestamp)
		}
		return ordered[i].Sequence < ordered[j].Sequence
	})
	return ordered
}
