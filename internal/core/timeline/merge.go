package timeline

import (
	"container/heap"

	"github.com/neilberkman/ccrewind/internal/core/models"
)

// mergeSessions produces the global event order from k internally ordered
// sessions: a k-way merge by timestamp with (timestamp, session_id,
// intra-session position) as the full sort key. The result is a pure
// function of the sessions, independent of the order they were passed in.
// Events are deduplicated by uuid; the first occurrence wins.
func mergeSessions(sessions []*Session) []models.Event {
	total := 0
	h := make(mergeHeap, 0, len(sessions))
	for _, s := range sessions {
		if len(s.Events) == 0 {
			continue
		}
		total += len(s.Events)
		h = append(h, cursor{session: s, pos: 0})
	}
	heap.Init(&h)

	merged := make([]models.Event, 0, total)
	seen := make(map[string]struct{}, total)

	for h.Len() > 0 {
		c := h[0]
		ev := c.session.Events[c.pos]
		if c.pos+1 < len(c.session.Events) {
			h[0].pos++
			heap.Fix(&h, 0)
		} else {
			heap.Pop(&h)
		}

		if _, dup := seen[ev.UUID]; dup {
			continue
		}
		seen[ev.UUID] = struct{}{}
		merged = append(merged, ev)
	}
	return merged
}

// cursor points at the next unmerged event of one session
type cursor struct {
	session *Session
	pos     int
}

type mergeHeap []cursor

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	a := h[i].session.Events[h[i].pos]
	b := h[j].session.Events[h[j].pos]
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	if a.SessionID != b.SessionID {
		return a.SessionID < b.SessionID
	}
	// Same session id across cursors means one session split over
	// several files; uuid keeps the order a function of the events
	// alone, not of which file came first.
	return a.UUID < b.UUID
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) { *h = append(*h, x.(cursor)) }

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
