package timeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/neilberkman/ccrewind/internal/core/models"
)

// Index holds the lookup structures over one merged event order. Built
// once per Timeline and immutable afterwards; any change to the logs
// means a rebuild, never a patch.
type Index struct {
	events   []models.Event
	position map[string]int   // uuid -> global position
	byPath   map[string][]int // path -> positions of mutating events
}

func newIndex(events []models.Event) *Index {
	ix := &Index{
		events:   events,
		position: make(map[string]int, len(events)),
		byPath:   make(map[string][]int),
	}
	for i, ev := range events {
		ix.position[ev.UUID] = i
		if ev.TargetPath != "" && ev.Operation.Mutating() {
			ix.byPath[ev.TargetPath] = append(ix.byPath[ev.TargetPath], i)
		}
	}
	return ix
}

// ByUUID returns the event with the given uuid
func (ix *Index) ByUUID(uuid string) (models.Event, bool) {
	pos, ok := ix.position[uuid]
	if !ok {
		return models.Event{}, false
	}
	return ix.events[pos], true
}

// Position returns the global position of a uuid, for before/after
// comparisons
func (ix *Index) Position(uuid string) (int, bool) {
	pos, ok := ix.position[uuid]
	return pos, ok
}

// At returns the event at a global position
func (ix *Index) At(pos int) models.Event {
	return ix.events[pos]
}

// Len returns the number of events in global order
func (ix *Index) Len() int {
	return len(ix.events)
}

// PathPositions returns the global positions of all mutating events
// touching path, in global order
func (ix *Index) PathPositions(path string) []int {
	return ix.byPath[path]
}

// PathEvents returns all mutating events touching path, in global order
func (ix *Index) PathEvents(path string) []models.Event {
	positions := ix.byPath[path]
	events := make([]models.Event, len(positions))
	for i, pos := range positions {
		events[i] = ix.events[pos]
	}
	return events
}

// Paths returns every path with at least one mutating event, sorted
func (ix *Index) Paths() []string {
	paths := make([]string, 0, len(ix.byPath))
	for p := range ix.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ResolvePrefix expands a uuid prefix to the full uuid. Ambiguous or
// unknown prefixes are errors.
func (ix *Index) ResolvePrefix(prefix string) (string, error) {
	if _, ok := ix.position[prefix]; ok {
		return prefix, nil
	}
	match := ""
	for uuid := range ix.position {
		if strings.HasPrefix(uuid, prefix) {
			if match != "" {
				return "", fmt.Errorf("ambiguous event id %q", prefix)
			}
			match = uuid
		}
	}
	if match == "" {
		return "", fmt.Errorf("unknown event id %q", prefix)
	}
	return match, nil
}
