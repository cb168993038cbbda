// Package timeline merges per-session event logs into one globally
// ordered, immutable view with index lookups over it.
package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/neilberkman/ccrewind/internal/core/models"
	"github.com/neilberkman/ccrewind/pkg/cclog"
)

// Issue is one parse problem attributed to its source file. Issues never
// abort a build; partial success is the norm with externally produced
// logs.
type Issue struct {
	File string
	Line int
	Err  error
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%d: %v", i.File, i.Line, i.Err)
}

// SessionInfo summarizes one source session for display
type SessionInfo struct {
	ID         string
	Summary    string
	FilePath   string
	EventCount int
	FirstEvent time.Time
	LastEvent  time.Time
}

// Timeline is the merged, deduplicated, chronologically ordered event
// sequence across every session of a project. Read-only after Build; safe
// for concurrent readers.
type Timeline struct {
	Events   []models.Event
	Sessions []SessionInfo
	Issues   []Issue

	index *Index
}

// Build parses every log file and merges the sessions into one timeline.
// The resulting order does not depend on the order of logPaths.
func Build(logPaths []string) (*Timeline, error) {
	var (
		sessions []*Session
		infos    []SessionInfo
		issues   []Issue
	)

	for _, path := range logPaths {
		log, err := cclog.ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for _, perr := range log.Errors {
			issues = append(issues, Issue{File: path, Line: perr.Line, Err: perr.Err})
		}
		if len(log.Events) == 0 {
			continue
		}
		s := NewSession(log.SessionID, log.Events)
		sessions = append(sessions, s)
		infos = append(infos, SessionInfo{
			ID:         s.ID,
			Summary:    log.Summary,
			FilePath:   path,
			EventCount: len(s.Events),
			FirstEvent: s.Events[0].Timestamp,
			LastEvent:  s.Events[len(s.Events)-1].Timestamp,
		})
	}

	tl := FromSessions(sessions)
	tl.Issues = issues
	sort.Slice(infos, func(i, j int) bool { return infos[i].FirstEvent.Before(infos[j].FirstEvent) })
	tl.Sessions = infos
	return tl, nil
}

// FromSessions merges already-parsed sessions. Used by Build, the watch
// loop, and tests.
func FromSessions(sessions []*Session) *Timeline {
	events := mergeSessions(sessions)
	return &Timeline{
		Events: events,
		index:  newIndex(events),
	}
}

// Index returns the lookup structures for this timeline
func (t *Timeline) Index() *Index {
	return t.index
}

// EventAt returns the newest event with a timestamp at or before the
// given instant
func (t *Timeline) EventAt(at time.Time) (models.Event, bool) {
	// Global order is timestamp order, so binary search applies
	n := sort.Search(len(t.Events), func(i int) bool {
		return t.Events[i].Timestamp.After(at)
	})
	if n == 0 {
		return models.Event{}, false
	}
	return t.Events[n-1], true
}

// PathEventAt returns the newest mutating event for path at or before the
// given instant
func (t *Timeline) PathEventAt(path string, at time.Time) (models.Event, bool) {
	var found models.Event
	ok := false
	for _, ev := range t.index.PathEvents(path) {
		if ev.Timestamp.After(at) {
			break
		}
		found = ev
		ok = true
	}
	return found, ok
}

// UUIDs returns the set of event uuids already in the timeline, used by
// the watch loop to deduplicate re-read lines
func (t *Timeline) UUIDs() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Events))
	for _, ev := range t.Events {
		set[ev.UUID] = struct{}{}
	}
	return set
}
