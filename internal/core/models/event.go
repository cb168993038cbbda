package models

import (
	"errors"
	"time"
)

// Actor identifies who authored a log record
type Actor string

const (
	ActorHuman     Actor = "human"
	ActorAssistant Actor = "assistant"
)

// Operation is the tool operation an Event records
type Operation string

const (
	OpRead      Operation = "Read"
	OpWrite     Operation = "Write"
	OpEdit      Operation = "Edit"
	OpMultiEdit Operation = "MultiEdit"
	OpOther     Operation = "Other"
)

// Mutating reports whether the operation changes file content
func (o Operation) Mutating() bool {
	switch o {
	case OpWrite, OpEdit, OpMultiEdit:
		return true
	}
	return false
}

// ContentMode describes what an Event's payload can contribute to
// reconstruction
type ContentMode string

const (
	ContentFull  ContentMode = "full"  // complete file content
	ContentDelta ContentMode = "delta" // old/new substring pairs
	ContentNone  ContentMode = "none"  // nothing usable for replay
)

// DeltaPair is one old/new substring replacement. Edit events carry one
// pair; MultiEdit events carry several, applied in order.
type DeltaPair struct {
	Old        string
	New        string
	ReplaceAll bool
}

// Event is one normalized tool-execution record from a session log
type Event struct {
	UUID        string
	ParentUUID  string // empty for a session's first event
	SessionID   string
	Timestamp   time.Time
	Actor       Actor
	Operation   Operation
	TargetPath  string // empty for non-file operations
	ContentMode ContentMode
	Content     []byte      // full file content when ContentMode is full
	Deltas      []DeltaPair // replacements when ContentMode is delta
	Text        string      // extracted prose, used for checkpoint display
	Sequence    int         // line number within the source log file
	CWD         string
	GitBranch   string
}

// Validate checks that the event carries the fields every record must have
func (e *Event) Validate() error {
	if e.UUID == "" {
		return errors.New("uuid is required")
	}
	if e.SessionID == "" {
		return errors.New("session_id is required")
	}
	if e.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	return nil
}

// Checkpoint is the most recent mutation to a path plus the human event
// that triggered it. Derived on demand, never stored.
type Checkpoint struct {
	TargetPath   string
	MutatingUUID string
	TriggerUUID  string // empty when no earlier human event exists
	Timestamp    time.Time
	Operation    Operation
	SessionID    string
	Prompt       string // text of the triggering human message, if any
}

// Snapshot is the fully materialized content of a path as of one event
type Snapshot struct {
	TargetPath string
	Content    []byte
	AsOf       string // uuid of the event the snapshot reflects
}
