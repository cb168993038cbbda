// Package cclog parses Claude Code session JSONL files into normalized
// tool-execution events.
package cclog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/neilberkman/ccrewind/internal/core/models"
)

// ErrMissingField marks a record that lacks a required field
var ErrMissingField = errors.New("missing required field")

// ParseError records a single bad line. Bad lines never abort the file.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SessionLog is one fully parsed session file
type SessionLog struct {
	SessionID string
	Summary   string
	FilePath  string
	FileSize  int64
	FileMtime time.Time
	Events    []models.Event
	Errors    []ParseError
}

// rawEntry represents a raw JSONL line
type rawEntry struct {
	Type        string          `json:"type"`
	Summary     string          `json:"summary,omitempty"`
	UUID        string          `json:"uuid,omitempty"`
	ParentUUID  string          `json:"parentUuid,omitempty"`
	SessionID   string          `json:"sessionId,omitempty"`
	Message     json.RawMessage `json:"message,omitempty"`
	ToolUseRes  json.RawMessage `json:"toolUseResult,omitempty"`
	Timestamp   string          `json:"timestamp,omitempty"`
	IsSidechain bool            `json:"isSidechain,omitempty"`
	CWD         string          `json:"cwd,omitempty"`
	GitBranch   string          `json:"gitBranch,omitempty"`
	Version     string          `json:"version,omitempty"`
}

// contentBlock is one element of a message content array
type contentBlock struct {
	Type    string          `json:"type"` // "text", "tool_use", "tool_result"
	Text    string          `json:"text,omitempty"`
	Name    string          `json:"name,omitempty"`
	Input   json.RawMessage `json:"input,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

// toolInput covers the file-tool input shapes we replay
type toolInput struct {
	FilePath   string `json:"file_path"`
	Content    string `json:"content"`
	OldString  string `json:"old_string"`
	NewString  string `json:"new_string"`
	ReplaceAll bool   `json:"replace_all"`
	Edits      []struct {
		OldString  string `json:"old_string"`
		NewString  string `json:"new_string"`
		ReplaceAll bool   `json:"replace_all"`
	} `json:"edits"`
}

// ParseFile parses a Claude Code session JSONL file. Malformed lines are
// collected in SessionLog.Errors; only I/O failures return an error.
func ParseFile(path string) (log *SessionLog, err error) {
	file, ferr := os.Open(path)
	if ferr != nil {
		return nil, fmt.Errorf("failed to open file: %w", ferr)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	// Session ID defaults to the filename; most records carry the real one
	sessionID := filepath.Base(path)
	sessionID = sessionID[:len(sessionID)-len(filepath.Ext(sessionID))]

	log = &SessionLog{
		SessionID: sessionID,
		FilePath:  path,
		FileSize:  info.Size(),
		FileMtime: info.ModTime(),
		Events:    make([]models.Event, 0),
	}

	// Configure scanner with larger buffer for long lines (10MB max)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)

	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var raw rawEntry
		if jerr := json.Unmarshal(line, &raw); jerr != nil {
			log.Errors = append(log.Errors, ParseError{Line: lineNum, Err: fmt.Errorf("invalid JSON: %w", jerr)})
			continue
		}

		if raw.Type == "summary" {
			log.Summary = raw.Summary
			continue
		}

		if raw.SessionID != "" && log.SessionID == sessionID {
			log.SessionID = raw.SessionID
		}

		events, perr := parseRecord(&raw, log.SessionID, lineNum)
		if perr != nil {
			log.Errors = append(log.Errors, ParseError{Line: lineNum, Err: perr})
			continue
		}
		log.Events = append(log.Events, events...)
	}

	if serr := scanner.Err(); serr != nil {
		return nil, fmt.Errorf("error reading file: %w", serr)
	}

	return log, nil
}

// parseRecord turns one raw record into zero or more events. An assistant
// record with several file tool calls yields one event per call; the first
// keeps the record uuid and later ones get a /N suffix so uuids stay
// unique across the timeline.
func parseRecord(raw *rawEntry, sessionID string, sequence int) ([]models.Event, error) {
	switch raw.Type {
	case "user", "assistant":
	case "":
		return nil, fmt.Errorf("%w: type", ErrMissingField)
	default:
		// system, file-history-snapshot, queue-operation, and anything
		// newer carry nothing we replay
		return nil, nil
	}

	if raw.UUID == "" {
		return nil, fmt.Errorf("%w: uuid", ErrMissingField)
	}
	if raw.Timestamp == "" {
		return nil, fmt.Errorf("%w: timestamp", ErrMissingField)
	}
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId", ErrMissingField)
	}
	ts, err := time.Parse(time.RFC3339, raw.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp: %w", err)
	}

	base := models.Event{
		UUID:        raw.UUID,
		ParentUUID:  raw.ParentUUID,
		SessionID:   sessionID,
		Timestamp:   ts,
		Operation:   models.OpOther,
		ContentMode: models.ContentNone,
		Sequence:    sequence,
		CWD:         raw.CWD,
		GitBranch:   raw.GitBranch,
	}

	switch raw.Type {
	case "user":
		ev := base
		ev.Actor = models.ActorHuman
		text, onlyToolResults := extractUserText(raw.Message)
		ev.Text = text
		if onlyToolResults {
			// Tool-result echoes are assistant plumbing, not prompts
			ev.Actor = models.ActorAssistant
		}
		return []models.Event{ev}, nil

	case "assistant":
		return parseAssistant(&base, raw.Message)
	}
	return nil, nil
}

func parseAssistant(base *models.Event, message json.RawMessage) ([]models.Event, error) {
	base.Actor = models.ActorAssistant

	var msg struct {
		Content []contentBlock `json:"content"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		// No decodable body; keep the record for ordering purposes
		return []models.Event{*base}, nil
	}

	var events []models.Event
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			base.Text += block.Text + "\n"
		case "tool_use":
			ev, ok := parseToolUse(base, block.Name, block.Input)
			if ok {
				events = append(events, ev)
			}
		}
	}

	if len(events) == 0 {
		return []models.Event{*base}, nil
	}

	for i := range events {
		events[i].Text = base.Text
		if i > 0 {
			events[i].UUID = fmt.Sprintf("%s/%d", base.UUID, i)
		}
	}
	return events, nil
}

// parseToolUse maps one tool_use block onto an event. Tools that do not
// touch a file fold into the record's Other event instead.
func parseToolUse(base *models.Event, name string, input json.RawMessage) (models.Event, bool) {
	var in toolInput
	if err := json.Unmarshal(input, &in); err != nil {
		return models.Event{}, false
	}
	if in.FilePath == "" {
		return models.Event{}, false
	}

	ev := *base
	ev.TargetPath = filepath.Clean(in.FilePath)

	switch name {
	case "Write":
		ev.Operation = models.OpWrite
		ev.ContentMode = models.ContentFull
		ev.Content = []byte(in.Content)
	case "Edit":
		ev.Operation = models.OpEdit
		ev.ContentMode = models.ContentDelta
		ev.Deltas = []models.DeltaPair{{Old: in.OldString, New: in.NewString, ReplaceAll: in.ReplaceAll}}
	case "MultiEdit":
		ev.Operation = models.OpMultiEdit
		ev.ContentMode = models.ContentDelta
		for _, e := range in.Edits {
			ev.Deltas = append(ev.Deltas, models.DeltaPair{Old: e.OldString, New: e.NewString, ReplaceAll: e.ReplaceAll})
		}
	case "Read":
		ev.Operation = models.OpRead
		ev.ContentMode = models.ContentNone
	default:
		// Unknown file-touching tool: keep it visible but non-replayable
		ev.Operation = models.OpOther
		ev.ContentMode = models.ContentNone
	}
	return ev, true
}

// extractUserText pulls prose out of a user message body. The second
// return is true when the body holds only tool_result blocks.
func extractUserText(message json.RawMessage) (string, bool) {
	if len(message) == 0 {
		return "", false
	}

	// Newer format: content is an array of blocks
	var arr struct {
		Content []contentBlock `json:"content"`
	}
	if err := json.Unmarshal(message, &arr); err == nil && len(arr.Content) > 0 {
		text := ""
		sawText := false
		for _, block := range arr.Content {
			if block.Type == "text" {
				text += block.Text + "\n"
				sawText = true
			}
		}
		return text, !sawText
	}

	// Older format: content is a plain string
	var str struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(message, &str); err == nil {
		return str.Content, false
	}
	return "", false
}
