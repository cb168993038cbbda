package blame

import (
	"errors"
	"testing"
	"time"

	"github.com/neilberkman/ccrewind/internal/core/models"
	"github.com/neilberkman/ccrewind/internal/core/reconstruct"
	"github.com/neilberkman/ccrewind/internal/core/timeline"
)

func write(uuid, parent, path, content string, offset int) models.Event {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return models.Event{
		UUID:        uuid,
		ParentUUID:  parent,
		SessionID:   "s",
		Timestamp:   base.Add(time.Duration(offset) * time.Second),
		Actor:       models.ActorAssistant,
		Operation:   models.OpWrite,
		TargetPath:  path,
		ContentMode: models.ContentFull,
		Content:     []byte(content),
	}
}

func edit(uuid, parent, path, oldStr, newStr string, offset int) models.Event {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return models.Event{
		UUID:        uuid,
		ParentUUID:  parent,
		SessionID:   "s",
		Timestamp:   base.Add(time.Duration(offset) * time.Second),
		Actor:       models.ActorAssistant,
		Operation:   models.OpEdit,
		TargetPath:  path,
		ContentMode: models.ContentDelta,
		Deltas:      []models.DeltaPair{{Old: oldStr, New: newStr}},
	}
}

func TestFile(t *testing.T) {
	s := timeline.NewSession("s", []models.Event{
		write("w1", "", "x.py", "one\ntwo\nthree\n", 0),
		edit("e1", "w1", "x.py", "two", "TWO", 1),
	})
	tl := timeline.FromSessions([]*timeline.Session{s})

	lines, err := File(tl, "x.py")
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3", len(lines))
	}

	// Untouched lines keep the original write; the edited line moves
	if lines[0].UUID != "w1" {
		t.Errorf("line 1 attributed to %v, want w1", lines[0].UUID)
	}
	if lines[1].UUID != "e1" || lines[1].Text != "TWO" {
		t.Errorf("line 2 = %q by %v, want TWO by e1", lines[1].Text, lines[1].UUID)
	}
	if lines[2].UUID != "w1" {
		t.Errorf("line 3 attributed to %v, want w1", lines[2].UUID)
	}

	if lines[1].Operation != models.OpEdit {
		t.Errorf("line 2 operation = %v, want Edit", lines[1].Operation)
	}
}

func TestFile_EditBeforeFirstWrite(t *testing.T) {
	// A pre-existing file: the log opens with an Edit nothing can
	// replay, then a Write captures it. Blame must start there instead
	// of failing on the leading delta.
	s := timeline.NewSession("s", []models.Event{
		edit("e0", "", "x.go", "stale", "staler", 0),
		write("w1", "e0", "x.go", "one\ntwo\n", 1),
		edit("e1", "w1", "x.go", "two", "TWO", 2),
	})
	tl := timeline.FromSessions([]*timeline.Session{s})

	lines, err := File(tl, "x.go")
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("line count = %d, want 2", len(lines))
	}
	if lines[0].UUID != "w1" {
		t.Errorf("line 1 attributed to %v, want w1", lines[0].UUID)
	}
	if lines[1].UUID != "e1" || lines[1].Text != "TWO" {
		t.Errorf("line 2 = %q by %v, want TWO by e1", lines[1].Text, lines[1].UUID)
	}
}

func TestFile_OnlyDeltas(t *testing.T) {
	// No full write anywhere: nothing is reconstructable
	s := timeline.NewSession("s", []models.Event{
		edit("e0", "", "x.go", "a", "b", 0),
	})
	tl := timeline.FromSessions([]*timeline.Session{s})

	_, err := File(tl, "x.go")
	if !errors.Is(err, reconstruct.ErrNoBaseSnapshot) {
		t.Errorf("error = %v, want ErrNoBaseSnapshot", err)
	}
}

func TestFile_Untouched(t *testing.T) {
	tl := timeline.FromSessions(nil)
	_, err := File(tl, "ghost.py")
	if !errors.Is(err, reconstruct.ErrNoBaseSnapshot) {
		t.Errorf("error = %v, want ErrNoBaseSnapshot", err)
	}
}
