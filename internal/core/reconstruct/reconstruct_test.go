package reconstruct

import (
	"errors"
	"testing"
	"time"

	"github.com/neilberkman/ccrewind/internal/core/models"
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

func edit(uuid, parent, path string, offset int, pairs ...models.DeltaPair) models.Event {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	op := models.OpEdit
	if len(pairs) > 1 {
		op = models.OpMultiEdit
	}
	return models.Event{
		UUID:        uuid,
		ParentUUID:  parent,
		SessionID:   "s",
		Timestamp:   base.Add(time.Duration(offset) * time.Second),
		Actor:       models.ActorAssistant,
		Operation:   op,
		TargetPath:  path,
		ContentMode: models.ContentDelta,
		Deltas:      pairs,
	}
}

func build(events ...models.Event) *Reconstructor {
	s := timeline.NewSession("s", events)
	return New(timeline.FromSessions([]*timeline.Session{s}))
}

func TestReconstruct_FullShortCircuit(t *testing.T) {
	r := build(
		write("w1", "", "app.py", "old\n", 0),
		write("w2", "w1", "app.py", "new\n", 1),
	)
	snap, err := r.Reconstruct("app.py", "w2")
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	if string(snap.Content) != "new\n" {
		t.Errorf("content = %q, want new", snap.Content)
	}
	if snap.AsOf != "w2" {
		t.Errorf("AsOf = %v, want w2", snap.AsOf)
	}
}

func TestReconstruct_DeltaReplay(t *testing.T) {
	r := build(
		write("w1", "", "app.py", "print(1)", 0),
		edit("e1", "w1", "app.py", 1, models.DeltaPair{Old: "1", New: "2"}),
	)
	snap, err := r.Reconstruct("app.py", "e1")
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	if string(snap.Content) != "print(2)" {
		t.Errorf("content = %q, want print(2)", snap.Content)
	}

	// Asking for the earlier point must ignore the later delta
	snap, err = r.Reconstruct("app.py", "w1")
	if err != nil {
		t.Fatalf("Reconstruct(w1) error = %v", err)
	}
	if string(snap.Content) != "print(1)" {
		t.Errorf("content at w1 = %q, want print(1)", snap.Content)
	}
}

func TestReconstruct_MultiEditAppliesInOrder(t *testing.T) {
	r := build(
		write("w1", "", "x.go", "aaa", 0),
		edit("m1", "w1", "x.go", 1,
			models.DeltaPair{Old: "aaa", New: "bbb"},
			models.DeltaPair{Old: "bbb", New: "ccc"},
		),
	)
	snap, err := r.Reconstruct("x.go", "m1")
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	if string(snap.Content) != "ccc" {
		t.Errorf("content = %q, want ccc", snap.Content)
	}
}

func TestReconstruct_ReplaceAll(t *testing.T) {
	r := build(
		write("w1", "", "x.go", "foo foo foo", 0),
		edit("e1", "w1", "x.go", 1, models.DeltaPair{Old: "foo", New: "bar", ReplaceAll: true}),
	)
	snap, err := r.Reconstruct("x.go", "e1")
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	if string(snap.Content) != "bar bar bar" {
		t.Errorf("content = %q", snap.Content)
	}
}

func TestReconstruct_DeltaConflict(t *testing.T) {
	r := build(
		write("w1", "", "x.go", "print(1)", 0),
		edit("e1", "w1", "x.go", 1, models.DeltaPair{Old: "foo", New: "bar"}),
	)
	_, err := r.Reconstruct("x.go", "e1")
	var conflict *DeltaConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error = %v, want DeltaConflictError", err)
	}
	if conflict.UUID != "e1" || conflict.Old != "foo" {
		t.Errorf("conflict = %+v", conflict)
	}
}

func TestReconstruct_UnknownEvent(t *testing.T) {
	r := build(write("w1", "", "x.go", "x", 0))
	_, err := r.Reconstruct("x.go", "missing")
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("error = %v, want ErrUnknownEvent", err)
	}
}

func TestReconstruct_NoBaseSnapshot(t *testing.T) {
	// Deltas with no full write beneath them cannot be replayed
	r := build(edit("e1", "", "x.go", 0, models.DeltaPair{Old: "a", New: "b"}))
	_, err := r.Reconstruct("x.go", "e1")
	if !errors.Is(err, ErrNoBaseSnapshot) {
		t.Errorf("error = %v, want ErrNoBaseSnapshot", err)
	}
}

func TestBefore(t *testing.T) {
	r := build(
		write("w1", "", "x.go", "one", 0),
		write("w2", "w1", "x.go", "two", 1),
	)
	snap, err := r.Before("x.go", "w2")
	if err != nil {
		t.Fatalf("Before() error = %v", err)
	}
	if string(snap.Content) != "one" {
		t.Errorf("content = %q, want one", snap.Content)
	}

	if _, err := r.Before("x.go", "w1"); !errors.Is(err, ErrNoBaseSnapshot) {
		t.Errorf("Before(first event) error = %v, want ErrNoBaseSnapshot", err)
	}
}

func TestRevert_Delta(t *testing.T) {
	r := build(
		write("w1", "", "x.go", "print(1)\n", 0),
		edit("e1", "w1", "x.go", 1, models.DeltaPair{Old: "1", New: "2"}),
		edit("e2", "e1", "x.go", 2, models.DeltaPair{Old: "print", New: "log"}),
	)
	// Undo e1 while keeping e2's change
	snap, err := r.Revert("e1")
	if err != nil {
		t.Fatalf("Revert() error = %v", err)
	}
	if string(snap.Content) != "log(1)\n" {
		t.Errorf("content = %q, want log(1)", snap.Content)
	}
}

func TestRevert_FullWriteRollsBack(t *testing.T) {
	r := build(
		write("w1", "", "x.go", "first", 0),
		write("w2", "w1", "x.go", "second", 1),
	)
	snap, err := r.Revert("w2")
	if err != nil {
		t.Fatalf("Revert() error = %v", err)
	}
	if string(snap.Content) != "first" {
		t.Errorf("content = %q, want first", snap.Content)
	}
}

func TestLatest(t *testing.T) {
	r := build(
		write("w1", "", "x.go", "print(1)", 0),
		edit("e1", "w1", "x.go", 1, models.DeltaPair{Old: "1", New: "2"}),
	)
	snap, err := r.Latest("x.go")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if string(snap.Content) != "print(2)" {
		t.Errorf("content = %q", snap.Content)
	}
}

func TestReconstruct_Deterministic(t *testing.T) {
	r := build(
		write("w1", "", "x.go", "print(1)", 0),
		edit("e1", "w1", "x.go", 1, models.DeltaPair{Old: "1", New: "2"}),
	)
	first, err := r.Reconstruct("x.go", "e1")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := r.Reconstruct("x.go", "e1")
		if err != nil {
			t.Fatal(err)
		}
		if string(again.Content) != string(first.Content) {
			t.Fatalf("run %d diverged: %q vs %q", i, again.Content, first.Content)
		}
	}
}
