package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/neilberkman/ccrewind/pkg/cclog"
)

func TestBuild(t *testing.T) {
	tl, err := Build([]string{
		"testdata/session-a.jsonl",
		"testdata/session-b.jsonl",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := []string{"ha-1", "wa-1", "hb-1", "wb-1", "ea-1"}
	if len(tl.Events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(tl.Events))
	}
	for i, uuid := range want {
		if tl.Events[i].UUID != uuid {
			t.Errorf("event %d: expected uuid %s, got %s", i, uuid, tl.Events[i].UUID)
		}
	}

	if len(tl.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(tl.Sessions))
	}
	if tl.Sessions[0].ID != "sess-a" {
		t.Errorf("expected sess-a first, got %s", tl.Sessions[0].ID)
	}
	if tl.Sessions[0].Summary != "First pass on app.py" {
		t.Errorf("unexpected summary: %q", tl.Sessions[0].Summary)
	}
	if tl.Sessions[0].EventCount != 3 {
		t.Errorf("expected 3 events in sess-a, got %d", tl.Sessions[0].EventCount)
	}
}

func TestBuild_CollectsIssues(t *testing.T) {
	tl, err := Build([]string{"testdata/session-b.jsonl"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// The record without a uuid is reported but never aborts the build
	if len(tl.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(tl.Issues))
	}
	if tl.Issues[0].Line != 3 {
		t.Errorf("expected issue on line 3, got %d", tl.Issues[0].Line)
	}
	if !errors.Is(tl.Issues[0].Err, cclog.ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", tl.Issues[0].Err)
	}
	if len(tl.Events) != 2 {
		t.Errorf("expected 2 events despite bad line, got %d", len(tl.Events))
	}
}

func TestBuild_OrderIndependent(t *testing.T) {
	forward, err := Build([]string{
		"testdata/session-a.jsonl",
		"testdata/session-b.jsonl",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	reversed, err := Build([]string{
		"testdata/session-b.jsonl",
		"testdata/session-a.jsonl",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(forward.Events) != len(reversed.Events) {
		t.Fatalf("event counts differ: %d vs %d", len(forward.Events), len(reversed.Events))
	}
	for i := range forward.Events {
		if forward.Events[i].UUID != reversed.Events[i].UUID {
			t.Errorf("event %d differs: %s vs %s", i, forward.Events[i].UUID, reversed.Events[i].UUID)
		}
	}
}

func TestBuild_MissingFile(t *testing.T) {
	if _, err := Build([]string{"testdata/no-such-session.jsonl"}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPathEventAt(t *testing.T) {
	tl, err := Build([]string{"testdata/session-a.jsonl"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	at := time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC)
	ev, ok := tl.PathEventAt("/proj/app.py", at)
	if !ok {
		t.Fatal("expected a mutating event before 09:05")
	}
	if ev.UUID != "wa-1" {
		t.Errorf("expected wa-1, got %s", ev.UUID)
	}

	if _, ok := tl.PathEventAt("/proj/app.py", at.Add(-time.Hour)); ok {
		t.Error("expected no event before the first write")
	}
}
