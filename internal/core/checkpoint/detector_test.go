package checkpoint

import (
	"testing"
	"time"

	"github.com/neilberkman/ccrewind/internal/core/models"
	"github.com/neilberkman/ccrewind/internal/core/timeline"
)

func event(uuid, parent, session string, offset int, actor models.Actor) models.Event {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return models.Event{
		UUID:       uuid,
		ParentUUID: parent,
		SessionID:  session,
		Timestamp:  base.Add(time.Duration(offset) * time.Second),
		Actor:      actor,
		Operation:  models.OpOther,
	}
}

func write(uuid, parent, session, path string, offset int) models.Event {
	e := event(uuid, parent, session, offset, models.ActorAssistant)
	e.Operation = models.OpWrite
	e.ContentMode = models.ContentFull
	e.TargetPath = path
	return e
}

func TestDetect(t *testing.T) {
	human := event("a", "", "s", 10, models.ActorHuman)
	human.Text = "fix app.py\n"
	s := timeline.NewSession("s", []models.Event{
		human,
		write("b", "a", "s", "app.py", 11),
	})
	d := New(timeline.FromSessions([]*timeline.Session{s}))

	cp, ok := d.Detect("app.py")
	if !ok {
		t.Fatal("Detect() found nothing")
	}
	if cp.MutatingUUID != "b" {
		t.Errorf("MutatingUUID = %v, want b", cp.MutatingUUID)
	}
	if cp.TriggerUUID != "a" {
		t.Errorf("TriggerUUID = %v, want a", cp.TriggerUUID)
	}
	if cp.Prompt != "fix app.py" {
		t.Errorf("Prompt = %q", cp.Prompt)
	}
}

func TestDetect_NoMutations(t *testing.T) {
	s := timeline.NewSession("s", []models.Event{event("a", "", "s", 0, models.ActorHuman)})
	d := New(timeline.FromSessions([]*timeline.Session{s}))

	if _, ok := d.Detect("app.py"); ok {
		t.Error("Detect() on untouched path should report nothing")
	}
}

func TestDetect_NoHumanTrigger(t *testing.T) {
	// A resumed session can open with assistant events only
	s := timeline.NewSession("s", []models.Event{
		write("w1", "", "s", "main.go", 0),
	})
	d := New(timeline.FromSessions([]*timeline.Session{s}))

	cp, ok := d.Detect("main.go")
	if !ok {
		t.Fatal("Detect() found nothing")
	}
	if cp.TriggerUUID != "" {
		t.Errorf("TriggerUUID = %v, want empty", cp.TriggerUUID)
	}
}

func TestDetect_TriggerCrossesSessions(t *testing.T) {
	// The human turn lives in another session; the walk is global
	a := timeline.NewSession("a", []models.Event{event("h1", "", "a", 0, models.ActorHuman)})
	b := timeline.NewSession("b", []models.Event{write("w1", "", "b", "x.go", 5)})
	d := New(timeline.FromSessions([]*timeline.Session{a, b}))

	cp, _ := d.Detect("x.go")
	if cp.TriggerUUID != "h1" {
		t.Errorf("TriggerUUID = %v, want h1", cp.TriggerUUID)
	}
}

func TestHistory(t *testing.T) {
	s := timeline.NewSession("s", []models.Event{
		write("w1", "", "s", "x.go", 0),
		write("w2", "w1", "s", "x.go", 1),
		write("w3", "w2", "s", "y.go", 2),
	})
	d := New(timeline.FromSessions([]*timeline.Session{s}))

	cps := d.History("x.go")
	if len(cps) != 2 || cps[0].MutatingUUID != "w1" || cps[1].MutatingUUID != "w2" {
		t.Fatalf("History(x.go) = %+v", cps)
	}
}
