package timeline

import (
	"testing"

	"github.com/neilberkman/ccrewind/internal/core/models"
)

func mutating(uuid, parent, session, path string, offset int) models.Event {
	e := ev(uuid, parent, session, offset)
	e.Operation = models.OpWrite
	e.ContentMode = models.ContentFull
	e.TargetPath = path
	return e
}

func TestIndexLookups(t *testing.T) {
	s := NewSession("s", []models.Event{
		ev("h1", "", "s", 0),
		mutating("w1", "h1", "s", "/p/a.go", 1),
		mutating("w2", "w1", "s", "/p/b.go", 2),
		mutating("w3", "w2", "s", "/p/a.go", 3),
	})
	ix := FromSessions([]*Session{s}).Index()

	if _, ok := ix.ByUUID("w2"); !ok {
		t.Fatal("ByUUID(w2) not found")
	}
	if _, ok := ix.ByUUID("nope"); ok {
		t.Fatal("ByUUID(nope) should not resolve")
	}

	p1, _ := ix.Position("w1")
	p3, _ := ix.Position("w3")
	if p1 >= p3 {
		t.Errorf("positions out of order: w1=%d w3=%d", p1, p3)
	}

	aEvents := ix.PathEvents("/p/a.go")
	if len(aEvents) != 2 || aEvents[0].UUID != "w1" || aEvents[1].UUID != "w3" {
		t.Errorf("PathEvents(/p/a.go) = %v", uuids(aEvents))
	}

	// Non-mutating events never appear in path lists
	if got := ix.PathEvents("/p/b.go"); len(got) != 1 {
		t.Errorf("PathEvents(/p/b.go) = %v", uuids(got))
	}

	paths := ix.Paths()
	if len(paths) != 2 || paths[0] != "/p/a.go" {
		t.Errorf("Paths() = %v", paths)
	}
}

func TestResolvePrefix(t *testing.T) {
	s := NewSession("s", []models.Event{
		ev("abc-123", "", "s", 0),
		ev("abd-456", "abc-123", "s", 1),
	})
	ix := FromSessions([]*Session{s}).Index()

	if got, err := ix.ResolvePrefix("abc"); err != nil || got != "abc-123" {
		t.Errorf("ResolvePrefix(abc) = %v, %v", got, err)
	}
	if _, err := ix.ResolvePrefix("ab"); err == nil {
		t.Error("ambiguous prefix should error")
	}
	if _, err := ix.ResolvePrefix("zz"); err == nil {
		t.Error("unknown prefix should error")
	}
}
