package rename

import (
	"context"
	"errors"
	"testing"

	"github.com/sdejongh/renamr/pkg/logging"
)

func newTestSet(t *testing.T, h *TestHelper, log *eventLog) *Set {
	t.Helper()
	var listener Listener
	if log != nil {
		listener = log.listen
	}
	s := NewSet(h.backend, logging.NewNullLogger(), listener)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustEntry(t *testing.T, h *TestHelper, path string) *FileEntry {
	t.Helper()
	e, err := NewFileEntry(h.backend, path, nil)
	if err != nil {
		t.Fatalf("NewFileEntry(%s) error = %v", path, err)
	}
	return e
}

// ============== Set Tests ==============

func TestSet_AddDeduplicates(t *testing.T) {
	h := NewTestHelper(t)
	s := newTestSet(t, h, nil)

	added, err := s.Add(mustEntry(t, h, "/data/a.txt"))
	if err != nil || !added {
		t.Fatalf("Add() = %v, %v; want true, nil", added, err)
	}
	added, err = s.Add(mustEntry(t, h, "/data/a.txt"))
	if err != nil || added {
		t.Fatalf("second Add() = %v, %v; want false, nil", added, err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if !s.Contains("/data/a.txt") || s.Contains("/data/b.txt") {
		t.Error("Contains() mismatch")
	}
}

func TestSet_EntriesSortedByPath(t *testing.T) {
	h := NewTestHelper(t)
	s := newTestSet(t, h, nil)

	for _, p := range []string{"/data/c.txt", "/data/a.txt", "/data/sub/b.txt", "/data/b.txt"} {
		if _, err := s.Add(mustEntry(t, h, p)); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	want := []string{"/data/a.txt", "/data/b.txt", "/data/c.txt", "/data/sub/b.txt"}
	got := s.Entries()
	if len(got) != len(want) {
		t.Fatalf("Entries() returned %d, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.FullPath() != want[i] {
			t.Errorf("Entries()[%d] = %s, want %s", i, e.FullPath(), want[i])
		}
	}
}

func TestSet_RemoveDetaches(t *testing.T) {
	h := NewTestHelper(t)
	log := &eventLog{}
	s := newTestSet(t, h, log)

	a := mustEntry(t, h, "/data/a.txt")
	b := mustEntry(t, h, "/data/b.txt")
	s.Add(a)
	s.Add(b)

	if n := s.Remove("/data/a.txt", "/data/missing.txt"); n != 1 {
		t.Errorf("Remove() = %d, want 1", n)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	// a is detached, b still reports
	a.Replace(rule("a", "z"))
	b.Replace(rule("b", "z"))

	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	removed := log.ofType(EventEntryRemoved)
	if len(removed) != 1 || removed[0].Path != "/data/a.txt" {
		t.Errorf("removed events = %+v", removed)
	}
	changed := log.ofType(EventEntryChanged)
	if len(changed) != 1 || changed[0].Entry.FullPath != "/data/b.txt" {
		t.Errorf("changed events = %+v", changed)
	}
}

func TestSet_Clear(t *testing.T) {
	h := NewTestHelper(t)
	log := &eventLog{}
	s := newTestSet(t, h, log)

	s.Add(mustEntry(t, h, "/data/a.txt"))
	s.Add(mustEntry(t, h, "/data/b.txt"))
	s.Clear()

	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	s.Close()
	if got := len(log.ofType(EventEntryRemoved)); got != 2 {
		t.Errorf("removed events = %d, want 2", got)
	}
	if got := len(log.ofType(EventEntryAdded)); got != 2 {
		t.Errorf("added events = %d, want 2", got)
	}
}

func TestSet_Closed(t *testing.T) {
	h := NewTestHelper(t)
	s := newTestSet(t, h, nil)
	s.Close()

	if _, err := s.Add(mustEntry(t, h, "/data/a.txt")); !errors.Is(err, ErrClosed) {
		t.Errorf("Add() after Close error = %v, want ErrClosed", err)
	}
	if s.Len() != 0 || s.Entries() != nil {
		t.Error("closed set should look empty")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestSet_EventsInOrder(t *testing.T) {
	h := NewTestHelper(t)
	log := &eventLog{}
	s := newTestSet(t, h, log)

	e := mustEntry(t, h, "/data/old.txt")
	s.Add(e)
	e.Replace(rule("old", "new"))
	s.Remove("/data/old.txt")
	s.Close()

	types := make([]EventType, 0, len(log.events))
	for _, ev := range log.events {
		types = append(types, ev.Type)
	}
	want := []EventType{EventEntryAdded, EventEntryChanged, EventEntryRemoved}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, types[i], want[i])
		}
	}
	if log.events[1].Entry.NewName != "new.txt" {
		t.Errorf("changed snapshot NewName = %q", log.events[1].Entry.NewName)
	}
}
