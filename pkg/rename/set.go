package rename

import (
	"context"
	"sort"
	"sync"

	"github.com/sdejongh/renamr/pkg/logging"
	"github.com/sdejongh/renamr/pkg/storage"
)

// Set is the duplicate-free collection of tracked files, keyed by full path.
//
// Every structural mutation runs on one goroutine that owns the index, so callers from
// any goroutine see a consistent collection. Notifications are delivered through the
// set's dispatcher.
type Set struct {
	backend storage.Backend
	logger  logging.Logger
	events  *dispatcher

	ops  chan func()
	quit chan struct{}
	done chan struct{}
	once sync.Once

	// owned by the loop goroutine
	byPath map[string]*FileEntry
	order  []*FileEntry
}

// NewSet creates an empty set. listener may be nil.
func NewSet(backend storage.Backend, logger logging.Logger, listener Listener) *Set {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	s := &Set{
		backend: backend,
		logger:  logger,
		events:  newDispatcher(listener),
		ops:     make(chan func()),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		byPath:  make(map[string]*FileEntry),
	}
	go s.loop()
	return s
}

func (s *Set) loop() {
	defer close(s.done)
	for {
		select {
		case op := <-s.ops:
			op()
		case <-s.quit:
			return
		}
	}
}

// do runs fn on the loop goroutine and waits for it
func (s *Set) do(fn func()) error {
	finished := make(chan struct{})
	select {
	case s.ops <- func() { fn(); close(finished) }:
	case <-s.done:
		return ErrClosed
	}
	<-finished
	return nil
}

func (s *Set) emit(ev Event) {
	s.events.emit(ev)
}

// Add inserts entry unless an entry with the same full path exists. It reports whether
// the entry was inserted.
func (s *Set) Add(entry *FileEntry) (bool, error) {
	added := false
	err := s.do(func() {
		if _, exists := s.byPath[entry.fullPath]; exists {
			return
		}
		s.byPath[entry.fullPath] = entry
		s.order = append(s.order, entry)
		added = true

		s.emit(Event{Type: EventEntryAdded, Entry: entry.View()})
		entry.setNotify(func(e *FileEntry) {
			s.emit(Event{Type: EventEntryChanged, Entry: e.View()})
		})
	})
	return added, err
}

// Contains reports whether an entry with fullPath is tracked
func (s *Set) Contains(fullPath string) bool {
	found := false
	_ = s.do(func() {
		_, found = s.byPath[fullPath]
	})
	return found
}

// Get returns the entry tracked under fullPath
func (s *Set) Get(fullPath string) (*FileEntry, bool) {
	var entry *FileEntry
	_ = s.do(func() {
		entry = s.byPath[fullPath]
	})
	return entry, entry != nil
}

// Remove stops tracking the given paths and returns how many were removed. Removed
// entries are detached: later changes to them are not reported.
func (s *Set) Remove(paths ...string) int {
	removed := 0
	_ = s.do(func() {
		drop := make(map[string]bool, len(paths))
		for _, p := range paths {
			if _, ok := s.byPath[p]; ok {
				drop[p] = true
			}
		}
		if len(drop) == 0 {
			return
		}

		kept := s.order[:0]
		for _, e := range s.order {
			if !drop[e.fullPath] {
				kept = append(kept, e)
				continue
			}
			delete(s.byPath, e.fullPath)
			e.setNotify(nil)
			s.emit(Event{Type: EventEntryRemoved, Path: e.fullPath})
			removed++
		}
		for i := len(kept); i < len(s.order); i++ {
			s.order[i] = nil
		}
		s.order = kept
	})
	return removed
}

// Clear removes every entry
func (s *Set) Clear() {
	_ = s.do(func() {
		for _, e := range s.order {
			e.setNotify(nil)
			s.emit(Event{Type: EventEntryRemoved, Path: e.fullPath})
		}
		s.order = nil
		s.byPath = make(map[string]*FileEntry)
	})
}

// Entries returns the tracked entries sorted by full path
func (s *Set) Entries() []*FileEntry {
	var entries []*FileEntry
	_ = s.do(func() {
		entries = make([]*FileEntry, len(s.order))
		copy(entries, s.order)
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].fullPath < entries[j].fullPath })
	return entries
}

// Len returns the number of tracked entries
func (s *Set) Len() int {
	n := 0
	_ = s.do(func() {
		n = len(s.order)
	})
	return n
}

// Flush waits until every notification emitted so far has been delivered
func (s *Set) Flush(ctx context.Context) error {
	select {
	case <-s.events.flush():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the set and delivers pending notifications
func (s *Set) Close() error {
	s.once.Do(func() {
		close(s.quit)
		<-s.done
		s.events.close()
	})
	return nil
}
