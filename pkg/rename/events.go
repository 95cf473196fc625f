package rename

import (
	"sync"

	"github.com/sdejongh/renamr/pkg/models"
)

// EventType identifies a change notification
type EventType string

const (
	EventEntryAdded    EventType = "entry_added"
	EventEntryChanged  EventType = "entry_changed"
	EventEntryRemoved  EventType = "entry_removed"
	EventBatchProgress EventType = "batch_progress"
	EventPassFinished  EventType = "pass_finished"
)

// Event is a change notification delivered to a Listener
type Event struct {
	Type EventType

	// Entry is the snapshot for EntryAdded and EntryChanged
	Entry models.EntryView

	// Path identifies the entry for EntryRemoved
	Path string

	// Progress is the commit fraction in [0, 1] for BatchProgress
	Progress float64

	// Pass describes the preview pass for PassFinished
	Pass PassInfo

	barrier chan struct{}
}

// PassInfo summarizes one preview pass
type PassInfo struct {
	Generation uint64
	Visited    int
	Total      int
	Completed  bool
}

// Listener consumes notifications. It is always called from one goroutine, in emission
// order, and must not block for long.
type Listener func(Event)

// dispatcher serializes notifications onto a single goroutine. The queue is unbounded so
// that emitters never block on a slow listener.
type dispatcher struct {
	listener Listener

	mu     sync.Mutex
	queue  []Event
	closed bool

	wake chan struct{}
	done chan struct{}
}

func newDispatcher(listener Listener) *dispatcher {
	d := &dispatcher{
		listener: listener,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// emit queues ev for delivery. Events emitted after close are dropped.
func (d *dispatcher) emit(ev Event) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, ev)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// flush returns a channel closed once every event emitted before the call is delivered
func (d *dispatcher) flush() <-chan struct{} {
	ch := make(chan struct{})
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		close(ch)
		return ch
	}
	d.queue = append(d.queue, Event{barrier: ch})
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return ch
}

// close delivers the remaining queue and stops the goroutine
func (d *dispatcher) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	<-d.done
}

func (d *dispatcher) run() {
	defer close(d.done)

	for {
		d.mu.Lock()
		batch := d.queue
		d.queue = nil
		closed := d.closed
		d.mu.Unlock()

		for _, ev := range batch {
			if ev.barrier != nil {
				close(ev.barrier)
				continue
			}
			if d.listener != nil {
				d.listener(ev)
			}
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-d.wake
	}
}
