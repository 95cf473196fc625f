package rename

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sdejongh/renamr/pkg/logging"
	"github.com/sdejongh/renamr/pkg/transform"
)

// Scheduler recomputes candidate names whenever the rule changes.
//
// Each change starts a new generation and cancels the pass of the previous one. A pass
// first waits for its predecessor to exit, so at most one pass touches entries at a
// time. An abandoned pass stops before its next entry and leaves the entries it already
// updated as they are.
type Scheduler struct {
	set      *Set
	logger   logging.Logger
	debounce time.Duration

	mu   sync.Mutex
	gen  uint64
	rule *transform.Rule
	// rule of the last pass that visited every entry
	applied *transform.Rule
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool

	// held by a running pass; Pause takes it to keep passes away from entries
	gate sync.Mutex
}

// NewScheduler creates a scheduler over set. A positive debounce delays every pass by
// that quiet period, so bursts of edits only ever start the last pass.
func NewScheduler(set *Set, logger logging.Logger, debounce time.Duration) *Scheduler {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Scheduler{
		set:      set,
		logger:   logger,
		debounce: debounce,
	}
}

// OnPatternChanged supersedes any in-flight pass with a pass applying rule to every
// entry. It returns the generation of the new pass.
func (p *Scheduler) OnPatternChanged(rule *transform.Rule) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return p.gen
	}
	p.rule = rule
	return p.startLocked()
}

// Reschedule starts a new pass with the current rule
func (p *Scheduler) Reschedule() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.rule == nil {
		return p.gen
	}
	return p.startLocked()
}

func (p *Scheduler) startLocked() uint64 {
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.gen++
	prev := p.done
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go p.run(ctx, p.gen, p.rule, prev, done)
	return p.gen
}

// Current returns the latest rule and its generation. The rule is nil until the first
// change.
func (p *Scheduler) Current() (*transform.Rule, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rule, p.gen
}

// Applied returns the rule of the last completed pass, nil before any pass completed.
// Unlike Current it never names a rule whose pass is still pending.
func (p *Scheduler) Applied() *transform.Rule {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applied
}

// Generation returns the generation of the latest pass
func (p *Scheduler) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

func (p *Scheduler) run(ctx context.Context, gen uint64, rule *transform.Rule, prev, done chan struct{}) {
	defer close(done)

	if prev != nil {
		<-prev
	}

	info := PassInfo{Generation: gen}
	defer func() {
		p.set.emit(Event{Type: EventPassFinished, Pass: info})
	}()

	if p.debounce > 0 {
		timer := time.NewTimer(p.debounce)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			p.logger.Debug(ctx, "preview pass superseded before start", logging.Fields{"generation": gen})
			return
		}
	}
	if ctx.Err() != nil {
		return
	}

	p.gate.Lock()
	defer p.gate.Unlock()

	entries := p.set.Entries()
	info.Total = len(entries)
	for _, e := range entries {
		if ctx.Err() != nil {
			p.logger.Debug(ctx, "preview pass abandoned", logging.Fields{
				"generation": gen,
				"visited":    info.Visited,
				"total":      info.Total,
			})
			return
		}
		if e.State().CanReplace() {
			if err := e.Replace(rule); err != nil && !errors.Is(err, ErrInvalidState) {
				p.logger.Error(ctx, "preview failed", err, logging.Fields{"path": e.FullPath()})
			}
		}
		info.Visited++
	}
	info.Completed = true

	p.mu.Lock()
	p.applied = rule
	p.mu.Unlock()

	p.logger.Debug(ctx, "preview pass completed", logging.Fields{"generation": gen, "entries": info.Total})
}

// Wait blocks until the latest pass, and therefore every earlier one, has exited
func (p *Scheduler) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause keeps passes from touching entries until resume is called. A pass that is
// running finishes first.
func (p *Scheduler) Pause() (resume func()) {
	p.gate.Lock()
	return p.gate.Unlock
}

// Close cancels the running pass and waits for it to exit
func (p *Scheduler) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
	}
	done := p.done
	p.mu.Unlock()

	if done != nil {
		<-done
	}
	return nil
}
