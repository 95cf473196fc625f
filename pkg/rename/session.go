package rename

import (
	"context"
	"sync"
	"time"

	"github.com/sdejongh/renamr/pkg/logging"
	"github.com/sdejongh/renamr/pkg/models"
	"github.com/sdejongh/renamr/pkg/storage"
	"github.com/sdejongh/renamr/pkg/transform"
)

// Options configures a Session
type Options struct {
	// Backend is the filesystem; defaults to the local filesystem
	Backend storage.Backend
	// Logger defaults to a null logger
	Logger logging.Logger
	// Listener receives every notification of the session, may be nil
	Listener Listener
	// RegexTimeout bounds one substitution; defaults to transform.DefaultTimeout
	RegexTimeout time.Duration
	// PreviewDebounce delays preview passes by a quiet period
	PreviewDebounce time.Duration
	// Exclude holds globs for files and directories skipped during ingestion
	Exclude []string
}

// Stats counts the entries of a session per state
type Stats struct {
	Total    int
	Loaded   int
	Prepared int
	Renaming int
	Renamed  int
	Errored  int
}

type ingestJob struct {
	path    string
	barrier chan struct{}
}

// Session ties a set, its preview scheduler and its executor together. Paths are
// ingested by one background worker, preview passes run on the scheduler and commits on
// the caller's goroutine. All notifications reach Options.Listener from one goroutine.
type Session struct {
	opts      Options
	logger    logging.Logger
	set       *Set
	scheduler *Scheduler
	executor  *Executor

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	queue  []ingestJob
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// NewSession creates a session and starts its ingestion worker
func NewSession(opts Options) *Session {
	if opts.Backend == nil {
		opts.Backend = storage.NewLocal()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNullLogger()
	}
	if opts.RegexTimeout <= 0 {
		opts.RegexTimeout = transform.DefaultTimeout
	}

	set := NewSet(opts.Backend, opts.Logger, opts.Listener)
	scheduler := NewScheduler(set, opts.Logger, opts.PreviewDebounce)
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		opts:      opts,
		logger:    opts.Logger,
		set:       set,
		scheduler: scheduler,
		executor:  NewExecutor(set, scheduler, opts.Logger),
		ctx:       ctx,
		cancel:    cancel,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go s.ingest()
	return s
}

// AddPath queues path for ingestion and returns immediately. Unreadable files and
// directories are skipped silently. The only error is ErrClosed.
func (s *Session) AddPath(path string) error {
	return s.enqueue(ingestJob{path: path})
}

// WaitIngest blocks until every path queued before the call has been ingested
func (s *Session) WaitIngest(ctx context.Context) error {
	barrier := make(chan struct{})
	if err := s.enqueue(ingestJob{barrier: barrier}); err != nil {
		return err
	}
	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) enqueue(job ingestJob) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.queue = append(s.queue, job)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

func (s *Session) ingest() {
	defer close(s.done)

	for {
		s.mu.Lock()
		jobs := s.queue
		s.queue = nil
		closed := s.closed
		s.mu.Unlock()

		for _, job := range jobs {
			if job.barrier != nil {
				close(job.barrier)
				continue
			}
			s.ingestPath(job.path)
		}

		if len(jobs) > 0 {
			continue
		}
		if closed {
			return
		}
		<-s.wake
	}
}

func (s *Session) ingestPath(path string) {
	if s.ctx.Err() != nil {
		return
	}

	rule, gen := s.scheduler.Current()
	added, err := s.set.AddPath(s.ctx, path, rule, s.opts.Exclude)
	if err != nil {
		s.logger.Debug(s.ctx, "ingestion stopped", logging.Fields{"path": path, "reason": err.Error()})
	}

	// A pass started while the walk was running may have missed the new entries
	if added > 0 && s.scheduler.Generation() != gen {
		s.scheduler.Reschedule()
	}
}

// SetPattern compiles the rule and schedules a preview pass. The pass runs even when
// the pattern does not compile, so every entry shows the rejection; the compile error
// is returned for the caller's information.
func (s *Session) SetPattern(pattern, replacement string) error {
	rule := transform.NewRule(pattern, replacement, s.opts.RegexTimeout)
	s.scheduler.OnPatternChanged(rule)
	return rule.Err()
}

// WaitPreview blocks until the latest preview pass has finished
func (s *Session) WaitPreview(ctx context.Context) error {
	return s.scheduler.Wait(ctx)
}

// Commit runs the two-phase rename over every Prepared entry
func (s *Session) Commit(ctx context.Context) (*models.RenameReport, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	return s.executor.Commit(ctx)
}

// RemoveEntries stops tracking the given original paths
func (s *Session) RemoveEntries(paths ...string) int {
	return s.set.Remove(paths...)
}

// Clear stops tracking every entry
func (s *Session) Clear() {
	s.set.Clear()
}

// Entries returns snapshots of every entry, sorted by path
func (s *Session) Entries() []models.EntryView {
	entries := s.set.Entries()
	views := make([]models.EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, e.View())
	}
	return views
}

// Len returns the number of tracked entries
func (s *Session) Len() int {
	return s.set.Len()
}

// Stats counts the tracked entries per state
func (s *Session) Stats() Stats {
	var stats Stats
	for _, e := range s.set.Entries() {
		stats.Total++
		switch e.State() {
		case models.StateLoaded:
			stats.Loaded++
		case models.StatePrepared:
			stats.Prepared++
		case models.StateRenaming:
			stats.Renaming++
		case models.StateRenamed:
			stats.Renamed++
		case models.StateError:
			stats.Errored++
		}
	}
	return stats
}

// Flush waits until every notification emitted so far has reached the listener
func (s *Session) Flush(ctx context.Context) error {
	return s.set.Flush(ctx)
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops ingestion and preview, then delivers the remaining notifications
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	select {
	case s.wake <- struct{}{}:
	default:
	}
	<-s.done

	s.scheduler.Close()
	return s.set.Close()
}
