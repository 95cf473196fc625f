package rename

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/renamr/pkg/logging"
	"github.com/sdejongh/renamr/pkg/models"
)

// Phases recorded in RenameError
const (
	PhaseStage  = "stage"
	PhaseCommit = "commit"
)

// Executor drives the two-phase rename over every Prepared entry of a set.
//
// Phase 1 moves each entry to a unique temporary name, phase 2 moves each staged entry
// to its final name. No entry reaches its final name before every entry has left its
// original one, so swaps and chains inside a batch never collide.
type Executor struct {
	set       *Set
	scheduler *Scheduler
	logger    logging.Logger

	running sync.Mutex
}

// NewExecutor creates an executor. scheduler may be nil when no preview runs.
func NewExecutor(set *Set, scheduler *Scheduler, logger logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Executor{
		set:       set,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Commit renames every Prepared entry and reports the outcome of each.
//
// It first waits for the preview to settle and keeps new passes out until it returns.
// Cancelling ctx stops staging further entries; entries already staged still go through
// phase 2 so none is left under a temporary name. Entries in any other state are left
// untouched. Progress is emitted as BatchProgress events and reaches 1 exactly when both
// phases are done.
func (x *Executor) Commit(ctx context.Context) (*models.RenameReport, error) {
	if !x.running.TryLock() {
		return nil, ErrCommitInProgress
	}
	defer x.running.Unlock()

	report := &models.RenameReport{
		OperationID: uuid.New().String(),
		StartTime:   time.Now(),
		Results:     []models.EntryView{},
		Errors:      []models.RenameError{},
	}

	if x.scheduler != nil {
		if err := x.scheduler.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to wait for preview: %w", err)
		}
		resume := x.scheduler.Pause()
		defer resume()

		if rule := x.scheduler.Applied(); rule != nil {
			report.Pattern = rule.Pattern
			report.Replacement = rule.Replacement
		}
	}

	entries := x.set.Entries()
	var prepared []*FileEntry
	for _, e := range entries {
		switch e.State() {
		case models.StatePrepared:
			prepared = append(prepared, e)
		case models.StateLoaded:
			report.Stats.Skipped++
		}
	}
	report.Stats.Entries = len(entries)
	report.Stats.Prepared = len(prepared)

	x.logger.Info(ctx, "commit started", logging.Fields{
		"operation_id": report.OperationID,
		"entries":      len(entries),
		"prepared":     len(prepared),
	})

	progress := newProgress(x.set, 2*len(prepared))
	// Entry I/O must not be interrupted halfway; cancellation is checked between entries.
	ioCtx := context.WithoutCancel(ctx)

	cancelled := false
	for _, e := range prepared {
		if ctx.Err() != nil {
			if !cancelled {
				x.logger.Warn(ctx, "commit cancelled, no further files will be staged", logging.Fields{
					"operation_id": report.OperationID,
				})
			}
			cancelled = true
			break
		}
		if err := e.BeginRename(ioCtx); err != nil {
			x.recordFailure(ctx, report, e, PhaseStage, err)
		} else {
			report.Stats.Staged++
		}
		progress.step()
	}
	if cancelled {
		// unattempted entries still own their phase 1 share
		progress.skipTo(len(prepared))
	}

	for _, e := range prepared {
		if e.State() != models.StateRenaming {
			progress.step()
			continue
		}
		if err := e.CommitRename(ioCtx); err != nil {
			x.recordFailure(ctx, report, e, PhaseCommit, err)
		} else {
			report.Stats.Renamed++
		}
		progress.step()
	}
	progress.finish()

	for _, e := range entries {
		report.Results = append(report.Results, e.View())
	}
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	report.Status = commitStatus(report.Stats, cancelled)

	x.logger.Info(ctx, "commit finished", logging.Fields{
		"operation_id": report.OperationID,
		"renamed":      report.Stats.Renamed,
		"errors":       report.Stats.Errored,
		"status":       string(report.Status),
		"duration_ms":  report.Duration.Milliseconds(),
	})

	return report, nil
}

func (x *Executor) recordFailure(ctx context.Context, report *models.RenameReport, e *FileEntry, phase string, err error) {
	report.Stats.Errored++
	report.Errors = append(report.Errors, models.RenameError{
		FilePath:  e.FullPath(),
		Phase:     phase,
		Error:     e.ErrorDetail(),
		Timestamp: time.Now(),
	})
	x.logger.Error(ctx, "rename failed", err, logging.Fields{
		"path":  e.FullPath(),
		"phase": phase,
	})
}

func commitStatus(stats models.Statistics, cancelled bool) models.RenameStatus {
	switch {
	case cancelled:
		return models.StatusCancelled
	case stats.Errored == 0:
		return models.StatusSuccess
	case stats.Renamed > 0:
		return models.StatusPartial
	default:
		return models.StatusFailed
	}
}

// progress turns completed sub-steps into BatchProgress events
type progress struct {
	set   *Set
	total int
	done  int
}

func newProgress(set *Set, total int) *progress {
	p := &progress{set: set, total: total}
	p.emit(0)
	return p
}

func (p *progress) step() {
	if p.done < p.total {
		p.done++
	}
	p.report()
}

// skipTo advances to the given sub-step count without emitting per step
func (p *progress) skipTo(done int) {
	if done > p.done && done <= p.total {
		p.done = done
		p.report()
	}
}

func (p *progress) finish() {
	p.done = p.total
	p.emit(1)
}

func (p *progress) report() {
	if p.total == 0 {
		return
	}
	if p.done == p.total {
		// finish emits the final value
		return
	}
	p.emit(float64(p.done) / float64(p.total))
}

func (p *progress) emit(fraction float64) {
	p.set.emit(Event{Type: EventBatchProgress, Progress: fraction})
}
