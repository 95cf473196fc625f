package rename

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sdejongh/renamr/internal/platform"
	"github.com/sdejongh/renamr/pkg/models"
	"github.com/sdejongh/renamr/pkg/storage"
	"github.com/sdejongh/renamr/pkg/transform"
)

// RenameFailedMarker replaces the new name of an entry whose rename failed
const RenameFailedMarker = "(rename failed)"

// FileEntry is one tracked file and its position in the rename pipeline.
//
// The identity fields never change, even after the file has been moved: an entry always
// models the file that was at fullPath when it was loaded. The mutable fields are only
// written by the goroutine currently driving the entry (a preview pass or a commit).
type FileEntry struct {
	backend storage.Backend

	fullPath  string
	directory string
	oldName   string
	maxLength int

	mu          sync.RWMutex
	newName     string
	state       models.FileState
	errorDetail string
	tempPath    string
	notify      func(*FileEntry)
}

// NewFileEntry builds a Loaded entry for the file at fullPath and applies rule when it
// is not nil. The name budget is fixed here from the parent directory length.
func NewFileEntry(backend storage.Backend, fullPath string, rule *transform.Rule) (*FileEntry, error) {
	if platform.NameLength(fullPath) > platform.MaxPathLength() {
		return nil, fmt.Errorf("%w: %s", storage.ErrPathTooLong, fullPath)
	}

	directory := filepath.Dir(fullPath)
	if !strings.HasSuffix(directory, string(filepath.Separator)) {
		directory += string(filepath.Separator)
	}
	if platform.NameLength(directory) > platform.MaxDirectoryLength() {
		return nil, fmt.Errorf("%w: %s", storage.ErrPathTooLong, directory)
	}

	e := &FileEntry{
		backend:   backend,
		fullPath:  fullPath,
		directory: directory,
		oldName:   filepath.Base(fullPath),
		maxLength: platform.MaxNameLength(directory),
		state:     models.StateLoaded,
	}
	if rule != nil {
		e.apply(rule)
	}
	return e, nil
}

// FullPath returns the original absolute path, the identity of the entry
func (e *FileEntry) FullPath() string { return e.fullPath }

// Directory returns the parent directory, separator included
func (e *FileEntry) Directory() string { return e.directory }

// OldName returns the original file name
func (e *FileEntry) OldName() string { return e.oldName }

// MaxLength returns the name budget of the entry
func (e *FileEntry) MaxLength() int { return e.maxLength }

// NewName returns the candidate name or the rejection message
func (e *FileEntry) NewName() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.newName
}

// State returns the current pipeline state
func (e *FileEntry) State() models.FileState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// ErrorDetail returns the cause of a failed rename
func (e *FileEntry) ErrorDetail() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.errorDetail
}

// View returns a consistent snapshot of the entry
func (e *FileEntry) View() models.EntryView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.viewLocked()
}

func (e *FileEntry) viewLocked() models.EntryView {
	return models.EntryView{
		FullPath:    e.fullPath,
		Directory:   e.directory,
		OldName:     e.oldName,
		NewName:     e.newName,
		State:       e.state,
		ErrorDetail: e.errorDetail,
	}
}

// Replace applies rule to the original name. It is only legal from Loaded or Prepared.
func (e *FileEntry) Replace(rule *transform.Rule) error {
	e.mu.Lock()
	if !e.state.CanReplace() {
		state := e.state
		e.mu.Unlock()
		return &StateError{Op: "Replace", State: state}
	}
	changed := e.apply(rule)
	notify := e.notify
	e.mu.Unlock()

	if changed && notify != nil {
		notify(e)
	}
	return nil
}

// apply stores the transform result and reports whether anything visible changed.
// Callers hold e.mu or own the entry exclusively.
func (e *FileEntry) apply(rule *transform.Rule) bool {
	result := rule.Apply(e.oldName, e.maxLength)

	state := models.StateLoaded
	if result.OK() {
		state = models.StatePrepared
	}
	name := result.Display()

	if name == e.newName && state == e.state {
		return false
	}
	e.newName = name
	e.state = state
	return true
}

// BeginRename moves the file to a fresh temporary name. It is only legal from Prepared.
// On I/O failure the entry moves to Error and the cause is returned.
func (e *FileEntry) BeginRename(ctx context.Context) error {
	e.mu.Lock()
	if e.state != models.StatePrepared {
		state := e.state
		e.mu.Unlock()
		return &StateError{Op: "BeginRename", State: state}
	}

	err := e.stage(ctx)
	if err != nil {
		e.failLocked(err.Error())
	} else {
		e.state = models.StateRenaming
	}
	notify := e.notify
	e.mu.Unlock()

	if notify != nil {
		notify(e)
	}
	return err
}

func (e *FileEntry) stage(ctx context.Context) error {
	temp, err := e.freeTempPath(ctx)
	if err != nil {
		return err
	}
	if err := e.backend.Rename(ctx, e.fullPath, temp); err != nil {
		return fmt.Errorf("failed to move %s to temporary name: %w", e.oldName, err)
	}
	e.tempPath = temp
	return nil
}

// maxTempAttempts bounds the search for an unused temporary name
const maxTempAttempts = 16

// freeTempPath derives an unused sibling of fullPath with a random suffix
func (e *FileEntry) freeTempPath(ctx context.Context) (string, error) {
	for i := 0; i < maxTempAttempts; i++ {
		candidate := e.fullPath + "." + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
		exists, err := e.backend.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check temporary name: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("failed to find a free temporary name for %s after %d attempts", e.oldName, maxTempAttempts)
}

// CommitRename moves the file from its temporary name to its new name. It is only legal
// from Renaming. On failure the file is moved back to its original name when possible.
func (e *FileEntry) CommitRename(ctx context.Context) error {
	e.mu.Lock()
	if e.state != models.StateRenaming {
		state := e.state
		e.mu.Unlock()
		return &StateError{Op: "CommitRename", State: state}
	}

	target := e.directory + e.newName
	err := e.backend.Rename(ctx, e.tempPath, target)
	if err != nil {
		err = fmt.Errorf("failed to move %s to %s: %w", e.oldName, e.newName, err)
		detail := err.Error()
		if restoreErr := e.backend.Rename(ctx, e.tempPath, e.fullPath); restoreErr != nil {
			detail += fmt.Sprintf("; file left at %s", e.tempPath)
		} else {
			detail += "; original name restored"
			e.tempPath = ""
		}
		e.failLocked(detail)
	} else {
		e.tempPath = ""
		e.state = models.StateRenamed
	}
	notify := e.notify
	e.mu.Unlock()

	if notify != nil {
		notify(e)
	}
	return err
}

func (e *FileEntry) failLocked(detail string) {
	e.state = models.StateError
	e.newName = RenameFailedMarker
	e.errorDetail = detail
}

// setNotify installs or, with nil, detaches the change hook
func (e *FileEntry) setNotify(fn func(*FileEntry)) {
	e.mu.Lock()
	e.notify = fn
	e.mu.Unlock()
}

// TempPath returns the temporary path while the entry is Renaming
func (e *FileEntry) TempPath() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tempPath
}
