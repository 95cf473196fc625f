package rename

import (
	"errors"
	"fmt"

	"github.com/sdejongh/renamr/pkg/models"
)

var (
	// ErrInvalidState is returned when an entry operation is called from a state that
	// does not allow it. It always indicates a programming error.
	ErrInvalidState = errors.New("invalid state")
	// ErrCommitInProgress is returned when Commit is called while another commit runs
	ErrCommitInProgress = errors.New("commit already in progress")
	// ErrClosed is returned by operations on a closed set or session
	ErrClosed = errors.New("closed")
)

// StateError describes an operation attempted from the wrong state
type StateError struct {
	Op    string
	State models.FileState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s not allowed in state %s", ErrInvalidState, e.Op, e.State)
}

// Unwrap makes errors.Is(err, ErrInvalidState) hold
func (e *StateError) Unwrap() error {
	return ErrInvalidState
}
