package models

import (
	"time"
)

// RenameReport represents the results of a commit
type RenameReport struct {
	// Operation details
	OperationID string
	Pattern     string
	Replacement string
	DryRun      bool

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Results holds one row per entry, in path order
	Results []EntryView

	// Errors encountered
	Errors []RenameError

	// Overall status
	Status RenameStatus
}

// Statistics holds commit metrics
type Statistics struct {
	Entries  int // Entries in the set when the commit started
	Prepared int // Entries eligible for renaming
	Staged   int // Entries moved to a temporary name
	Renamed  int
	Errored  int
	Skipped  int // Entries without a usable new name
}

// RenameStatus represents the overall result
type RenameStatus string

const (
	// StatusSuccess indicates all operations completed successfully
	StatusSuccess RenameStatus = "success"
	// StatusPartial indicates some operations failed
	StatusPartial RenameStatus = "partial"
	// StatusFailed indicates the rename operation failed
	StatusFailed RenameStatus = "failed"
	// StatusCancelled indicates the operation was cancelled
	StatusCancelled RenameStatus = "cancelled"
)

// RenameError represents an error during a commit
type RenameError struct {
	FilePath  string
	Phase     string
	Error     string
	Timestamp time.Time
}

// ExitCode returns the appropriate exit code for the rename status
func (s RenameStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
