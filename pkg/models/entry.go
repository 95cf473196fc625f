package models

// FileState is the position of a tracked file in the rename pipeline
type FileState string

const (
	// StateLoaded indicates the file is tracked but has no usable new name
	StateLoaded FileState = "loaded"
	// StatePrepared indicates a validated new name differing from the original is ready
	StatePrepared FileState = "prepared"
	// StateRenaming indicates the file is parked under its temporary name
	StateRenaming FileState = "renaming"
	// StateRenamed indicates the file carries its new name
	StateRenamed FileState = "renamed"
	// StateError indicates a rename step failed
	StateError FileState = "error"
)

// IsTerminal reports whether no further transition can leave the state
func (s FileState) IsTerminal() bool {
	return s == StateRenamed || s == StateError
}

// CanReplace reports whether a new rule may be applied in this state
func (s FileState) CanReplace() bool {
	return s == StateLoaded || s == StatePrepared
}

// EntryView is an immutable snapshot of a tracked file
type EntryView struct {
	// FullPath is the original absolute path and the identity of the entry
	FullPath string `json:"path"`
	// Directory is the parent directory, separator included
	Directory string `json:"directory"`
	// OldName is the original file name
	OldName string `json:"old_name"`
	// NewName is the candidate name or the reason no candidate exists
	NewName string `json:"new_name"`
	// State is the pipeline state at snapshot time
	State FileState `json:"state"`
	// ErrorDetail explains a failed rename, only set in StateError
	ErrorDetail string `json:"error,omitempty"`
}
