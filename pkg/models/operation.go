package models

import (
	"time"
)

// RenameOperation represents one batch rename request
type RenameOperation struct {
	ID              string
	Paths           []string
	Pattern         string
	Replacement     string
	ExcludePatterns []string
	RegexTimeout    time.Duration
	DryRun          bool
	CreatedAt       time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

// Validate checks if the operation configuration is valid
func (op *RenameOperation) Validate() error {
	if len(op.Paths) == 0 {
		return &ValidationError{Field: "Paths", Message: "at least one path is required"}
	}
	for _, p := range op.Paths {
		if p == "" {
			return &ValidationError{Field: "Paths", Message: "paths must not be empty"}
		}
	}
	if op.Pattern == "" {
		return &ValidationError{Field: "Pattern", Message: "pattern is required"}
	}
	if op.RegexTimeout < 0 {
		return &ValidationError{Field: "RegexTimeout", Message: "regex timeout must not be negative"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
