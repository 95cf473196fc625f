package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTargetExists is returned by Rename when the destination is already taken
	ErrTargetExists = errors.New("target already exists")
	// ErrPathTooLong is returned when a path exceeds the platform limit
	ErrPathTooLong = errors.New("path too long")
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Backend defines the filesystem operations the rename pipeline consumes
type Backend interface {
	// Abs resolves path to an absolute, cleaned path
	Abs(path string) (string, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// ReadDir lists the direct children of a directory, sorted by name
	ReadDir(ctx context.Context, path string) ([]FileInfo, error)

	// Rename moves oldPath to newPath. It never replaces an existing newPath.
	Rename(ctx context.Context, oldPath, newPath string) error

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Close releases any resources held by the backend
	Close() error
}
