package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/sdejongh/renamr/internal/platform"
)

// Local is a filesystem-based storage backend
type Local struct {
	fs afero.Fs
}

// NewLocal creates a backend on the operating system filesystem
func NewLocal() *Local {
	return &Local{fs: afero.NewOsFs()}
}

// NewLocalFs creates a backend on an arbitrary afero filesystem
func NewLocalFs(fs afero.Fs) *Local {
	return &Local{fs: fs}
}

// Fs returns the underlying filesystem
func (l *Local) Fs() afero.Fs {
	return l.fs
}

// Abs resolves path to an absolute, cleaned path
func (l *Local) Abs(path string) (string, error) {
	abs := path
	if !platform.IsAbsolute(path) {
		var err error
		if abs, err = filepath.Abs(path); err != nil {
			return "", fmt.Errorf("failed to resolve path: %w", err)
		}
	}
	abs = platform.NormalizePath(abs)
	if platform.NameLength(abs) > platform.MaxPathLength() {
		return "", fmt.Errorf("%w: %s", ErrPathTooLong, abs)
	}
	return abs, nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := l.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &FileInfo{
		Path:    path,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}

// ReadDir lists the direct children of a directory, sorted by name
func (l *Local) ReadDir(ctx context.Context, path string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	entries := make([]FileInfo, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, FileInfo{
			Path:    filepath.Join(path, info.Name()),
			Name:    info.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   info.IsDir(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return entries, nil
}

// Rename moves oldPath to newPath without replacing an existing file
func (l *Local) Rename(ctx context.Context, oldPath, newPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := l.Exists(ctx, newPath)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrTargetExists, newPath)
	}

	if err := l.fs.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}

	return nil
}

// Exists checks if a file or directory exists
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	exists, err := afero.Exists(l.fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}
