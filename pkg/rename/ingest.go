package rename

import (
	"context"
	"path/filepath"

	"github.com/sdejongh/renamr/pkg/logging"
	"github.com/sdejongh/renamr/pkg/transform"
)

// AddPath tracks the file at path or, for a directory, every file below it. Directories
// are walked depth-first, files before subdirectories. Files and subtrees that cannot be
// read are skipped and the walk continues with their siblings; paths already tracked are
// left as they are. rule may be nil. The returned error is only ever a context error or
// ErrClosed.
func (s *Set) AddPath(ctx context.Context, path string, rule *transform.Rule, exclude []string) (int, error) {
	abs, err := s.backend.Abs(path)
	if err != nil {
		s.logger.Debug(ctx, "skipping path", logging.Fields{"path": path, "reason": err.Error()})
		return 0, nil
	}

	info, err := s.backend.Stat(ctx, abs)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		s.logger.Debug(ctx, "skipping path", logging.Fields{"path": abs, "reason": err.Error()})
		return 0, nil
	}

	if !info.IsDir {
		if excluded(info.Name, exclude) {
			return 0, nil
		}
		ok, err := s.addFile(ctx, abs, rule)
		if ok {
			return 1, err
		}
		return 0, err
	}

	added := 0
	err = s.walk(ctx, abs, abs, rule, exclude, &added)
	s.logger.Debug(ctx, "directory ingested", logging.Fields{"path": abs, "added": added})
	return added, err
}

func (s *Set) walk(ctx context.Context, root, dir string, rule *transform.Rule, exclude []string, added *int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	children, err := s.backend.ReadDir(ctx, dir)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Debug(ctx, "skipping unreadable directory", logging.Fields{"path": dir, "reason": err.Error()})
		return nil
	}

	var subdirs []string
	for _, child := range children {
		rel, _ := filepath.Rel(root, child.Path)
		if excluded(rel, exclude) {
			continue
		}
		if child.IsDir {
			subdirs = append(subdirs, child.Path)
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := s.addFile(ctx, child.Path, rule)
		if err != nil {
			return err
		}
		if ok {
			*added++
		}
	}

	for _, sub := range subdirs {
		if err := s.walk(ctx, root, sub, rule, exclude, added); err != nil {
			return err
		}
	}
	return nil
}

// addFile builds and inserts one entry. Construction failures are skipped.
func (s *Set) addFile(ctx context.Context, fullPath string, rule *transform.Rule) (bool, error) {
	if s.Contains(fullPath) {
		return false, nil
	}

	entry, err := NewFileEntry(s.backend, fullPath, rule)
	if err != nil {
		s.logger.Debug(ctx, "skipping file", logging.Fields{"path": fullPath, "reason": err.Error()})
		return false, nil
	}
	return s.Add(entry)
}
