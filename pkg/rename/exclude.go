package rename

import (
	"path/filepath"
	"strings"
)

// excluded reports whether relPath, relative to the ingestion root, matches one of
// the exclude globs. Supported forms:
//   - name globs matched against the base name: *.tmp, Thumbs.db
//   - directory globs ending in a slash: .git/, node_modules/
//   - path globs holding a slash, anchored at the root or matched as a suffix: raw/*.cr2
//   - deep globs starting with **/: **/cache/*
func excluded(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	rel := filepath.ToSlash(relPath)
	base := filepath.Base(relPath)

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		glob := filepath.ToSlash(pattern)

		switch {
		case strings.HasSuffix(glob, "/"):
			if underDirectory(rel, strings.TrimSuffix(glob, "/")) {
				return true
			}
		case strings.HasPrefix(glob, "**/"):
			if matchDeep(rel, base, strings.TrimPrefix(glob, "**/")) {
				return true
			}
		case strings.Contains(glob, "/"):
			if globMatch(glob, rel) || strings.HasSuffix(rel, "/"+glob) {
				return true
			}
		default:
			if globMatch(glob, base) {
				return true
			}
		}
	}

	return false
}

// underDirectory reports whether rel is dir or lies below a component named dir
func underDirectory(rel, dir string) bool {
	return rel == dir ||
		strings.HasPrefix(rel, dir+"/") ||
		strings.Contains(rel, "/"+dir+"/")
}

// matchDeep matches a **/ suffix glob at any depth
func matchDeep(rel, base, suffix string) bool {
	if globMatch(suffix, base) || rel == suffix || strings.HasSuffix(rel, "/"+suffix) {
		return true
	}
	parts := strings.Split(rel, "/")
	for i := range parts {
		if globMatch(suffix, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

func globMatch(pattern, name string) bool {
	matched, _ := filepath.Match(pattern, name)
	return matched
}
