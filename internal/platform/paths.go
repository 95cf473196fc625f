package platform

import (
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf16"
)

// Maximum lengths used when validating rename candidates.
const (
	// windowsMaxPath is MAX_PATH including the file name
	windowsMaxPath = 260
	// windowsMaxDir is the longest directory (with separator) Windows accepts
	windowsMaxDir = 248
	darwinMaxPath = 1024
	unixMaxPath   = 4096
	// maxComponent is the longest single path component on common filesystems
	maxComponent = 255
)

// NormalizePath normalizes a path for the current platform
func NormalizePath(path string) string {
	normalized := filepath.Clean(path)

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" {
		if strings.HasPrefix(path, "\\\\") && !strings.HasPrefix(normalized, "\\\\") {
			normalized = "\\\\" + normalized
		}
	}

	return normalized
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, "\\\\") || strings.HasPrefix(path, "//")
}

// IsAbsolute checks if a path is absolute
func IsAbsolute(path string) bool {
	if IsUNCPath(path) {
		return true
	}
	return filepath.IsAbs(path)
}

// IsChildOf reports whether path lies strictly below parent
func IsChildOf(path, parent string) bool {
	path = NormalizePath(path)
	parent = NormalizePath(parent)
	if strings.HasSuffix(parent, string(filepath.Separator)) {
		return strings.HasPrefix(path, parent) && len(path) > len(parent)
	}
	return strings.HasPrefix(path, parent+string(filepath.Separator))
}

// MaxPathLength returns the longest full path the platform accepts
func MaxPathLength() int {
	switch runtime.GOOS {
	case "windows":
		return windowsMaxPath
	case "darwin", "ios":
		return darwinMaxPath
	default:
		return unixMaxPath
	}
}

// MaxDirectoryLength returns the longest directory, separator included, that can still
// hold a file
func MaxDirectoryLength() int {
	if runtime.GOOS == "windows" {
		return windowsMaxDir
	}
	return MaxPathLength() - 1
}

// MaxComponentLength returns the longest single file name
func MaxComponentLength() int {
	return maxComponent
}

// NameLength measures a name the way the platform limits it: UTF-16 code units on
// Windows, bytes elsewhere
func NameLength(name string) int {
	if runtime.GOOS == "windows" {
		return len(utf16.Encode([]rune(name)))
	}
	return len(name)
}

// MaxNameLength returns the name budget for files in dir. dir must end with a
// separator. A result below 1 means no file can live in dir.
func MaxNameLength(dir string) int {
	budget := MaxPathLength() - NameLength(dir)
	if limit := MaxComponentLength(); budget > limit {
		budget = limit
	}
	return budget
}

// InvalidFileNameChars returns the characters that may not appear in a file name
func InvalidFileNameChars() string {
	if runtime.GOOS == "windows" {
		var b strings.Builder
		b.WriteString(`<>:"/\|?*`)
		for c := rune(0); c < 32; c++ {
			b.WriteRune(c)
		}
		return b.String()
	}
	return "/\x00"
}

// ContainsInvalidChars reports whether name holds any character illegal in a file name
func ContainsInvalidChars(name string) bool {
	return strings.ContainsAny(name, InvalidFileNameChars())
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(path, char) && !IsUNCPath(path) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
