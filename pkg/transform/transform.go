// Package transform turns an original file name and a find/replace rule into a validated
// rename candidate. It performs no I/O and keeps no state between calls.
package transform

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/sdejongh/renamr/internal/platform"
)

// DefaultTimeout bounds a single substitution against catastrophic backtracking
const DefaultTimeout = 5 * time.Millisecond

// ErrInvalidEncoding marks names that are not valid UTF-8. The regex engine works on
// runes and would replace every invalid byte, so such names are never transformed.
var ErrInvalidEncoding = errors.New("file name is not valid UTF-8")

// Outcome classifies the result of applying a rule to a name
type Outcome int

const (
	// Ready means the candidate is valid and differs from the original name
	Ready Outcome = iota
	// NoMatch means the validated candidate equals the original name
	NoMatch
	// EmptyName means nothing is left after trimming
	EmptyName
	// TooLong means the candidate exceeds the directory-aware length budget
	TooLong
	// InvalidChars means the candidate holds a character illegal in file names
	InvalidChars
	// InvalidPattern means the pattern or replacement could not be parsed
	InvalidPattern
	// RegexTimeout means the substitution exceeded its time budget
	RegexTimeout
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case Ready:
		return "ready"
	case NoMatch:
		return "no-match"
	case EmptyName:
		return "empty-name"
	case TooLong:
		return "too-long"
	case InvalidChars:
		return "invalid-chars"
	case InvalidPattern:
		return "invalid-pattern"
	case RegexTimeout:
		return "regex-timeout"
	default:
		return "unknown"
	}
}

// Result is the outcome of one transformation
type Result struct {
	// Name is the trimmed candidate; set for Ready, NoMatch, TooLong and InvalidChars
	// (except names that are not valid UTF-8)
	Name string
	// Outcome classifies the candidate
	Outcome Outcome
	// Err holds the regex error for InvalidPattern and RegexTimeout, and
	// ErrInvalidEncoding for names that are not valid UTF-8
	Err error
}

// OK reports whether the candidate can be used as a new name
func (r Result) OK() bool {
	return r.Outcome == Ready
}

// Display returns the text shown in place of the new name: the candidate itself when
// it is ready, an explanatory message otherwise
func (r Result) Display() string {
	switch r.Outcome {
	case Ready:
		return r.Name
	case NoMatch:
		return "(no match)"
	case EmptyName:
		return "(file name would be empty)"
	case TooLong:
		return fmt.Sprintf("(file name too long) %s", r.Name)
	case InvalidChars:
		if errors.Is(r.Err, ErrInvalidEncoding) {
			return "(file name is not valid UTF-8)"
		}
		return fmt.Sprintf("(invalid characters) %s", r.Name)
	case InvalidPattern:
		return "(invalid regular expression)"
	case RegexTimeout:
		return "(regular expression timed out)"
	default:
		return ""
	}
}

// Rule is a compiled find/replace pair. A rule whose pattern fails to compile is still
// usable: every Apply yields InvalidPattern. Rules are safe for concurrent use.
type Rule struct {
	Pattern     string
	Replacement string

	re  *regexp2.Regexp
	err error
}

// NewRule compiles pattern with the given match timeout
func NewRule(pattern, replacement string, timeout time.Duration) *Rule {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := &Rule{Pattern: pattern, Replacement: replacement}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		r.err = err
		return r
	}
	re.MatchTimeout = timeout
	r.re = re
	return r
}

// Err returns the compile error, if any
func (r *Rule) Err() error {
	return r.err
}

// Apply transforms oldName. maxLength is the name budget of the directory holding the
// file; candidates longer than it are rejected.
func (r *Rule) Apply(oldName string, maxLength int) Result {
	if r.err != nil {
		return Result{Outcome: InvalidPattern, Err: r.err}
	}
	if !utf8.ValidString(oldName) {
		return Result{Outcome: InvalidChars, Err: ErrInvalidEncoding}
	}

	replaced, err := r.re.Replace(oldName, r.Replacement, -1, -1)
	if err != nil {
		if isTimeout(err) {
			return Result{Outcome: RegexTimeout, Err: err}
		}
		return Result{Outcome: InvalidPattern, Err: err}
	}

	return Validate(oldName, replaced, maxLength)
}

// Validate normalizes a substitution result and checks it against the file name rules
func Validate(oldName, candidate string, maxLength int) Result {
	name := Normalize(candidate)

	if name == "" {
		return Result{Outcome: EmptyName}
	}
	if platform.NameLength(name) > maxLength {
		return Result{Name: name, Outcome: TooLong}
	}
	if !utf8.ValidString(name) {
		return Result{Outcome: InvalidChars, Err: ErrInvalidEncoding}
	}
	if platform.ContainsInvalidChars(name) {
		return Result{Name: name, Outcome: InvalidChars}
	}
	if name == oldName {
		return Result{Name: name, Outcome: NoMatch}
	}
	return Result{Name: name, Outcome: Ready}
}

// Normalize trims leading spaces and trailing spaces and dots
func Normalize(name string) string {
	return strings.TrimRight(strings.TrimLeft(name, " "), " .")
}

// Transform compiles pattern and applies it to oldName in one call
func Transform(oldName, pattern, replacement string, maxLength int) Result {
	return NewRule(pattern, replacement, DefaultTimeout).Apply(oldName, maxLength)
}

// isTimeout recognizes regexp2's timeout error, which has no type of its own. It relies
// on the message "match timeout after <d> on input `<s>`" built by regexp2's runner.
func isTimeout(err error) bool {
	return strings.Contains(err.Error(), "match timeout")
}
