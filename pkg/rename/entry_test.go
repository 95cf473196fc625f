package rename

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sdejongh/renamr/internal/platform"
	"github.com/sdejongh/renamr/pkg/models"
	"github.com/sdejongh/renamr/pkg/storage"
	"github.com/sdejongh/renamr/pkg/transform"
)

func rule(pattern, replacement string) *transform.Rule {
	return transform.NewRule(pattern, replacement, 0)
}

// ============== Construction Tests ==============

func TestNewFileEntry(t *testing.T) {
	h := NewTestHelper(t)
	h.CreateFile("/data/old.txt", "x")

	t.Run("WithReadyRule", func(t *testing.T) {
		e, err := NewFileEntry(h.backend, "/data/old.txt", rule("old", "new"))
		if err != nil {
			t.Fatalf("NewFileEntry() error = %v", err)
		}
		if e.State() != models.StatePrepared {
			t.Errorf("State() = %s, want prepared", e.State())
		}
		if e.NewName() != "new.txt" {
			t.Errorf("NewName() = %q, want new.txt", e.NewName())
		}
		if e.Directory() != "/data/" || e.OldName() != "old.txt" {
			t.Errorf("Directory() = %q, OldName() = %q", e.Directory(), e.OldName())
		}
		if e.MaxLength() != platform.MaxNameLength("/data/") {
			t.Errorf("MaxLength() = %d", e.MaxLength())
		}
	})

	t.Run("WithoutRule", func(t *testing.T) {
		e, err := NewFileEntry(h.backend, "/data/old.txt", nil)
		if err != nil {
			t.Fatalf("NewFileEntry() error = %v", err)
		}
		if e.State() != models.StateLoaded || e.NewName() != "" {
			t.Errorf("got state %s name %q, want loaded with no name", e.State(), e.NewName())
		}
	})

	t.Run("NonUTF8NameStaysLoaded", func(t *testing.T) {
		h.CreateFile("/data/caf\xe9.txt", "x")
		e, err := NewFileEntry(h.backend, "/data/caf\xe9.txt", rule(`\.txt$`, ".md"))
		if err != nil {
			t.Fatalf("NewFileEntry() error = %v", err)
		}
		if e.State() != models.StateLoaded {
			t.Errorf("State() = %s, want loaded", e.State())
		}
		if e.NewName() != "(file name is not valid UTF-8)" {
			t.Errorf("NewName() = %q", e.NewName())
		}
	})

	t.Run("EmptyNameStaysLoaded", func(t *testing.T) {
		e, _ := NewFileEntry(h.backend, "/data/file.txt", rule("^(.*)$", ""))
		if e.State() != models.StateLoaded {
			t.Errorf("State() = %s, want loaded", e.State())
		}
		if e.NewName() != "(file name would be empty)" {
			t.Errorf("NewName() = %q", e.NewName())
		}
	})

	t.Run("NoMatchStaysLoaded", func(t *testing.T) {
		e, _ := NewFileEntry(h.backend, "/data/data.txt", rule("x", "x"))
		if e.State() != models.StateLoaded {
			t.Errorf("State() = %s, want loaded", e.State())
		}
		if e.NewName() != "(no match)" {
			t.Errorf("NewName() = %q", e.NewName())
		}
	})

	t.Run("PathTooLong", func(t *testing.T) {
		long := "/" + strings.Repeat("d", platform.MaxDirectoryLength()) + "/f.txt"
		_, err := NewFileEntry(h.backend, long, nil)
		if !errors.Is(err, storage.ErrPathTooLong) {
			t.Errorf("NewFileEntry() error = %v, want ErrPathTooLong", err)
		}
	})
}

// ============== State Machine Tests ==============

func TestFileEntry_Replace(t *testing.T) {
	h := NewTestHelper(t)
	h.CreateFile("/data/old.txt", "x")
	e, _ := NewFileEntry(h.backend, "/data/old.txt", nil)

	notified := 0
	e.setNotify(func(*FileEntry) { notified++ })

	if err := e.Replace(rule("old", "new")); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if e.State() != models.StatePrepared {
		t.Errorf("State() = %s, want prepared", e.State())
	}

	if err := e.Replace(rule("zzz", "q")); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if e.State() != models.StateLoaded || e.NewName() != "(no match)" {
		t.Errorf("got state %s name %q", e.State(), e.NewName())
	}

	// same outcome again: no notification
	if err := e.Replace(rule("yyy", "q")); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if notified != 2 {
		t.Errorf("notified %d times, want 2", notified)
	}
}

func TestFileEntry_TwoPhaseRename(t *testing.T) {
	h := NewTestHelper(t)
	h.CreateFile("/data/old.txt", "payload")
	e, _ := NewFileEntry(h.backend, "/data/old.txt", rule("old", "new"))
	ctx := context.Background()

	if err := e.CommitRename(ctx); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("CommitRename() from prepared error = %v, want ErrInvalidState", err)
	}

	if err := e.BeginRename(ctx); err != nil {
		t.Fatalf("BeginRename() error = %v", err)
	}
	if e.State() != models.StateRenaming {
		t.Fatalf("State() = %s, want renaming", e.State())
	}
	temp := e.TempPath()
	if !strings.HasPrefix(temp, "/data/old.txt.") || len(temp) != len("/data/old.txt.")+8 {
		t.Errorf("TempPath() = %q", temp)
	}
	if h.Exists("/data/old.txt") || !h.Exists(temp) {
		t.Error("file should be parked under its temporary name")
	}

	var stateErr *StateError
	if err := e.Replace(rule("old", "other")); !errors.As(err, &stateErr) {
		t.Errorf("Replace() while renaming error = %v, want *StateError", err)
	} else if stateErr.Op != "Replace" || stateErr.State != models.StateRenaming {
		t.Errorf("StateError = %+v", stateErr)
	}

	if err := e.CommitRename(ctx); err != nil {
		t.Fatalf("CommitRename() error = %v", err)
	}
	if e.State() != models.StateRenamed {
		t.Errorf("State() = %s, want renamed", e.State())
	}
	if got := h.ReadFile("/data/new.txt"); got != "payload" {
		t.Errorf("renamed content = %q", got)
	}
	if e.FullPath() != "/data/old.txt" {
		t.Errorf("FullPath() = %q, identity must not change", e.FullPath())
	}

	for name, op := range map[string]func() error{
		"Replace":      func() error { return e.Replace(rule("a", "b")) },
		"BeginRename":  func() error { return e.BeginRename(ctx) },
		"CommitRename": func() error { return e.CommitRename(ctx) },
	} {
		if err := op(); !errors.Is(err, ErrInvalidState) {
			t.Errorf("%s() from renamed error = %v, want ErrInvalidState", name, err)
		}
	}
}

func TestFileEntry_BeginRenameFromLoaded(t *testing.T) {
	h := NewTestHelper(t)
	h.CreateFile("/data/data.txt", "x")
	e, _ := NewFileEntry(h.backend, "/data/data.txt", rule("x", "x"))

	if err := e.BeginRename(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Errorf("BeginRename() error = %v, want ErrInvalidState", err)
	}
	if !h.Exists("/data/data.txt") {
		t.Error("file must not move")
	}
}

func TestFileEntry_BeginRenameFailure(t *testing.T) {
	h := NewTestHelper(t)
	h.CreateFile("/data/old.txt", "x")
	h.fs.onRename(func(oldname, newname string) error {
		return errors.New("device busy")
	})
	e, _ := NewFileEntry(h.backend, "/data/old.txt", rule("old", "new"))

	err := e.BeginRename(context.Background())
	if err == nil {
		t.Fatal("BeginRename() should fail")
	}
	if e.State() != models.StateError {
		t.Errorf("State() = %s, want error", e.State())
	}
	if e.NewName() != RenameFailedMarker {
		t.Errorf("NewName() = %q, want marker", e.NewName())
	}
	if !strings.Contains(e.ErrorDetail(), "device busy") {
		t.Errorf("ErrorDetail() = %q", e.ErrorDetail())
	}
	if err := e.CommitRename(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Errorf("CommitRename() after failure error = %v, want ErrInvalidState", err)
	}
}

// crowdedBackend reports every path as taken
type crowdedBackend struct {
	storage.Backend
	checks int
}

func (b *crowdedBackend) Exists(ctx context.Context, path string) (bool, error) {
	b.checks++
	return true, nil
}

func TestFileEntry_BeginRenameNoFreeTempName(t *testing.T) {
	h := NewTestHelper(t)
	h.CreateFile("/data/old.txt", "x")
	backend := &crowdedBackend{Backend: h.backend}
	e, _ := NewFileEntry(backend, "/data/old.txt", rule("old", "new"))

	err := e.BeginRename(context.Background())
	if err == nil {
		t.Fatal("BeginRename() should fail when every temporary name is taken")
	}
	if backend.checks != maxTempAttempts {
		t.Errorf("Exists() called %d times, want %d", backend.checks, maxTempAttempts)
	}
	if e.State() != models.StateError || !strings.Contains(e.ErrorDetail(), "temporary name") {
		t.Errorf("State() = %s, ErrorDetail() = %q", e.State(), e.ErrorDetail())
	}
	if !h.Exists("/data/old.txt") {
		t.Error("file moved despite the failure")
	}
}

func TestFileEntry_CommitRenameRestores(t *testing.T) {
	h := NewTestHelper(t)
	h.CreateFile("/data/old.txt", "mine")
	e, _ := NewFileEntry(h.backend, "/data/old.txt", rule("old", "new"))
	ctx := context.Background()

	if err := e.BeginRename(ctx); err != nil {
		t.Fatalf("BeginRename() error = %v", err)
	}
	// someone takes the target name between the phases
	h.CreateFile("/data/new.txt", "theirs")

	err := e.CommitRename(ctx)
	if !errors.Is(err, storage.ErrTargetExists) {
		t.Fatalf("CommitRename() error = %v, want ErrTargetExists", err)
	}
	if e.State() != models.StateError {
		t.Errorf("State() = %s, want error", e.State())
	}
	if !strings.Contains(e.ErrorDetail(), "original name restored") {
		t.Errorf("ErrorDetail() = %q", e.ErrorDetail())
	}
	if h.ReadFile("/data/old.txt") != "mine" || h.ReadFile("/data/new.txt") != "theirs" {
		t.Error("both files should be intact")
	}
}

func TestFileEntry_View(t *testing.T) {
	h := NewTestHelper(t)
	h.CreateFile("/data/old.txt", "x")
	e, _ := NewFileEntry(h.backend, "/data/old.txt", rule("old", "new"))

	v := e.View()
	want := models.EntryView{
		FullPath:  "/data/old.txt",
		Directory: "/data/",
		OldName:   "old.txt",
		NewName:   "new.txt",
		State:     models.StatePrepared,
	}
	if v != want {
		t.Errorf("View() = %+v, want %+v", v, want)
	}
}
