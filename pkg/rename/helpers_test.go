package rename

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/sdejongh/renamr/pkg/storage"
)

// faultFs wraps an afero filesystem to inject permission and rename failures and to
// record every rename in call order
type faultFs struct {
	afero.Fs

	mu         sync.Mutex
	unreadable map[string]bool
	renameHook func(oldname, newname string) error
	renames    [][2]string
}

func newFaultFs() *faultFs {
	return &faultFs{
		Fs:         afero.NewMemMapFs(),
		unreadable: make(map[string]bool),
	}
}

func (f *faultFs) Open(name string) (afero.File, error) {
	f.mu.Lock()
	denied := f.unreadable[name]
	f.mu.Unlock()
	if denied {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Open(name)
}

func (f *faultFs) Rename(oldname, newname string) error {
	f.mu.Lock()
	hook := f.renameHook
	f.mu.Unlock()
	if hook != nil {
		if err := hook(oldname, newname); err != nil {
			return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: err}
		}
	}
	if err := f.Fs.Rename(oldname, newname); err != nil {
		return err
	}
	f.mu.Lock()
	f.renames = append(f.renames, [2]string{oldname, newname})
	f.mu.Unlock()
	return nil
}

func (f *faultFs) deny(dir string) {
	f.mu.Lock()
	f.unreadable[dir] = true
	f.mu.Unlock()
}

func (f *faultFs) onRename(hook func(oldname, newname string) error) {
	f.mu.Lock()
	f.renameHook = hook
	f.mu.Unlock()
}

func (f *faultFs) recorded() [][2]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][2]string, len(f.renames))
	copy(out, f.renames)
	return out
}

// TestHelper builds an in-memory tree and a backend over it
type TestHelper struct {
	t       *testing.T
	fs      *faultFs
	backend storage.Backend
}

func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()
	fs := newFaultFs()
	return &TestHelper{t: t, fs: fs, backend: storage.NewLocalFs(fs)}
}

func (h *TestHelper) CreateFile(path, content string) {
	h.t.Helper()
	if err := afero.WriteFile(h.fs.Fs, path, []byte(content), 0644); err != nil {
		h.t.Fatalf("failed to create %s: %v", path, err)
	}
}

func (h *TestHelper) ReadFile(path string) string {
	h.t.Helper()
	data, err := afero.ReadFile(h.fs.Fs, path)
	if err != nil {
		h.t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func (h *TestHelper) Exists(path string) bool {
	ok, _ := afero.Exists(h.fs.Fs, path)
	return ok
}

// eventLog collects notifications
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) listen(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) ofType(typ EventType) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, ev := range l.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}
