package tempfiles

import (
	"errors"
	"os"
	"sync"

	"github.com/pavelc4/lukey-bot/pkg/logger"
)

// File is a registered temporary file owned by a single invocation.
type File struct {
	reg  *Registry
	path string

	mu       sync.Mutex
	f        *os.File
	released bool
}

func (t *File) Path() string {
	return t.path
}

func (t *File) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.f == nil {
		return 0, os.ErrClosed
	}
	return t.f.Write(p)
}

// Close closes the underlying handle but keeps the file on disk.
func (t *File) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.f == nil {
		return nil
	}
	err := t.f.Close()
	t.f = nil
	return err
}

func (t *File) Size() (int64, error) {
	info, err := os.Stat(t.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Release closes, removes and unregisters the file. Idempotent.
func (t *File) Release() {
	if t == nil {
		return
	}
	_ = t.Close()

	t.mu.Lock()
	if t.released {
		t.mu.Unlock()
		return
	}
	t.released = true
	t.mu.Unlock()

	if err := os.Remove(t.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		// left registered so CleanupAll retries at shutdown
		logger.Warn("Failed to remove temp file", "path", t.path, "error", err)
		return
	}
	t.reg.remove(t.path)
}
