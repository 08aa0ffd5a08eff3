package tempfiles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pavelc4/lukey-bot/pkg/logger"
)

const (
	PatternFetch   = "lukey-fetch-*"
	PatternPalette = "lukey-palette-*.png"
	PatternEncode  = "lukey-encode-*.gif"
)

// Patterns contains every temporary file pattern the bot creates.
var Patterns = []string{
	PatternFetch,
	PatternPalette,
	PatternEncode,
}

// Registry tracks temporary files that have not been released yet, so a
// shutdown hook can remove whatever a crashed invocation left behind.
type Registry struct {
	dir   string
	mu    sync.Mutex
	paths map[string]struct{}
}

func NewRegistry(dir string) *Registry {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Registry{
		dir:   dir,
		paths: make(map[string]struct{}),
	}
}

func (r *Registry) Dir() string {
	return r.dir
}

// Create opens a new temporary file and registers it. The caller owns the
// returned File and must Release it.
func (r *Registry) Create(pattern string) (*File, error) {
	f, err := os.CreateTemp(r.dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	r.add(f.Name())
	return &File{reg: r, path: f.Name(), f: f}, nil
}

// Reserve creates an empty registered file and closes it, for paths that an
// external tool writes to.
func (r *Registry) Reserve(pattern string) (*File, error) {
	file, err := r.Create(pattern)
	if err != nil {
		return nil, err
	}
	if err := file.Close(); err != nil {
		file.Release()
		return nil, err
	}
	return file, nil
}

func (r *Registry) add(path string) {
	r.mu.Lock()
	r.paths[path] = struct{}{}
	r.mu.Unlock()
}

func (r *Registry) remove(path string) {
	r.mu.Lock()
	delete(r.paths, path)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func (r *Registry) Paths() []string {
	r.mu.Lock()
	out := make([]string, 0, len(r.paths))
	for p := range r.paths {
		out = append(out, p)
	}
	r.mu.Unlock()
	sort.Strings(out)
	return out
}

// CleanupAll removes every file still registered and returns how many were
// removed. Safe to call more than once.
func (r *Registry) CleanupAll() int {
	r.mu.Lock()
	paths := r.paths
	r.paths = make(map[string]struct{})
	r.mu.Unlock()

	removed := 0
	for path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove temp file", "path", path, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Info("Temp files cleaned up", "count", removed)
	}
	return removed
}

// SweepStale removes files matching Patterns in dir left by a previous
// process. Registered files of this process are skipped.
func (r *Registry) SweepStale(ctx context.Context) int {
	cleaned := 0
	for _, pattern := range Patterns {
		select {
		case <-ctx.Done():
			logger.Warn("Stale temp sweep cancelled", "cleaned", cleaned)
			return cleaned
		default:
		}

		matches, err := filepath.Glob(filepath.Join(r.dir, pattern))
		if err != nil {
			logger.Warn("Invalid temp pattern", "pattern", pattern, "error", err)
			continue
		}

		for _, path := range matches {
			if r.tracked(path) {
				continue
			}
			if err := os.RemoveAll(path); err != nil {
				logger.Warn("Failed to remove stale temp file", "path", path, "error", err)
				continue
			}
			cleaned++
		}
	}
	if cleaned > 0 {
		logger.Info("Stale temp files removed", "count", cleaned)
	}
	return cleaned
}

func (r *Registry) tracked(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.paths[path]
	return ok
}
