package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Store holds the current catalog and swaps it atomically on reload.
type Store struct {
	path string
	cur  atomic.Pointer[Catalog]
}

// NewStore loads the sheet at path. A missing or unreadable sheet leaves the
// store with an empty catalog so matches fall back to the seed list.
func NewStore(path string) *Store {
	s := &Store{path: path}
	cat, err := Load(path)
	if err != nil {
		slog.Warn("card sheet unavailable, using empty catalog", "path", path, "error", err)
		cat = Empty()
	}
	s.cur.Store(cat)
	return s
}

// Get returns the current catalog.
func (s *Store) Get() *Catalog {
	return s.cur.Load()
}

// Reload re-reads the sheet. The previous catalog is kept on failure.
func (s *Store) Reload() error {
	cat, err := Load(s.path)
	if err != nil {
		return err
	}
	s.cur.Store(cat)
	slog.Info("card sheet reloaded", "path", s.path, "cards", cat.Len(), "skipped", cat.Skipped())
	return nil
}

// reloadDelay coalesces the burst of events editors emit on save.
const reloadDelay = 200 * time.Millisecond

// Watch reloads the catalog whenever the sheet changes, until ctx is done.
// The directory is watched rather than the file so editors that replace the
// file on save are still seen.
func (s *Store) Watch(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch card sheet: %w", err)
	}
	target := filepath.Clean(s.path)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(reloadDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("card sheet watcher error", "error", err)
		case <-pending:
			pending = nil
			if err := s.Reload(); err != nil {
				slog.Warn("card sheet reload failed", "path", s.path, "error", err)
			}
		}
	}
}
