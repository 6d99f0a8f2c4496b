package rate

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/groundlink-io/groundlink/pkg/log"
)

// Store persists the user's rate overrides as a JSON file and reloads the
// file when something edits it externally.
type Store struct {
	path   string
	logger log.Logger

	mu        sync.RWMutex
	overrides Config
}

func NewStore(path string, logger log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	s := &Store{
		path:      path,
		logger:    logger,
		overrides: make(Config),
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	overrides := make(Config)
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return err
	}

	s.mu.Lock()
	s.overrides = overrides
	s.mu.Unlock()
	return nil
}

func (s *Store) save() error {
	s.mu.RLock()
	raw, err := json.MarshalIndent(s.overrides, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Overrides returns a copy of the persisted override map.
func (s *Store) Overrides() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(Config, len(s.overrides))
	for k, v := range s.overrides {
		out[k] = v
	}
	return out
}

// Put records one override and writes the file back.
func (s *Store) Put(msgType string, r Rate) error {
	s.mu.Lock()
	s.overrides[msgType] = r
	s.mu.Unlock()
	return s.save()
}

// Watch reloads the override file whenever it changes on disk, until ctx is
// done. It returns once the watcher is installed.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory: editors and the atomic rename in save replace the
	// file node rather than writing it in place.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := s.load(); err != nil {
					s.logger.Warn("Failed to reload rate overrides", "path", s.path, "reason", err.Error())
					continue
				}
				s.logger.Info("Reloaded rate overrides", "path", s.path)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("Rate override watcher error", "reason", err.Error())
			}
		}
	}()

	return nil
}
