// Package history persists the ordered list of titled memories across
// sessions as a single JSON snapshot.
package history

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"

	"github.com/anikutusu/anikutusu"
)

// Store is the durable memory history. The list lives in memory and is
// rewritten wholesale to the snapshot file on every append: one browser-tab
// model, single writer, no partial writes to recover from.
type Store struct {
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	memories []anikutusu.Memory
	loaded   bool
}

// DefaultPath returns the snapshot location under the user data directory.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join("anikutusu", "history.json"))
}

// New creates a store over the given snapshot path.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Load returns the persisted history, newest first. A missing snapshot is
// an empty history; a corrupted snapshot is treated as empty and cleared
// rather than surfaced.
func (s *Store) Load() []anikutusu.Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return append([]anikutusu.Memory{}, s.memories...)
}

func (s *Store) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("could not read history snapshot", "path", s.path, "error", err)
		}
		return
	}

	var memories []anikutusu.Memory
	if err := json.Unmarshal(data, &memories); err != nil {
		s.logger.Warn("history snapshot corrupted, clearing", "path", s.path, "error", err)
		if err := os.Remove(s.path); err != nil {
			s.logger.Warn("could not clear corrupted snapshot", "path", s.path, "error", err)
		}
		return
	}
	s.memories = memories
}

// Append inserts the memory at the head of the history and rewrites the
// snapshot. Persistence failures are logged and swallowed: the in-memory
// history still reflects the append for the current session.
func (s *Store) Append(m anikutusu.Memory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	s.memories = append([]anikutusu.Memory{m}, s.memories...)

	if err := s.persistLocked(); err != nil {
		s.logger.Warn("could not persist history", "path", s.path, "error",
			anikutusu.NewPersistenceError("history write failed", err))
	}
}

func (s *Store) persistLocked() error {
	data, err := json.Marshal(s.memories)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Get returns the memory with the given identifier.
func (s *Store) Get(id string) (anikutusu.Memory, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	for _, m := range s.memories {
		if m.ID == id {
			return m, true
		}
	}
	return anikutusu.Memory{}, false
}

// Clear removes every memory and the snapshot file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memories = nil
	s.loaded = true
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return anikutusu.NewPersistenceError("could not clear history", err)
	}
	return nil
}
