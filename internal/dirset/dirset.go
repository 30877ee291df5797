// Package dirset holds the mutable list of search root directories.
// It replaces the process-wide global of the original design with an
// explicit object owned by the serving layer.
package dirset

import (
	"errors"
	"os"
	"strings"
	"sync"
)

var (
	// ErrEmpty is returned when an empty path is added.
	ErrEmpty = errors.New("directory path cannot be empty")
	// ErrDuplicate is returned when the path is already in the set.
	ErrDuplicate = errors.New("directory already exists")
	// ErrNotExist is returned when the path does not exist on disk.
	ErrNotExist = errors.New("directory does not exist")
	// ErrNotFound is returned when removing a path not in the set.
	ErrNotFound = errors.New("directory not found")
)

// Set is a concurrency-safe ordered set of root paths. Entries are not
// required to exist; validity is checked lazily at use time.
type Set struct {
	defaults func() []string

	mu   sync.RWMutex
	dirs []string
}

// New returns a Set seeded with defaults(). defaults is re-invoked on
// Reset, so directory existence is re-evaluated then.
func New(defaults func() []string) *Set {
	s := &Set{defaults: defaults}
	s.Reset()
	return s
}

// List returns a copy of the current entries in order.
func (s *Set) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.dirs...)
}

// Valid returns the entries that currently exist on disk.
func (s *Set) Valid() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.dirs))
	for _, d := range s.dirs {
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			out = append(out, d)
		}
	}
	return out
}

// Invalid returns the entries that do not currently exist.
func (s *Set) Invalid() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, d := range s.dirs {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			out = append(out, d)
		}
	}
	return out
}

// Add appends dir to the set. It rejects empty paths, duplicates, and
// paths that do not exist.
func (s *Set) Add(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return ErrEmpty
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return ErrNotExist
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.dirs {
		if d == dir {
			return ErrDuplicate
		}
	}
	s.dirs = append(s.dirs, dir)
	return nil
}

// Remove deletes dir from the set.
func (s *Set) Remove(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.dirs {
		if d == dir {
			s.dirs = append(s.dirs[:i], s.dirs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Reset replaces the set with the defaults.
func (s *Set) Reset() {
	dirs := s.defaults()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs = dedupe(dirs)
}

// Clear empties the set.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs = nil
}

// Len returns the number of entries.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dirs)
}

func dedupe(dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
