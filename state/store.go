// Package state persists small amounts of job state (cooldown stamps,
// daily markers) as a single JSON file. The file is shared with future
// versions of the tool, so unknown keys are preserved on every write.
package state

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/logger"
)

// Store is a whole-file read-modify-write JSON store. All methods are
// safe for concurrent use within one process; cross-process writers are
// serialized only by the atomicity of rename.
type Store struct {
	path string

	mu         sync.Mutex
	warnedLoad bool
}

// Open returns a store backed by the given file path. The file and its
// directory are created lazily on the first write.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Get returns the raw JSON value under key. Read failures are reported
// but the value reads as absent, so callers can fail open.
func (s *Store) Get(key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadLocked()
	v, ok := data[key]
	return v, ok, err
}

// Set stores a JSON-marshalable value under key and persists the file
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, _ := s.loadLocked()
	data[key] = value
	return s.persistLocked(data)
}

// Delete removes key and persists. Deleting an absent key is a no-op
// that still succeeds without touching the file.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, _ := s.loadLocked()
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return s.persistLocked(data)
}

// Keys returns all keys in sorted order
func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadLocked()
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, err
}

// All returns a copy of the full key-value map, for the state dump verb
func (s *Store) All() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.loadLocked()
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out, err
}

// Clear replaces the backing file with an empty map, so the next read
// sees a well-formed store rather than a missing file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.persistLocked(map[string]any{})
}

// GetTime reads a timestamp stored as epoch milliseconds. Values that
// are not JSON numbers read as absent.
func (s *Store) GetTime(key string) (time.Time, bool, error) {
	v, ok, err := s.Get(key)
	if !ok {
		return time.Time{}, false, err
	}

	var ms int64
	switch n := v.(type) {
	case json.Number:
		i, convErr := n.Int64()
		if convErr != nil {
			// Fractional epoch values truncate toward zero
			f, fErr := n.Float64()
			if fErr != nil {
				return time.Time{}, false, err
			}
			i = int64(f)
		}
		ms = i
	case float64:
		ms = int64(n)
	case int64:
		ms = n
	case int:
		ms = int64(n)
	default:
		return time.Time{}, false, err
	}

	return time.UnixMilli(ms).UTC(), true, err
}

// SetTime stores a timestamp as epoch milliseconds (UTC)
func (s *Store) SetTime(key string, t time.Time) error {
	return s.Set(key, t.UTC().UnixMilli())
}

// loadLocked reads the whole file into a map. Missing files are normal
// (first run); unreadable or malformed files warn once and read as empty.
// The caller must hold s.mu.
func (s *Store) loadLocked() (map[string]any, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debugw("state file absent, starting empty", logger.FieldPath, s.path)
			return map[string]any{}, nil
		}
		if !s.warnedLoad {
			s.warnedLoad = true
			logger.Warnw("state file unreadable, treating as empty",
				logger.FieldPath, s.path,
				logger.FieldError, err.Error())
		}
		return map[string]any{}, errors.WrapState(err, "failed to read state file")
	}

	// UseNumber keeps numeric values as their original digits so epoch
	// timestamps survive round-trips without float formatting drift
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		if !s.warnedLoad {
			s.warnedLoad = true
			logger.Warnw("state file malformed, treating as empty",
				logger.FieldPath, s.path,
				logger.FieldError, err.Error())
		}
		return map[string]any{}, errors.WrapState(err, "failed to parse state file")
	}
	if data == nil {
		data = map[string]any{}
	}

	return data, nil
}

// persistLocked writes the map atomically: temp file in the same
// directory, then rename. The caller must hold s.mu.
func (s *Store) persistLocked(data map[string]any) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.WrapState(err, "failed to create state directory")
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.WrapState(err, "failed to encode state")
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return errors.WrapState(err, "failed to create temp state file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.WrapState(err, "failed to write temp state file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.WrapState(err, "failed to close temp state file")
	}

	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return errors.WrapState(err, "failed to chmod temp state file")
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return errors.WrapState(err, "failed to move state file into place")
	}

	return nil
}
