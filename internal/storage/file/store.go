// Package file provides a storage.Store persisted as a single JSON snapshot
// on disk. Every mutation rewrites the snapshot before returning, so the file
// always reflects the last acknowledged write. Paths ending in ".gz" are
// gzip-compressed.
package file

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"

	"github.com/xenking/tiffin-storefront/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store is a snapshot-backed key-value store.
type Store struct {
	mu     sync.Mutex
	path   string
	gzip   bool
	values map[string]string
}

// Open reads the snapshot at path, creating an empty store when the file
// does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		gzip:   strings.HasSuffix(path, ".gz"),
		values: make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, errors.Wrapf(err, "load snapshot %s", path)
	}
	return s, nil
}

// Path returns the snapshot location.
func (s *Store) Path() string { return s.path }

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return []byte(v), nil
}

// Set stores value under key and rewrites the snapshot.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = string(value)
	if err := s.flush(); err != nil {
		// Keep memory and disk in agreement.
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// Delete removes key and rewrites the snapshot.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	if !had {
		return nil
	}
	delete(s.values, key)
	if err := s.flush(); err != nil {
		s.values[key] = prev
		return err
	}
	return nil
}

func (s *Store) load() error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if s.gzip {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrap(err, "open gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	if err := json.NewDecoder(r).Decode(&s.values); err != nil {
		return errors.Wrap(err, "decode snapshot")
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	return nil
}

// flush writes the snapshot to a temporary file in the same directory and
// renames it over the previous one. Must be called with s.mu held.
func (s *Store) flush() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create snapshot dir")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := s.encode(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close snapshot")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replace snapshot")
	}
	return nil
}

func (s *Store) encode(w io.Writer) error {
	if !s.gzip {
		return errors.Wrap(json.NewEncoder(w).Encode(s.values), "encode snapshot")
	}

	gz := pgzip.NewWriter(w)
	if err := json.NewEncoder(gz).Encode(s.values); err != nil {
		_ = gz.Close()
		return errors.Wrap(err, "encode snapshot")
	}
	return errors.Wrap(gz.Close(), "close gzip writer")
}
