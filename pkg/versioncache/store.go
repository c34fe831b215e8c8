// Package versioncache provides the persistent application id to latest
// version store shared by all update engines.
package versioncache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/fsutil"
)

// FileName is the name of the store inside the state directory.
const FileName = "versions.json"

const formatVersion = "1"

// Entry is one cached resolution.
type Entry struct {
	Version    string    `json:"version"`
	ResolvedAt time.Time `json:"resolved_at"`
}

type storeFile struct {
	FormatVersion string           `json:"format_version"`
	LastUpdate    time.Time        `json:"last_update"`
	Entries       map[string]Entry `json:"entries"`
}

// Store is a JSON-file backed version cache, safe for concurrent use.
// Entries older than the TTL are treated as absent; a zero TTL keeps
// entries until they are overwritten or invalidated.
type Store struct {
	path    string
	ttl     time.Duration
	now     func() time.Time
	rwMutex sync.RWMutex
	entries map[string]Entry
}

// Open loads the store at path. A missing file yields an empty store; a
// corrupt file is logged and replaced on the next write.
func Open(path string, ttl time.Duration) (*Store, error) {
	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		return nil, fmt.Errorf("version cache path must be absolute: %s: %w", path, errors.ErrInvalidPath)
	}

	s := &Store{
		path:    cleanPath,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry),
	}

	file, err := os.Open(cleanPath)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open version cache: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := s.load(file); err != nil {
		logger.Warn("Discarding unreadable version cache", logger.Fields{"path": cleanPath, "error": err})
		s.entries = make(map[string]Entry)
	}
	return s, nil
}

func (s *Store) load(r io.Reader) error {
	var data storeFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return fmt.Errorf("failed to parse version cache: %w", err)
	}
	for id, entry := range data.Entries {
		s.entries[id] = entry
	}
	return nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) fresh(entry Entry) bool {
	return s.ttl <= 0 || s.now().Sub(entry.ResolvedAt) < s.ttl
}

// Has reports whether a fresh entry exists for id.
func (s *Store) Has(id string) bool {
	_, err := s.Get(id)
	return err == nil
}

// Get returns the fresh entry for id or ErrNotFound.
func (s *Store) Get(id string) (Entry, error) {
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()

	entry, ok := s.entries[id]
	if !ok || !s.fresh(entry) {
		return Entry{}, fmt.Errorf("version for %s: %w", id, errors.ErrNotFound)
	}
	return entry, nil
}

// Put records version for id and persists the store.
func (s *Store) Put(id, version string) error {
	if id == "" {
		return errors.ErrEmptyAppID
	}

	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()

	s.entries[id] = Entry{Version: version, ResolvedAt: s.now().UTC()}
	return s.saveLocked()
}

// Invalidate drops the entry for id so the next lookup resolves again.
func (s *Store) Invalidate(id string) error {
	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()

	if _, ok := s.entries[id]; !ok {
		return nil
	}
	delete(s.entries, id)
	return s.saveLocked()
}

// Clear drops every entry and removes the backing file.
func (s *Store) Clear() error {
	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()

	s.entries = make(map[string]Entry)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove version cache: %w", err)
	}
	return nil
}

// Entries returns a copy of all entries, including stale ones.
func (s *Store) Entries() map[string]Entry {
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()

	out := make(map[string]Entry, len(s.entries))
	for id, entry := range s.entries {
		out[id] = entry
	}
	return out
}

// IsStale reports whether entry has outlived the TTL.
func (s *Store) IsStale(entry Entry) bool {
	return !s.fresh(entry)
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(storeFile{
		FormatVersion: formatVersion,
		LastUpdate:    s.now().UTC(),
		Entries:       s.entries,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal version cache: %w", err)
	}

	if err := fsutil.EnsureFileDir(s.path); err != nil {
		return fmt.Errorf("failed to create version cache directory: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write version cache %s: %w", s.path, err)
	}
	return nil
}
