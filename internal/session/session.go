// Package session tracks which artifacts an agent session has touched.
//
// The touched set backs the test-first precondition: an implementation file
// is only writable once one of its counterpart test files has been touched
// in the same session. The set only grows during a session and is discarded
// by Reset at the next session start.
package session

import (
	"context"
	"path/filepath"
	"sync"
)

// Session is one continuous agent working session bound to its store.
// Sessions with distinct IDs are fully isolated even when they share a
// backing store.
type Session struct {
	id    string
	store Store
}

// New binds a session id to a store.
func New(id string, store Store) *Session {
	return &Session{id: id, store: store}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Reset clears all state for this session. Idempotent.
func (s *Session) Reset(ctx context.Context) error {
	return s.store.Reset(ctx, s.id)
}

// RecordTouched adds a path to the touched set. No-op if already present.
func (s *Session) RecordTouched(ctx context.Context, path string) error {
	return s.store.RecordTouched(ctx, s.id, Normalize(path))
}

// HasTouched reports whether the path has been touched this session.
func (s *Session) HasTouched(ctx context.Context, path string) (bool, error) {
	return s.store.HasTouched(ctx, s.id, Normalize(path))
}

// Touched returns all touched paths in insertion order.
func (s *Session) Touched(ctx context.Context) ([]string, error) {
	return s.store.Touched(ctx, s.id)
}

// Normalize cleans a path for membership comparison. Classification output
// and recorded paths go through the same normalization, so counterpart
// candidates compare by plain string equality.
func Normalize(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// Store persists per-session touched sets. Implementations must keep
// sessions isolated from each other and tolerate concurrent use.
type Store interface {
	// Reset discards all state for the session and starts it fresh.
	Reset(ctx context.Context, sessionID string) error
	// RecordTouched adds a path to the session's touched set.
	RecordTouched(ctx context.Context, sessionID, path string) error
	// HasTouched reports membership in the session's touched set.
	HasTouched(ctx context.Context, sessionID, path string) (bool, error)
	// Touched lists the session's touched paths in insertion order.
	Touched(ctx context.Context, sessionID string) ([]string, error)
}

// MemoryStore is the in-process store. It backs embedded use and tests;
// hook processes use the SQLite store since each hook call is a fresh
// process.
type MemoryStore struct {
	mu      sync.Mutex
	touched map[string][]string
	member  map[string]map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		touched: make(map[string][]string),
		member:  make(map[string]map[string]struct{}),
	}
}

// Reset clears the session's touched set.
func (m *MemoryStore) Reset(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.touched, sessionID)
	delete(m.member, sessionID)
	return nil
}

// RecordTouched adds a path to the session's touched set.
func (m *MemoryStore) RecordTouched(_ context.Context, sessionID, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.member[sessionID]
	if !ok {
		set = make(map[string]struct{})
		m.member[sessionID] = set
	}
	if _, dup := set[path]; dup {
		return nil
	}
	set[path] = struct{}{}
	m.touched[sessionID] = append(m.touched[sessionID], path)
	return nil
}

// HasTouched reports membership in the session's touched set.
func (m *MemoryStore) HasTouched(_ context.Context, sessionID, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.member[sessionID][path]
	return ok, nil
}

// Touched lists the session's touched paths in insertion order.
func (m *MemoryStore) Touched(_ context.Context, sessionID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := m.touched[sessionID]
	out := make([]string, len(paths))
	copy(out, paths)
	return out, nil
}
