// Package session is the ephemeral per-device storage port: the
// durable-enough key-value space holding the module snapshot, the timer
// deadline and the last-viewed review question so a page reload mid-module
// resumes instead of resetting. Nothing here is server-authoritative; it is
// cleared only after a confirmed successful submit.
package session

import (
	"fmt"
	"sync"
	"time"
)

// Store is the small port the orchestrator talks to, so it is testable
// without a real browser-storage backend.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, val []byte)
	Remove(key string)
}

// Key builds the namespaced key for one field of one module attempt.
// Fields in use: "snapshot", "deadline", "review_at".
func Key(userID, testID string, module int, field string) string {
	return fmt.Sprintf("%s|%s|m%d|%s", userID, testID, module, field)
}

type entry struct {
	val     []byte
	expires time.Time
}

// MemoryStore is the in-process implementation. TTL guards against
// abandoned modules accumulating forever; zero TTL means no expiry.
type MemoryStore struct {
	mu  sync.RWMutex
	m   map[string]entry
	ttl time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{m: map[string]entry{}, ttl: ttl}
}

func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		s.Remove(key)
		return nil, false
	}
	return e.val, true
}

func (s *MemoryStore) Set(key string, val []byte) {
	e := entry{val: val}
	if s.ttl > 0 {
		e.expires = time.Now().Add(s.ttl)
	}
	s.mu.Lock()
	s.m[key] = e
	s.mu.Unlock()
}

func (s *MemoryStore) Remove(key string) {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}
