package session

import (
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Store keeps sessions in memory and expires idle ones. Nothing is written
// to disk.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration

	mu   sync.RWMutex
	opts Options
}

// NewStore creates a store whose sessions are created with opts.
func NewStore(ttl time.Duration, opts Options) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cleanup := ttl / 4
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &Store{
		cache: cache.New(ttl, cleanup),
		opts:  opts,
		ttl:   ttl,
	}
}

// SetOptions changes the options of sessions created from now on.
// Existing sessions keep theirs.
func (st *Store) SetOptions(opts Options) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.opts = opts
}

// Create starts and stores a new session.
func (st *Store) Create() *Session {
	st.mu.RLock()
	opts := st.opts
	st.mu.RUnlock()

	s := New(opts)
	st.cache.Set(s.ID, s, cache.DefaultExpiration)
	return s
}

// Get returns a session and extends its lifetime.
func (st *Store) Get(id string) (*Session, error) {
	x, found := st.cache.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	s := x.(*Session)
	st.cache.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

// Delete drops a session.
func (st *Store) Delete(id string) error {
	if _, found := st.cache.Get(id); !found {
		return ErrNotFound
	}
	st.cache.Delete(id)
	return nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int { return st.cache.ItemCount() }

// TTL returns the idle expiry.
func (st *Store) TTL() time.Duration { return st.ttl }
