// Package cache implements the concurrent, expiry-aware token cache
// (TokenCache) and the decorator (CachedTokenProvider) that sits in
// front of any provider implementing the token/ID-token contracts.
package cache

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tame-gcp/gcpauth/gcperr"
	"github.com/tame-gcp/gcpauth/protocol"
)

type entry[T protocol.CacheableToken] struct {
	hash  uint64
	token T
}

// TokenCache is an ordered-by-hash slice of (hash, token) pairs guarded
// by a single sync.RWMutex, the one concurrency primitive this module
// uses.
//
// Go's sync.RWMutex has no notion of lock poisoning; this type emulates
// it: a panic raised inside Insert while the write lock is held is
// recovered, recorded, and surfaced as gcperr.ErrPoisoned to that call
// and every Get or Insert thereafter. A panic raised by the hasExpired
// function passed to Get is not recovered.
type TokenCache[T protocol.CacheableToken] struct {
	mu       sync.RWMutex
	entries  []entry[T]
	poisoned atomic.Bool
}

// New returns an empty TokenCache.
func New[T protocol.CacheableToken]() *TokenCache[T] {
	return &TokenCache[T]{}
}

// Lookup is the result of Get: exactly one of Token, Reason is meaningful.
type Lookup[T protocol.CacheableToken] struct {
	Token  *T
	Reason protocol.RequestReason
	Found  bool // true only when Token != nil
}

// Get binary-searches for hash. On a hit with a non-expired token, it
// returns a cloned Token (clone-on-read isolates the caller from
// concurrent overwrites). On an expired hit, it reports
// ReasonExpired. On a miss, ReasonParametersChanged.
func (c *TokenCache[T]) Get(hash uint64, hasExpired func(T) bool) (Lookup[T], error) {
	if c.poisoned.Load() {
		return Lookup[T]{}, gcperr.ErrPoisoned
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.search(hash)
	if !ok {
		return Lookup[T]{Reason: protocol.ReasonParametersChanged}, nil
	}
	tok := c.entries[i].token
	if hasExpired(tok) {
		return Lookup[T]{Reason: protocol.ReasonExpired}, nil
	}
	clone := tok
	return Lookup[T]{Token: &clone, Found: true}, nil
}

// Insert overwrites the entry for hash if one exists, or inserts a new
// one at the position that preserves ascending-by-hash ordering.
// Idempotent: repeated inserts of the identical (token, hash) pair
// leave the cache in an identical state.
func (c *TokenCache[T]) Insert(token T, hash uint64) (err error) {
	if c.poisoned.Load() {
		return gcperr.ErrPoisoned
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			c.poisoned.Store(true)
			err = gcperr.ErrPoisoned
		}
	}()

	i, ok := c.search(hash)
	if ok {
		c.entries[i].token = token
		return nil
	}
	c.entries = append(c.entries, entry[T]{})
	copy(c.entries[i+1:], c.entries[i:])
	c.entries[i] = entry[T]{hash: hash, token: token}
	return nil
}

// search returns the index of hash if present (ok=true), or the
// insertion index that keeps entries sorted ascending by hash (ok=false).
func (c *TokenCache[T]) search(hash uint64) (int, bool) {
	i := sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].hash >= hash
	})
	if i < len(c.entries) && c.entries[i].hash == hash {
		return i, true
	}
	return i, false
}

// Len reports the number of entries currently cached, for tests.
func (c *TokenCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
