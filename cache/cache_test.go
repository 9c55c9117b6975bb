package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tame-gcp/gcpauth/cache"
	"github.com/tame-gcp/gcpauth/protocol"
)

func freshToken(access string) protocol.Token {
	return protocol.Token{
		AccessToken:        access,
		ExpiresInTimestamp: time.Now().UTC().Add(time.Hour),
	}
}

func expiredToken(access string) protocol.Token {
	return protocol.Token{
		AccessToken:        access,
		ExpiresInTimestamp: time.Now().UTC().Add(-time.Hour),
	}
}

func TestCacheMissReturnsParametersChanged(t *testing.T) {
	c := cache.New[protocol.Token]()
	lookup, err := c.Get(1, protocol.Token.HasExpired)
	require.NoError(t, err)
	require.False(t, lookup.Found)
	require.Equal(t, protocol.ReasonParametersChanged, lookup.Reason)
}

func TestCacheHitReturnsClonedToken(t *testing.T) {
	c := cache.New[protocol.Token]()
	tok := freshToken("ya29.X")
	require.NoError(t, c.Insert(tok, 42))

	lookup, err := c.Get(42, protocol.Token.HasExpired)
	require.NoError(t, err)
	require.True(t, lookup.Found)
	require.Equal(t, "ya29.X", lookup.Token.AccessToken)

	// Mutating the returned clone must not affect the cache.
	lookup.Token.AccessToken = "mutated"
	lookup2, err := c.Get(42, protocol.Token.HasExpired)
	require.NoError(t, err)
	require.Equal(t, "ya29.X", lookup2.Token.AccessToken)
}

func TestCacheExpiredHitReturnsExpiredReason(t *testing.T) {
	c := cache.New[protocol.Token]()
	require.NoError(t, c.Insert(expiredToken("ya29.old"), 7))

	lookup, err := c.Get(7, protocol.Token.HasExpired)
	require.NoError(t, err)
	require.False(t, lookup.Found)
	require.Equal(t, protocol.ReasonExpired, lookup.Reason)
}

func TestInsertPreservesAscendingOrder(t *testing.T) {
	c := cache.New[protocol.Token]()
	hashes := []uint64{50, 10, 30, 5, 100}
	for _, h := range hashes {
		require.NoError(t, c.Insert(freshToken("t"), h))
	}
	require.Equal(t, len(hashes), c.Len())

	for _, h := range hashes {
		lookup, err := c.Get(h, protocol.Token.HasExpired)
		require.NoError(t, err)
		require.True(t, lookup.Found)
	}
}

func TestInsertIdempotent(t *testing.T) {
	c := cache.New[protocol.Token]()
	tok := freshToken("same")
	require.NoError(t, c.Insert(tok, 1))
	require.NoError(t, c.Insert(tok, 1))
	require.Equal(t, 1, c.Len())
}

func TestInsertOverwritesExistingHash(t *testing.T) {
	c := cache.New[protocol.Token]()
	require.NoError(t, c.Insert(freshToken("first"), 1))
	require.NoError(t, c.Insert(freshToken("second"), 1))
	require.Equal(t, 1, c.Len())

	lookup, err := c.Get(1, protocol.Token.HasExpired)
	require.NoError(t, err)
	require.Equal(t, "second", lookup.Token.AccessToken)
}

func TestConcurrentGetInsert(t *testing.T) {
	c := cache.New[protocol.Token]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		h := uint64(i % 10)
		go func() {
			defer wg.Done()
			_ = c.Insert(freshToken("x"), h)
		}()
		go func() {
			defer wg.Done()
			_, _ = c.Get(h, protocol.Token.HasExpired)
		}()
	}
	wg.Wait()
}
