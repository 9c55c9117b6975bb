package cache

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// HashStr returns the 64-bit xxHash of s's UTF-8 bytes. Fingerprints
// are opaque and MUST NOT be treated as cryptographic.
func HashStr(s string) uint64 {
	return xxhash.Sum64String(s)
}

// HashScopes returns the xxHash of scopes joined with "|". Scope order
// is significant: two scope slices with the same elements in a
// different order hash differently, and the cache deliberately does
// not sort before hashing.
func HashScopes(scopes []string) uint64 {
	return HashStr(strings.Join(scopes, "|"))
}
