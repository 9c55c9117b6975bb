package cache

import (
	"github.com/tame-gcp/gcpauth/protocol"
)

// CachedTokenProvider wraps any protocol.Provider, inserting an
// access-token cache (keyed by scope hash) and an ID-token cache
// (keyed by audience hash) in front of it.
//
// This decorator is the sole source of a non-zero ScopeHash/AudienceHash:
// the wrapped provider always builds its Request/IdRequest with the
// sentinel hash 0, and every value this type returns has that field
// overwritten with the hash it computed.
type CachedTokenProvider struct {
	inner protocol.Provider

	tokens   *TokenCache[protocol.Token]
	idTokens *TokenCache[protocol.IdToken]
}

// NewCachedTokenProvider wraps inner with fresh, empty caches.
func NewCachedTokenProvider(inner protocol.Provider) *CachedTokenProvider {
	return &CachedTokenProvider{
		inner:    inner,
		tokens:   New[protocol.Token](),
		idTokens: New[protocol.IdToken](),
	}
}

func tokenExpired(t protocol.Token) bool { return t.HasExpired() }
func idTokenExpired(t protocol.IdToken) bool { return t.HasExpired() }

// GetToken is GetTokenWithSubject with an empty subject.
func (c *CachedTokenProvider) GetToken(scopes []string) (protocol.TokenOrRequest, error) {
	return c.GetTokenWithSubject("", scopes)
}

// GetTokenWithSubject consults the access-token cache before falling
// through to the wrapped provider.
func (c *CachedTokenProvider) GetTokenWithSubject(subject string, scopes []string) (protocol.TokenOrRequest, error) {
	h := HashScopes(scopes)

	lookup, err := c.tokens.Get(h, tokenExpired)
	if err != nil {
		return protocol.TokenOrRequest{}, err
	}
	if lookup.Found {
		return protocol.FromToken(*lookup.Token), nil
	}

	result, err := c.inner.GetTokenWithSubject(subject, scopes)
	if err != nil {
		return protocol.TokenOrRequest{}, err
	}
	if result.IsToken() {
		if err := c.tokens.Insert(*result.Token, h); err != nil {
			return protocol.TokenOrRequest{}, err
		}
		return result, nil
	}

	req := *result.Request
	req.ScopeHash = h
	req.Reason = lookup.Reason
	return protocol.FromRequest(req), nil
}

// ParseTokenResponse delegates to the wrapped provider and, on
// success, inserts the resulting Token into the access-token cache
// under hash.
func (c *CachedTokenProvider) ParseTokenResponse(hash uint64, status int, contentType string, body []byte) (protocol.Token, error) {
	tok, err := c.inner.ParseTokenResponse(hash, status, contentType, body)
	if err != nil {
		return protocol.Token{}, err
	}
	if err := c.tokens.Insert(tok, hash); err != nil {
		return protocol.Token{}, err
	}
	return tok, nil
}

// GetIdToken consults the ID-token cache before falling through to the
// wrapped provider. All three possible inner outcomes (AccessTokenRequest,
// IdTokenRequest, IdToken) are preserved, re-labeled with AudienceHash.
func (c *CachedTokenProvider) GetIdToken(audience string) (protocol.IdTokenOrRequest, error) {
	h := HashStr(audience)

	lookup, err := c.idTokens.Get(h, idTokenExpired)
	if err != nil {
		return protocol.IdTokenOrRequest{}, err
	}
	if lookup.Found {
		return protocol.FromIdToken(*lookup.Token), nil
	}

	result, err := c.inner.GetIdToken(audience)
	if err != nil {
		return protocol.IdTokenOrRequest{}, err
	}
	if result.IsIdToken() {
		if err := c.idTokens.Insert(*result.IdToken, h); err != nil {
			return protocol.IdTokenOrRequest{}, err
		}
		return result, nil
	}

	req := *result.Request
	req.AudienceHash = h
	req.Reason = lookup.Reason
	return protocol.FromIdRequest(req), nil
}

// GetIdTokenWithAccessToken delegates to the wrapped provider and
// re-labels the result with AudienceHash, exactly like GetIdToken: the
// wrapped provider always emits the sentinel hash 0, and this is the
// second of the two requests ParseIdTokenResponse's eventual cache
// insert must land under, so the final IdRequest needs the real hash
// just as much as the first one did.
func (c *CachedTokenProvider) GetIdTokenWithAccessToken(audience string, status int, contentType string, body []byte) (protocol.IdTokenOrRequest, error) {
	h := HashStr(audience)

	result, err := c.inner.GetIdTokenWithAccessToken(audience, status, contentType, body)
	if err != nil {
		return protocol.IdTokenOrRequest{}, err
	}
	if result.IsIdToken() {
		if err := c.idTokens.Insert(*result.IdToken, h); err != nil {
			return protocol.IdTokenOrRequest{}, err
		}
		return result, nil
	}

	req := *result.Request
	req.AudienceHash = h
	return protocol.FromIdRequest(req), nil
}

// ParseIdTokenResponse delegates to the wrapped provider and, on
// success, inserts the resulting IdToken into the ID-token cache under
// audienceHash.
func (c *CachedTokenProvider) ParseIdTokenResponse(audienceHash uint64, status int, contentType string, body []byte) (protocol.IdToken, error) {
	tok, err := c.inner.ParseIdTokenResponse(audienceHash, status, contentType, body)
	if err != nil {
		return protocol.IdToken{}, err
	}
	if err := c.idTokens.Insert(tok, audienceHash); err != nil {
		return protocol.IdToken{}, err
	}
	return tok, nil
}
