// Package protocol defines the public types that flow between a caller
// and a gcpauth provider: the two concrete token shapes, and the two
// sum types (TokenOrRequest / IdTokenOrRequest) a provider's get-token
// methods return in place of doing I/O themselves.
package protocol

import (
	"net/http"
	"time"
)

// RequestReason is informational: it tells the caller why a provider
// produced a Request instead of a cached Token.
type RequestReason int

const (
	// ReasonParametersChanged means no cache entry exists yet for this
	// hash, or the hash of the wrapping CachedTokenProvider does not
	// match any cached entry.
	ReasonParametersChanged RequestReason = iota
	// ReasonExpired means a cache entry exists for this hash but it has expired.
	ReasonExpired
)

// Token is a bearer access token, as returned by every flow's token
// endpoint.
type Token struct {
	AccessToken        string
	TokenType          string
	RefreshToken       string
	ExpiresIn          int64
	ExpiresInTimestamp time.Time // absolute wall-clock, UTC
}

// HasExpired reports whether this token must no longer be served from
// cache. No time-skew grace is applied at read: the 5-second slack
// lives only in JWT construction (see package jwt / provider).
func (t Token) HasExpired() bool {
	return t.AccessToken == "" || !t.ExpiresInTimestamp.After(time.Now().UTC())
}

// IdToken is an OIDC ID token: the compact JWT plus its decoded
// expiration, so callers don't need to re-parse the JWT to check
// freshness.
type IdToken struct {
	Token      string
	Expiration time.Time
}

// HasExpired reports whether this ID token must no longer be served
// from cache.
func (t IdToken) HasExpired() bool {
	return t.Token == "" || !t.Expiration.After(time.Now().UTC())
}

// CacheableToken is satisfied by both Token and IdToken; it is the
// type parameter constraint for cache.TokenCache.
type CacheableToken interface {
	Token | IdToken
}

// Request is a fully-formed outgoing HTTP request a caller must
// execute, paired with the hash the caller must present back to
// ParseTokenResponse/ParseIdTokenResponse so the result lands in the
// right cache slot.
type Request struct {
	HTTP      *http.Request
	Reason    RequestReason
	ScopeHash uint64
}

// TokenOrRequest is returned by GetToken/GetTokenWithSubject: either an
// already-fresh Token, or a Request the caller must execute.
type TokenOrRequest struct {
	Token   *Token
	Request *Request
}

// IsToken reports whether this result already carries a usable token.
func (t TokenOrRequest) IsToken() bool { return t.Token != nil }

// FromToken wraps an already-fresh Token.
func FromToken(tok Token) TokenOrRequest {
	return TokenOrRequest{Token: &tok}
}

// FromRequest wraps an outgoing Request.
func FromRequest(req Request) TokenOrRequest {
	return TokenOrRequest{Request: &req}
}

// IdRequestKind distinguishes the two possible outgoing requests in the
// service-account ID-token flow; metadata/end-user providers only ever
// produce KindIdTokenRequest (a single round trip).
type IdRequestKind int

const (
	KindAccessTokenRequest IdRequestKind = iota
	KindIdTokenRequest
)

// IdRequest is an outgoing HTTP request in the ID-token flow, tagged
// with which step it represents.
type IdRequest struct {
	HTTP         *http.Request
	Kind         IdRequestKind
	Reason       RequestReason
	AudienceHash uint64
}

// IdTokenOrRequest is returned by GetIdToken/GetIdTokenWithAccessToken:
// either a finished IdToken, or the next Request in the flow.
type IdTokenOrRequest struct {
	IdToken *IdToken
	Request *IdRequest
}

// IsIdToken reports whether this result already carries a usable ID token.
func (t IdTokenOrRequest) IsIdToken() bool { return t.IdToken != nil }

// FromIdToken wraps an already-finished IdToken.
func FromIdToken(tok IdToken) IdTokenOrRequest {
	return IdTokenOrRequest{IdToken: &tok}
}

// FromIdRequest wraps an outgoing IdRequest.
func FromIdRequest(req IdRequest) IdTokenOrRequest {
	return IdTokenOrRequest{Request: &req}
}

// TokenProvider is the contract every access-token flow implements:
// stateless with respect to the caller, producing a Request for the
// caller to execute rather than performing any I/O itself.
type TokenProvider interface {
	// GetToken is GetTokenWithSubject with an empty subject.
	GetToken(scopes []string) (TokenOrRequest, error)
	GetTokenWithSubject(subject string, scopes []string) (TokenOrRequest, error)
	// ParseTokenResponse classifies and decodes the HTTP response the
	// caller got back after executing the Request tagged with scopeHash.
	ParseTokenResponse(scopeHash uint64, status int, contentType string, body []byte) (Token, error)
}

// IdTokenProvider is the contract every ID-token flow implements. For
// service accounts this is a two-step exchange; for metadata/end-user
// flows GetIdToken alone produces the final Request.
type IdTokenProvider interface {
	GetIdToken(audience string) (IdTokenOrRequest, error)
	// GetIdTokenWithAccessToken consumes the access-token response from
	// the Request GetIdToken returned (service-account flow only) and
	// produces the next Request in the exchange.
	GetIdTokenWithAccessToken(audience string, status int, contentType string, body []byte) (IdTokenOrRequest, error)
	// ParseIdTokenResponse classifies and decodes the HTTP response the
	// caller got back after executing the IdRequest tagged with
	// audienceHash (mirrors ParseTokenResponse's scopeHash parameter).
	ParseIdTokenResponse(audienceHash uint64, status int, contentType string, body []byte) (IdToken, error)
}

// Provider is satisfied by anything implementing both contracts: the
// three per-flow providers, the unified sum type, and
// cache.CachedTokenProvider itself.
type Provider interface {
	TokenProvider
	IdTokenProvider
}
