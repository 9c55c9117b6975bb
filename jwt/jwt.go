// Package jwt builds the compact JWS serialization used as the
// service-account assertion: base64url(header) "." base64url(claims) "."
// base64url(signature), with URL-safe no-pad base64 on every segment,
// the one dialect this module uses for JWT segments (the PEM body in
// package credentials uses the other, standard, dialect; see its doc
// comment).
package jwt

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/tame-gcp/gcpauth/gcperr"
	"github.com/tame-gcp/gcpauth/sign"
)

// Header is the JOSE header. Only Alg and Typ are ever set by this
// module's own callers; the rest exist so callers embedding a kid/x5t
// etc. can still round-trip them, and are omitted from the marshaled
// JSON when empty.
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ,omitempty"`
	Cty string `json:"cty,omitempty"`
	Jku string `json:"jku,omitempty"`
	Kid string `json:"kid,omitempty"`
	X5u string `json:"x5u,omitempty"`
	X5t string `json:"x5t,omitempty"`
}

// Claims is the service-account assertion body (spec §6).
type Claims struct {
	Iss   string `json:"iss"`
	Scope string `json:"scope,omitempty"`
	Aud   string `json:"aud"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
	Sub   string `json:"sub,omitempty"`
}

// Encode builds the three-part compact serialization, signing
// base64url(header)+"."+base64url(claims) with signer under the
// algorithm named by header.Alg.
func Encode(header Header, claims Claims, signer *sign.Signer) (string, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", &gcperr.Error{Kind: gcperr.KindJSON, Err: err}
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", &gcperr.Error{Kind: gcperr.KindJSON, Err: err}
	}

	signingInput := encodeSegment(headerJSON) + "." + encodeSegment(claimsJSON)

	sig, err := signer.Sign([]byte(signingInput), sign.Algorithm(header.Alg))
	if err != nil {
		return "", err
	}

	return signingInput + "." + encodeSegment(sig), nil
}

// Segments splits a compact JWT into its three raw (still base64url
// encoded) parts. It returns gcperr.ErrInvalidTokenFormat unless there
// are exactly three dot-separated, non-empty segments.
func Segments(token string) ([3]string, error) {
	var out [3]string
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return out, gcperr.ErrInvalidTokenFormat
	}
	for i, p := range parts {
		if p == "" {
			return out, gcperr.ErrInvalidTokenFormat
		}
		out[i] = p
	}
	return out, nil
}

// DecodeSegment decodes one compact-serialization segment. Only
// URL-safe-no-pad input is accepted; padded input is rejected with
// gcperr.ErrInvalidTokenFormat rather than silently tolerated.
func DecodeSegment(segment string) ([]byte, error) {
	if strings.ContainsRune(segment, '=') {
		return nil, gcperr.ErrInvalidTokenFormat
	}
	b, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil, &gcperr.Error{Kind: gcperr.KindInvalidTokenFormat, Err: err}
	}
	return b, nil
}

// ClaimsExpiration decodes the claims segment of a compact JWT and
// returns its "exp" field. Used by providers to build an IdToken's
// expiration from a server-issued JWT.
func ClaimsExpiration(token string) (int64, error) {
	segments, err := Segments(token)
	if err != nil {
		return 0, err
	}
	payload, err := DecodeSegment(segments[1])
	if err != nil {
		return 0, err
	}
	var body struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return 0, &gcperr.Error{Kind: gcperr.KindJSON, Err: err}
	}
	return body.Exp, nil
}

func encodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
