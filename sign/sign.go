// Package sign implements the RSA signing primitive the JWT encoder
// builds on: an unencrypted PKCS#8 DER key loaded once, then used to
// produce RSASSA-PKCS1-v1_5 or RSA-PSS signatures over SHA-256/384/512.
//
// A Signer is pure: it holds no mutable state beyond the parsed key, so
// one Signer may be shared and called concurrently from many goroutines
// (grounded in the same parse-then-sign shape the retrieval pack's
// Vertex AI provider uses for its own service-account JWTs).
package sign

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"hash"

	"github.com/tame-gcp/gcpauth/gcperr"
)

// Algorithm identifies a JWS signing algorithm. Only the RSA families are
// implemented; HS*/ES* are named so callers that enumerate algorithms
// compile, but Sign fails fast with gcperr.ErrUnsupportedAlgorithm.
type Algorithm string

const (
	RS256 Algorithm = "RS256"
	RS384 Algorithm = "RS384"
	RS512 Algorithm = "RS512"
	PS256 Algorithm = "PS256"
	PS384 Algorithm = "PS384"
	PS512 Algorithm = "PS512"

	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"
	ES256 Algorithm = "ES256"
	ES384 Algorithm = "ES384"
	ES512 Algorithm = "ES512"
)

type algSpec struct {
	hash crypto.Hash
	pss  bool
}

var algSpecs = map[Algorithm]algSpec{
	RS256: {crypto.SHA256, false},
	RS384: {crypto.SHA384, false},
	RS512: {crypto.SHA512, false},
	PS256: {crypto.SHA256, true},
	PS384: {crypto.SHA384, true},
	PS512: {crypto.SHA512, true},
}

// Signer wraps a parsed RSA private key. The zero value is not usable;
// construct one with NewFromPKCS8.
type Signer struct {
	key *rsa.PrivateKey
	der []byte
}

// NewFromPKCS8 parses an unencrypted PKCS#8 DER-encoded private key.
// Only RSA keys are supported; any other key type is rejected.
func NewFromPKCS8(der []byte) (*Signer, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, &gcperr.Error{Kind: gcperr.KindInvalidRsaKeyRejected, Err: err}
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, gcperr.New(gcperr.KindInvalidRsaKeyRejected)
	}
	cp := make([]byte, len(der))
	copy(cp, der)
	return &Signer{key: rsaKey, der: cp}, nil
}

// KeySizeBytes returns the RSA modulus length in bytes: the fixed length
// of every signature this Signer produces.
func (s *Signer) KeySizeBytes() int {
	return s.key.Size()
}

// Sign signs input with the given algorithm and returns a
// fixed-length (= modulus size) signature.
func (s *Signer) Sign(input []byte, alg Algorithm) ([]byte, error) {
	spec, ok := algSpecs[alg]
	if !ok {
		return nil, gcperr.ErrUnsupportedAlgorithm
	}

	digest, err := digest(spec.hash, input)
	if err != nil {
		return nil, &gcperr.Error{Kind: gcperr.KindInvalidRsaKey, Err: err}
	}

	var sig []byte
	if spec.pss {
		sig, err = rsa.SignPSS(rand.Reader, s.key, spec.hash, digest, &rsa.PSSOptions{
			SaltLength: rsa.PSSSaltLengthEqualsHash,
			Hash:       spec.hash,
		})
	} else {
		sig, err = rsa.SignPKCS1v15(rand.Reader, s.key, spec.hash, digest)
	}
	if err != nil {
		return nil, &gcperr.Error{Kind: gcperr.KindInvalidRsaKey, Err: err}
	}
	return sig, nil
}

// Close best-effort zeroes the copy of the DER bytes this Signer holds.
// Go gives no guarantee this defeats copies already made by the garbage
// collector or by escape analysis; it is a mitigation, not a promise.
func (s *Signer) Close() {
	for i := range s.der {
		s.der[i] = 0
	}
}

func digest(h crypto.Hash, input []byte) ([]byte, error) {
	var hasher hash.Hash
	switch h {
	case crypto.SHA256:
		hasher = sha256.New()
	case crypto.SHA384:
		hasher = sha512.New384()
	case crypto.SHA512:
		hasher = sha512.New()
	default:
		return nil, gcperr.ErrUnsupportedAlgorithm
	}
	hasher.Write(input)
	return hasher.Sum(nil), nil
}
