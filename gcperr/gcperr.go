// Package gcperr defines the error taxonomy shared by every gcpauth
// package: the sans-I/O CORE returns these errors directly; the
// discovery algorithm (the one place the CORE touches a filesystem
// abstraction) wraps underlying causes with github.com/pkg/errors so a
// stack trace survives up to the caller.
package gcperr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind enumerates the semantic error categories a caller may need to
// branch on.
type Kind int

const (
	// KindInvalidKeyFormat means a PEM structure was not recognized.
	KindInvalidKeyFormat Kind = iota
	// KindInvalidRsaKeyRejected means a key was rejected while being parsed.
	KindInvalidRsaKeyRejected
	// KindInvalidRsaKey means a key was loaded but could not be used to sign.
	KindInvalidRsaKey
	// KindBase64Decode means a base64 segment failed to decode.
	KindBase64Decode
	// KindJSON means a JSON document failed to (de)serialize.
	KindJSON
	// KindHTTP means an outgoing request could not be constructed.
	KindHTTP
	// KindHTTPStatus means a non-2xx response arrived without a structured body.
	KindHTTPStatus
	// KindAuth means a non-2xx response carried a structured auth error.
	KindAuth
	// KindPoisoned means the cache's lock was found in a corrupted state.
	KindPoisoned
	// KindIO means a filesystem or environment read failed during discovery.
	KindIO
	// KindInvalidCredentials means a credentials file could not be read or parsed during discovery.
	KindInvalidCredentials
	// KindSystemTime means the system clock reports a time before the Unix epoch.
	KindSystemTime
	// KindInvalidTokenFormat means a JWT lacked three dot-separated segments.
	KindInvalidTokenFormat
	// KindUnsupportedAlgorithm means a signing algorithm is named but not implemented.
	KindUnsupportedAlgorithm
)

func (k Kind) String() string {
	switch k {
	case KindInvalidKeyFormat:
		return "InvalidKeyFormat"
	case KindInvalidRsaKeyRejected:
		return "InvalidRsaKeyRejected"
	case KindInvalidRsaKey:
		return "InvalidRsaKey"
	case KindBase64Decode:
		return "Base64Decode"
	case KindJSON:
		return "Json"
	case KindHTTP:
		return "Http"
	case KindHTTPStatus:
		return "HttpStatus"
	case KindAuth:
		return "Auth"
	case KindPoisoned:
		return "Poisoned"
	case KindIO:
		return "Io"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindSystemTime:
		return "SystemTime"
	case KindInvalidTokenFormat:
		return "InvalidTokenFormat"
	case KindUnsupportedAlgorithm:
		return "UnsupportedAlgorithm"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by every gcpauth package.
type Error struct {
	Kind Kind

	// Status is set only for KindHTTPStatus.
	Status int
	// AuthError and AuthDescription are set only for KindAuth.
	AuthError       string
	AuthDescription string
	// File is set only for KindInvalidCredentials.
	File string

	// Err is the wrapped cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("gcpauth: unexpected http status %d", e.Status)
	case KindAuth:
		if e.AuthDescription != "" {
			return fmt.Sprintf("gcpauth: auth error %q: %s", e.AuthError, e.AuthDescription)
		}
		return fmt.Sprintf("gcpauth: auth error %q", e.AuthError)
	case KindInvalidCredentials:
		if e.Err != nil {
			return fmt.Sprintf("gcpauth: invalid credentials file %q: %v", e.File, e.Err)
		}
		return fmt.Sprintf("gcpauth: invalid credentials file %q", e.File)
	default:
		if e.Err != nil {
			return fmt.Sprintf("gcpauth: %s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("gcpauth: %s", e.Kind)
	}
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports equality by Kind (and, for the variants that carry one, by
// their distinguishing field), so callers can do
// errors.Is(err, gcperr.HTTPStatus(400)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	switch e.Kind {
	case KindHTTPStatus:
		return e.Status == t.Status
	case KindAuth:
		return e.AuthError == t.AuthError
	default:
		return true
	}
}

// New builds a bare Error of the given Kind.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Wrap builds an Error of the given Kind, wrapping cause with
// github.com/pkg/errors so a stack trace is attached at the point of
// the I/O failure.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: errors.WithStack(cause)}
}

// HTTPStatus builds the KindHTTPStatus sentinel for the given status code.
func HTTPStatus(status int) *Error {
	return &Error{Kind: KindHTTPStatus, Status: status}
}

// Auth builds the KindAuth sentinel carrying the server's structured error.
func Auth(errCode, description string) *Error {
	return &Error{Kind: KindAuth, AuthError: errCode, AuthDescription: description}
}

// InvalidCredentials builds the KindInvalidCredentials sentinel for a
// discovery-time file read/parse failure.
func InvalidCredentials(file string, cause error) *Error {
	return &Error{Kind: KindInvalidCredentials, File: file, Err: errors.WithStack(cause)}
}

// Unsupported is the Auth error used for flow combinations this
// library rejects (e.g. a subject on an end-user/metadata provider).
func Unsupported(description string) *Error {
	return Auth("Unsupported", description)
}

var (
	// ErrUnsupportedAlgorithm is returned by sign.Signer for algorithms that
	// are named in the enumeration but not implemented (HS*, ES*).
	ErrUnsupportedAlgorithm = New(KindUnsupportedAlgorithm)
	// ErrPoisoned is returned when a cache's lock is found corrupted by a
	// panicking prior holder.
	ErrPoisoned = New(KindPoisoned)
	// ErrInvalidTokenFormat is returned when a JWT lacks three
	// dot-separated segments, or a segment fails padded/unpadded base64 rules.
	ErrInvalidTokenFormat = New(KindInvalidTokenFormat)
)
