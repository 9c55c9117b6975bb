// Package log provides a logger interface for logger libraries so that the
// gcpauth CORE never depends on one directly. Nothing under the CORE
// import paths (sign, jwt, credentials, provider, cache, gcperr) uses this
// package; it is used by cmd/gcpauth and pkg/httpclient, the bridging
// layer that performs the I/O the CORE refuses to do.
package log

// Logger serves as an adapter interface for logger libraries
// so that the CORE does not depend on any of them directly.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
