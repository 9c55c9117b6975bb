// Command gcpauth is a thin bridge around the gcpauth library: it
// performs the I/O the library itself refuses to do, executing the
// *http.Request values the CORE builds and feeding the responses back
// in. It is not part of the CORE and is not meant to be imported.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/tame-gcp/gcpauth/pkg/log"
)

func main() {
	logrusLogger := logrus.New()
	if os.Getenv("GCPAUTH_DEBUG") != "" {
		logrusLogger.SetLevel(logrus.DebugLevel)
	}
	logger := log.NewLogrusLogger(logrusLogger)

	if err := newRootCommand(logger).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
