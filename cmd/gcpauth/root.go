package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/tame-gcp/gcpauth/pkg/httpclient"
	"github.com/tame-gcp/gcpauth/pkg/log"
)

var (
	flagRootCAs            []string
	flagInsecureSkipVerify bool
)

func newRootCommand(logger log.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "gcpauth",
		Short:         "Sans-I/O GCP OAuth2 token acquisition, driven over real HTTP",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringSliceVar(&flagRootCAs, "root-ca", nil, "additional PEM root CA, file path, or base64 PEM (repeatable)")
	root.PersistentFlags().BoolVar(&flagInsecureSkipVerify, "insecure-skip-verify", false, "disable TLS certificate verification")

	root.AddCommand(newTokenCommand(logger))
	root.AddCommand(newIdTokenCommand(logger))
	root.AddCommand(newDefaultCredsCommand(logger))
	return root
}

func newHTTPClient(logger log.Logger) (*http.Client, error) {
	return httpclient.NewHTTPClient(flagRootCAs, flagInsecureSkipVerify, logger)
}
