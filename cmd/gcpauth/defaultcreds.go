package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tame-gcp/gcpauth/cache"
	"github.com/tame-gcp/gcpauth/gcperr"
	"github.com/tame-gcp/gcpauth/pkg/log"
	"github.com/tame-gcp/gcpauth/provider"
)

func newDefaultCredsCommand(logger log.Logger) *cobra.Command {
	var scopes []string

	cmd := &cobra.Command{
		Use:   "default-creds",
		Short: "Run Application Default Credentials discovery and acquire a token",
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := provider.DiscoverDefaultCredentials(provider.OSEnvironment{})
			if err != nil {
				return err
			}
			if found == nil {
				return gcperr.New(gcperr.KindInvalidCredentials)
			}
			logger.Debugf("discovered credential kind=%d", found.Kind)

			client, err := newHTTPClient(logger)
			if err != nil {
				return err
			}

			cached := cache.NewCachedTokenProvider(found)
			tok, err := driveToken(client, cached, "", scopes)
			if err != nil {
				return err
			}

			fmt.Println(tok.AccessToken)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&scopes, "scope", nil, "OAuth2 scope (repeatable)")
	return cmd
}
