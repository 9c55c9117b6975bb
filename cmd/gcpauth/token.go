package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tame-gcp/gcpauth/cache"
	"github.com/tame-gcp/gcpauth/credentials"
	"github.com/tame-gcp/gcpauth/pkg/log"
	"github.com/tame-gcp/gcpauth/provider"
)

func newTokenCommand(logger log.Logger) *cobra.Command {
	var credentialsFile string
	var scopes []string
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Acquire an access token for a service account",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(credentialsFile)
			if err != nil {
				return err
			}
			info, err := credentials.DeserializeServiceAccount(data)
			if err != nil {
				return err
			}
			sa, err := provider.NewServiceAccountProvider(info)
			if err != nil {
				return err
			}

			client, err := newHTTPClient(logger)
			if err != nil {
				return err
			}

			cached := cache.NewCachedTokenProvider(sa)
			logger.Debugf("requesting token for %s, scopes=%v", info.ClientEmail, scopes)
			tok, err := driveToken(client, cached, subject, scopes)
			if err != nil {
				return err
			}

			fmt.Println(tok.AccessToken)
			return nil
		},
	}
	cmd.Flags().StringVar(&credentialsFile, "credentials", "", "path to a service-account JSON key file")
	cmd.Flags().StringArrayVar(&scopes, "scope", nil, "OAuth2 scope (repeatable)")
	cmd.Flags().StringVar(&subject, "subject", "", "user to impersonate via domain-wide delegation")
	cmd.MarkFlagRequired("credentials")
	cmd.MarkFlagRequired("scope")
	return cmd
}
