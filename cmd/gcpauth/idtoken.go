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

func newIdTokenCommand(logger log.Logger) *cobra.Command {
	var credentialsFile string
	var audience string

	cmd := &cobra.Command{
		Use:   "id-token",
		Short: "Acquire an OIDC identity token for a service account",
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
			logger.Debugf("requesting id-token for %s, audience=%s", info.ClientEmail, audience)
			idTok, err := driveIdToken(client, cached, audience)
			if err != nil {
				return err
			}

			fmt.Println(idTok.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&credentialsFile, "credentials", "", "path to a service-account JSON key file")
	cmd.Flags().StringVar(&audience, "audience", "", "intended audience of the identity token")
	cmd.MarkFlagRequired("credentials")
	cmd.MarkFlagRequired("audience")
	return cmd
}
