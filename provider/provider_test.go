package provider_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tame-gcp/gcpauth/provider"
)

func TestProviderDispatchesToMetadataVariant(t *testing.T) {
	p := provider.FromMetadataServer(provider.NewMetadataServerProvider(""))

	result, err := p.GetToken([]string{"scope"})
	require.NoError(t, err)
	require.False(t, result.IsToken())
	require.Equal(t, "GET", result.Request.HTTP.Method)
}

func TestProviderDispatchesToEndUserVariant(t *testing.T) {
	p := provider.FromEndUser(provider.NewEndUserProvider(testEndUserInfo()))

	result, err := p.GetToken(nil)
	require.NoError(t, err)
	require.False(t, result.IsToken())
	require.Equal(t, "POST", result.Request.HTTP.Method)
	require.Equal(t, "https://oauth2.googleapis.com/token", result.Request.HTTP.URL.String())
}

func TestProviderDispatchesToServiceAccountVariant(t *testing.T) {
	info, _ := genServiceAccountInfo(t)
	sa, err := provider.NewServiceAccountProvider(info)
	require.NoError(t, err)
	p := provider.FromServiceAccount(sa)

	result, err := p.GetToken([]string{"scope"})
	require.NoError(t, err)
	require.False(t, result.IsToken())
	require.Equal(t, info.TokenURI, result.Request.HTTP.URL.String())
}

func TestProviderPanicsOnUnsetKind(t *testing.T) {
	p := &provider.Provider{}
	require.Panics(t, func() {
		_, _ = p.GetToken(nil)
	})
}
