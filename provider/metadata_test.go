package provider_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tame-gcp/gcpauth/provider"
)

func TestMetadataServerGetTokenSetsFlavorHeader(t *testing.T) {
	p := provider.NewMetadataServerProvider("")

	result, err := p.GetToken([]string{"https://www.googleapis.com/auth/cloud-platform"})
	require.NoError(t, err)
	require.False(t, result.IsToken())
	require.Equal(t, "GET", result.Request.HTTP.Method)
	require.Equal(t, "Google", result.Request.HTTP.Header.Get("Metadata-Flavor"))
	require.Contains(t, result.Request.HTTP.URL.Path, "/instance/service-accounts/default/token")
	require.Equal(t, "https://www.googleapis.com/auth/cloud-platform", result.Request.HTTP.URL.Query().Get("scopes"))
}

func TestMetadataServerGetTokenJoinsMultipleScopesWithLiteralComma(t *testing.T) {
	p := provider.NewMetadataServerProvider("")

	result, err := p.GetToken([]string{"scope1", "scope2"})
	require.NoError(t, err)
	require.False(t, result.IsToken())
	// url.Values.Encode() would percent-encode the comma as %2C; the
	// metadata server requires the literal unencoded separator.
	require.Equal(t, "scopes=scope1,scope2", result.Request.HTTP.URL.RawQuery)
}

func TestMetadataServerGetTokenRejectsSubject(t *testing.T) {
	p := provider.NewMetadataServerProvider("")
	_, err := p.GetTokenWithSubject("someone@example.com", nil)
	require.Error(t, err)
}

func TestMetadataServerGetIdTokenIsSingleRoundTrip(t *testing.T) {
	p := provider.NewMetadataServerProvider("")

	result, err := p.GetIdToken("https://example.com/aud")
	require.NoError(t, err)
	require.False(t, result.IsIdToken())
	require.Equal(t, "https://example.com/aud", result.Request.HTTP.URL.Query().Get("audience"))

	_, err = p.GetIdTokenWithAccessToken("https://example.com/aud", 200, "application/json", nil)
	require.Error(t, err)
}

func TestMetadataServerParseIdTokenResponseTreatsBodyAsRawJWT(t *testing.T) {
	p := provider.NewMetadataServerProvider("")
	token := rawJWTWithExp(t, 9999999999)

	idTok, err := p.ParseIdTokenResponse(0, 200, "text/plain", []byte(token))
	require.NoError(t, err)
	require.Equal(t, token, idTok.Token)
}
