package provider_test

import (
	"io"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tame-gcp/gcpauth/credentials"
	"github.com/tame-gcp/gcpauth/provider"
)

func testEndUserInfo() credentials.EndUserCredentialsInfo {
	return credentials.EndUserCredentialsInfo{
		ClientID:     "cid.apps.googleusercontent.com",
		ClientSecret: "secret",
		RefreshToken: "1//refresh",
		ClientType:   "authorized_user",
	}
}

func TestEndUserGetTokenBuildsRefreshGrant(t *testing.T) {
	p := provider.NewEndUserProvider(testEndUserInfo())

	result, err := p.GetToken([]string{"ignored-scope"})
	require.NoError(t, err)
	require.False(t, result.IsToken())
	require.Equal(t, "https://oauth2.googleapis.com/token", result.Request.HTTP.URL.String())

	bodyBytes, err := io.ReadAll(result.Request.HTTP.Body)
	require.NoError(t, err)
	form, err := url.ParseQuery(string(bodyBytes))
	require.NoError(t, err)
	require.Equal(t, "refresh_token", form.Get("grant_type"))
	require.Equal(t, "1//refresh", form.Get("refresh_token"))
}

func TestEndUserGetTokenRejectsSubject(t *testing.T) {
	p := provider.NewEndUserProvider(testEndUserInfo())
	_, err := p.GetTokenWithSubject("someone@example.com", nil)
	require.Error(t, err)
}

func TestEndUserIdTokenIsSingleRoundTripSharingTokenResponse(t *testing.T) {
	p := provider.NewEndUserProvider(testEndUserInfo())

	result, err := p.GetIdToken("ignored")
	require.NoError(t, err)
	require.False(t, result.IsIdToken())

	_, err = p.GetIdTokenWithAccessToken("ignored", 200, "application/json", nil)
	require.Error(t, err)

	token := rawJWTWithExp(t, 9999999999)
	body := []byte(`{"access_token":"ya29.X","token_type":"Bearer","expires_in":3600,"id_token":"` + token + `"}`)

	tok, err := p.ParseTokenResponse(0, 200, "application/json", body)
	require.NoError(t, err)
	require.Equal(t, "ya29.X", tok.AccessToken)

	idTok, err := p.ParseIdTokenResponse(0, 200, "application/json", body)
	require.NoError(t, err)
	require.Equal(t, token, idTok.Token)
}
