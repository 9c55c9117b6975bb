package provider

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/tame-gcp/gcpauth/credentials"
	"github.com/tame-gcp/gcpauth/gcperr"
	"github.com/tame-gcp/gcpauth/jwt"
	"github.com/tame-gcp/gcpauth/protocol"
)

const googleOAuthTokenURL = "https://oauth2.googleapis.com/token"

// EndUserProvider builds and parses the refresh-token grant used by
// gcloud Application Default Credentials.
type EndUserProvider struct {
	info credentials.EndUserCredentialsInfo
}

var (
	_ protocol.TokenProvider   = (*EndUserProvider)(nil)
	_ protocol.IdTokenProvider = (*EndUserProvider)(nil)
)

// NewEndUserProvider constructs a provider from deserialized ADC
// refresh credentials. Unlike the service-account flow there is no
// key material to parse, so construction cannot fail.
func NewEndUserProvider(info credentials.EndUserCredentialsInfo) *EndUserProvider {
	return &EndUserProvider{info: info}
}

// GetToken is GetTokenWithSubject with an empty subject.
func (p *EndUserProvider) GetToken(scopes []string) (protocol.TokenOrRequest, error) {
	return p.GetTokenWithSubject("", scopes)
}

// GetTokenWithSubject builds the refresh-token grant POST. Subject is
// unsupported (ADC has no notion of domain-wide delegation); scopes
// are accepted but ignored, since ADC scopes are fixed at the original
// `gcloud auth login` authorization time.
func (p *EndUserProvider) GetTokenWithSubject(subject string, scopes []string) (protocol.TokenOrRequest, error) {
	if subject != "" {
		return protocol.TokenOrRequest{}, gcperr.Unsupported("end user credentials do not support jwt subjects")
	}

	form := url.Values{
		"client_id":     {p.info.ClientID},
		"client_secret": {p.info.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {p.info.RefreshToken},
	}
	req, err := newFormRequest(googleOAuthTokenURL, form)
	if err != nil {
		return protocol.TokenOrRequest{}, err
	}

	return protocol.FromRequest(protocol.Request{
		HTTP:      req,
		Reason:    protocol.ReasonParametersChanged,
		ScopeHash: 0,
	}), nil
}

type endUserTokenResponseBody struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	IdToken     string `json:"id_token"`
}

// ParseTokenResponse classifies non-2xx responses and decodes 2xx ones.
func (p *EndUserProvider) ParseTokenResponse(scopeHash uint64, status int, contentType string, body []byte) (protocol.Token, error) {
	if !gcperr.IsSuccess(status) {
		return protocol.Token{}, gcperr.ClassifyResponse(status, contentType, body)
	}
	var resp endUserTokenResponseBody
	if err := json.Unmarshal(body, &resp); err != nil {
		return protocol.Token{}, &gcperr.Error{Kind: gcperr.KindJSON, Err: err}
	}
	now := time.Now().UTC()
	return protocol.Token{
		AccessToken:        resp.AccessToken,
		TokenType:          resp.TokenType,
		ExpiresIn:          resp.ExpiresIn,
		ExpiresInTimestamp: now.Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}

// GetIdToken reuses the same refresh-token grant request as GetToken:
// the oauth2.googleapis.com/token response carries both access_token
// and id_token in one body, so this is a single round trip.
func (p *EndUserProvider) GetIdToken(audience string) (protocol.IdTokenOrRequest, error) {
	tokenResult, err := p.GetTokenWithSubject("", nil)
	if err != nil {
		return protocol.IdTokenOrRequest{}, err
	}
	return protocol.FromIdRequest(protocol.IdRequest{
		HTTP:         tokenResult.Request.HTTP,
		Kind:         protocol.KindIdTokenRequest,
		AudienceHash: 0,
	}), nil
}

// GetIdTokenWithAccessToken always fails: the refresh-token grant is a
// single round trip and never reaches this step.
func (p *EndUserProvider) GetIdTokenWithAccessToken(audience string, status int, contentType string, body []byte) (protocol.IdTokenOrRequest, error) {
	return protocol.IdTokenOrRequest{}, gcperr.Unsupported("end user credentials do not use a two-step id-token exchange")
}

// ParseIdTokenResponse reads the same JSON body ParseTokenResponse
// does, taking only the id_token field.
func (p *EndUserProvider) ParseIdTokenResponse(audienceHash uint64, status int, contentType string, body []byte) (protocol.IdToken, error) {
	if !gcperr.IsSuccess(status) {
		return protocol.IdToken{}, gcperr.ClassifyResponse(status, contentType, body)
	}
	var resp endUserTokenResponseBody
	if err := json.Unmarshal(body, &resp); err != nil {
		return protocol.IdToken{}, &gcperr.Error{Kind: gcperr.KindJSON, Err: err}
	}
	exp, err := jwt.ClaimsExpiration(resp.IdToken)
	if err != nil {
		return protocol.IdToken{}, err
	}
	return protocol.IdToken{Token: resp.IdToken, Expiration: time.Unix(exp, 0).UTC()}, nil
}
