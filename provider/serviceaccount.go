// Package provider implements the three concrete token flows
// (service account, metadata server, end user), the unified Provider
// sum type that dispatches between them, and the Default Credentials
// discovery algorithm.
package provider

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	iamcredentials "google.golang.org/api/iamcredentials/v1"

	"github.com/tame-gcp/gcpauth/credentials"
	"github.com/tame-gcp/gcpauth/gcperr"
	"github.com/tame-gcp/gcpauth/jwt"
	"github.com/tame-gcp/gcpauth/protocol"
	"github.com/tame-gcp/gcpauth/sign"
)

const (
	// assertionLifetime is the JWT's own exp-iat window; 5s short of the
	// full hour Google allows, per spec.md's pre-expiry slack.
	assertionLifetime = 3595

	iamScope                = "https://www.googleapis.com/auth/iam"
	generateIdTokenURLPrefix = "https://iamcredentials.googleapis.com/v1/projects/-/serviceAccounts/"
	generateIdTokenURLSuffix = ":generateIdToken"

	grantTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

// ServiceAccountProvider builds and parses the HTTP exchanges for the
// service-account JWT-bearer flow, including the two-step ID-token
// exchange via IAM Credentials.
type ServiceAccountProvider struct {
	info   credentials.ServiceAccountInfo
	signer *sign.Signer
}

var (
	_ protocol.TokenProvider   = (*ServiceAccountProvider)(nil)
	_ protocol.IdTokenProvider = (*ServiceAccountProvider)(nil)
)

// NewServiceAccountProvider constructs a provider from a deserialized
// service-account key. The private key is located and PKCS#8-parsed
// eagerly: a provider that fails to construct never reaches the
// request phase.
func NewServiceAccountProvider(info credentials.ServiceAccountInfo) (*ServiceAccountProvider, error) {
	der, err := info.DecodePrivateKey()
	if err != nil {
		return nil, err
	}
	signer, err := sign.NewFromPKCS8(der)
	if err != nil {
		return nil, err
	}
	return &ServiceAccountProvider{info: info, signer: signer}, nil
}

// GetToken is GetTokenWithSubject with an empty subject.
func (p *ServiceAccountProvider) GetToken(scopes []string) (protocol.TokenOrRequest, error) {
	return p.GetTokenWithSubject("", scopes)
}

// GetTokenWithSubject builds the signed-JWT-bearer token request.
func (p *ServiceAccountProvider) GetTokenWithSubject(subject string, scopes []string) (protocol.TokenOrRequest, error) {
	now := time.Now().UTC()
	claims := jwt.Claims{
		Iss:   p.info.ClientEmail,
		Scope: strings.Join(scopes, " "),
		Aud:   p.info.TokenURI,
		Exp:   now.Unix() + assertionLifetime,
		Iat:   now.Unix(),
	}
	if subject != "" {
		claims.Sub = subject
	}

	assertion, err := jwt.Encode(jwt.Header{Alg: string(sign.RS256), Typ: "JWT"}, claims, p.signer)
	if err != nil {
		return protocol.TokenOrRequest{}, err
	}

	form := url.Values{
		"grant_type": {grantTypeJWTBearer},
		"assertion":  {assertion},
	}
	req, err := newFormRequest(p.info.TokenURI, form)
	if err != nil {
		return protocol.TokenOrRequest{}, err
	}

	// The uncached provider never hashes scopes; 0 is the sentinel
	// only cache.CachedTokenProvider ever overwrites.
	return protocol.FromRequest(protocol.Request{
		HTTP:      req,
		Reason:    protocol.ReasonParametersChanged,
		ScopeHash: 0,
	}), nil
}

type accessTokenResponseBody struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ParseTokenResponse classifies non-2xx responses and decodes 2xx ones.
func (p *ServiceAccountProvider) ParseTokenResponse(scopeHash uint64, status int, contentType string, body []byte) (protocol.Token, error) {
	if !gcperr.IsSuccess(status) {
		return protocol.Token{}, gcperr.ClassifyResponse(status, contentType, body)
	}
	var resp accessTokenResponseBody
	if err := json.Unmarshal(body, &resp); err != nil {
		return protocol.Token{}, &gcperr.Error{Kind: gcperr.KindJSON, Err: err}
	}
	now := time.Now().UTC()
	return protocol.Token{
		AccessToken:        resp.AccessToken,
		TokenType:          resp.TokenType,
		RefreshToken:       "",
		ExpiresIn:          resp.ExpiresIn,
		ExpiresInTimestamp: now.Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}

// GetIdToken begins the two-step service-account ID-token flow: step
// one exchanges the JWT assertion for an IAM-scoped access token.
func (p *ServiceAccountProvider) GetIdToken(audience string) (protocol.IdTokenOrRequest, error) {
	tokenResult, err := p.GetTokenWithSubject("", []string{iamScope})
	if err != nil {
		return protocol.IdTokenOrRequest{}, err
	}
	return protocol.FromIdRequest(protocol.IdRequest{
		HTTP:         tokenResult.Request.HTTP,
		Kind:         protocol.KindAccessTokenRequest,
		AudienceHash: 0,
	}), nil
}

// GetIdTokenWithAccessToken parses the access-token response from step
// one, then builds the generateIdToken request to IAM Credentials.
func (p *ServiceAccountProvider) GetIdTokenWithAccessToken(audience string, status int, contentType string, body []byte) (protocol.IdTokenOrRequest, error) {
	tok, err := p.ParseTokenResponse(0, status, contentType, body)
	if err != nil {
		return protocol.IdTokenOrRequest{}, err
	}

	reqBody := iamcredentials.GenerateIdTokenRequest{
		Audience:     audience,
		IncludeEmail: true,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return protocol.IdTokenOrRequest{}, &gcperr.Error{Kind: gcperr.KindJSON, Err: err}
	}

	url := generateIdTokenURLPrefix + p.info.ClientEmail + generateIdTokenURLSuffix
	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return protocol.IdTokenOrRequest{}, &gcperr.Error{Kind: gcperr.KindHTTP, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	httpReq.Header.Set("Authorization", tok.TokenType+" "+tok.AccessToken)
	httpReq.ContentLength = int64(len(payload))

	return protocol.FromIdRequest(protocol.IdRequest{
		HTTP:         httpReq,
		Kind:         protocol.KindIdTokenRequest,
		AudienceHash: 0,
	}), nil
}

// ParseIdTokenResponse classifies non-2xx responses the same way
// ParseTokenResponse does, then decodes the generateIdToken JSON body.
func (p *ServiceAccountProvider) ParseIdTokenResponse(audienceHash uint64, status int, contentType string, body []byte) (protocol.IdToken, error) {
	if !gcperr.IsSuccess(status) {
		return protocol.IdToken{}, gcperr.ClassifyResponse(status, contentType, body)
	}
	var resp iamcredentials.GenerateIdTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return protocol.IdToken{}, &gcperr.Error{Kind: gcperr.KindJSON, Err: err}
	}
	exp, err := jwt.ClaimsExpiration(resp.Token)
	if err != nil {
		return protocol.IdToken{}, err
	}
	return protocol.IdToken{
		Token:      resp.Token,
		Expiration: time.Unix(exp, 0).UTC(),
	}, nil
}

func newFormRequest(endpoint string, form url.Values) (*http.Request, error) {
	body := form.Encode()
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, &gcperr.Error{Kind: gcperr.KindHTTP, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return req, nil
}
