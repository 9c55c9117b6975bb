package provider

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tame-gcp/gcpauth/gcperr"
	"github.com/tame-gcp/gcpauth/jwt"
	"github.com/tame-gcp/gcpauth/protocol"
)

const (
	defaultMetadataAccount = "default"
	metadataHost           = "metadata.google.internal"
	metadataFlavorHeader   = "Metadata-Flavor"
	metadataFlavorValue    = "Google"
)

// MetadataServerProvider issues token/id-token requests against the GCE
// instance metadata server for the named service account ("default" if
// unset).
type MetadataServerProvider struct {
	account string
}

var (
	_ protocol.TokenProvider   = (*MetadataServerProvider)(nil)
	_ protocol.IdTokenProvider = (*MetadataServerProvider)(nil)
)

// NewMetadataServerProvider returns a provider for account, or
// "default" when account is empty.
func NewMetadataServerProvider(account string) *MetadataServerProvider {
	if account == "" {
		account = defaultMetadataAccount
	}
	return &MetadataServerProvider{account: account}
}

// GetToken is GetTokenWithSubject with an empty subject.
func (p *MetadataServerProvider) GetToken(scopes []string) (protocol.TokenOrRequest, error) {
	return p.GetTokenWithSubject("", scopes)
}

// GetTokenWithSubject builds the metadata-server token GET. A subject
// is never supported by this flow.
func (p *MetadataServerProvider) GetTokenWithSubject(subject string, scopes []string) (protocol.TokenOrRequest, error) {
	if subject != "" {
		return protocol.TokenOrRequest{}, gcperr.Unsupported("metadata server credentials do not support jwt subjects")
	}

	u := url.URL{
		Scheme: "http",
		Host:   metadataHost,
		Path:   "/computeMetadata/v1/instance/service-accounts/" + p.account + "/token",
	}
	if len(scopes) > 0 {
		// The metadata server expects a literal comma-joined list, not a
		// percent-encoded one; url.Values.Encode() would escape the commas.
		u.RawQuery = "scopes=" + strings.Join(scopes, ",")
	}

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return protocol.TokenOrRequest{}, &gcperr.Error{Kind: gcperr.KindHTTP, Err: err}
	}
	req.Header.Set(metadataFlavorHeader, metadataFlavorValue)

	return protocol.FromRequest(protocol.Request{
		HTTP:      req,
		Reason:    protocol.ReasonParametersChanged,
		ScopeHash: 0,
	}), nil
}

// ParseTokenResponse classifies non-2xx responses and decodes 2xx ones.
func (p *MetadataServerProvider) ParseTokenResponse(scopeHash uint64, status int, contentType string, body []byte) (protocol.Token, error) {
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
		ExpiresIn:          resp.ExpiresIn,
		ExpiresInTimestamp: now.Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}

// GetIdToken builds the metadata-server identity GET; this is a
// single round trip, unlike the service-account flow.
func (p *MetadataServerProvider) GetIdToken(audience string) (protocol.IdTokenOrRequest, error) {
	u := url.URL{
		Scheme: "http",
		Host:   metadataHost,
		Path:   "/computeMetadata/v1/instance/service-accounts/" + p.account + "/identity",
	}
	q := u.Query()
	q.Set("audience", audience)
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return protocol.IdTokenOrRequest{}, &gcperr.Error{Kind: gcperr.KindHTTP, Err: err}
	}
	req.Header.Set(metadataFlavorHeader, metadataFlavorValue)

	return protocol.FromIdRequest(protocol.IdRequest{
		HTTP:         req,
		Kind:         protocol.KindIdTokenRequest,
		AudienceHash: 0,
	}), nil
}

// GetIdTokenWithAccessToken always fails: the metadata flow is a
// single round trip and never reaches this step.
func (p *MetadataServerProvider) GetIdTokenWithAccessToken(audience string, status int, contentType string, body []byte) (protocol.IdTokenOrRequest, error) {
	return protocol.IdTokenOrRequest{}, gcperr.Unsupported("metadata server credentials do not use a two-step id-token exchange")
}

// ParseIdTokenResponse treats the entire body as the raw JWT: the
// metadata server does not wrap it in JSON or document a content-type.
func (p *MetadataServerProvider) ParseIdTokenResponse(audienceHash uint64, status int, contentType string, body []byte) (protocol.IdToken, error) {
	if !gcperr.IsSuccess(status) {
		return protocol.IdToken{}, gcperr.ClassifyResponse(status, contentType, body)
	}
	token := string(body)
	exp, err := jwt.ClaimsExpiration(token)
	if err != nil {
		return protocol.IdToken{}, err
	}
	return protocol.IdToken{Token: token, Expiration: time.Unix(exp, 0).UTC()}, nil
}
