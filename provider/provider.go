package provider

import (
	"github.com/tame-gcp/gcpauth/protocol"
)

// Kind tags which variant a Provider currently dispatches to.
type Kind int

const (
	KindServiceAccount Kind = iota
	KindMetadataServer
	KindEndUser
)

// Provider is a sum type over the three concrete flows. Every method
// dispatches to the active variant by Kind; exactly one of the
// embedded fields is non-nil, matching the Kind.
type Provider struct {
	Kind Kind

	ServiceAccount *ServiceAccountProvider
	MetadataServer *MetadataServerProvider
	EndUser        *EndUserProvider
}

var _ protocol.Provider = (*Provider)(nil)

// FromServiceAccount wraps a ServiceAccountProvider.
func FromServiceAccount(p *ServiceAccountProvider) *Provider {
	return &Provider{Kind: KindServiceAccount, ServiceAccount: p}
}

// FromMetadataServer wraps a MetadataServerProvider.
func FromMetadataServer(p *MetadataServerProvider) *Provider {
	return &Provider{Kind: KindMetadataServer, MetadataServer: p}
}

// FromEndUser wraps an EndUserProvider.
func FromEndUser(p *EndUserProvider) *Provider {
	return &Provider{Kind: KindEndUser, EndUser: p}
}

func (p *Provider) inner() protocol.Provider {
	switch p.Kind {
	case KindServiceAccount:
		return p.ServiceAccount
	case KindMetadataServer:
		return p.MetadataServer
	case KindEndUser:
		return p.EndUser
	default:
		panic("provider: Provider used with unset Kind")
	}
}

func (p *Provider) GetToken(scopes []string) (protocol.TokenOrRequest, error) {
	return p.inner().GetToken(scopes)
}

func (p *Provider) GetTokenWithSubject(subject string, scopes []string) (protocol.TokenOrRequest, error) {
	return p.inner().GetTokenWithSubject(subject, scopes)
}

func (p *Provider) ParseTokenResponse(scopeHash uint64, status int, contentType string, body []byte) (protocol.Token, error) {
	return p.inner().ParseTokenResponse(scopeHash, status, contentType, body)
}

func (p *Provider) GetIdToken(audience string) (protocol.IdTokenOrRequest, error) {
	return p.inner().GetIdToken(audience)
}

func (p *Provider) GetIdTokenWithAccessToken(audience string, status int, contentType string, body []byte) (protocol.IdTokenOrRequest, error) {
	return p.inner().GetIdTokenWithAccessToken(audience, status, contentType, body)
}

func (p *Provider) ParseIdTokenResponse(audienceHash uint64, status int, contentType string, body []byte) (protocol.IdToken, error) {
	return p.inner().ParseIdTokenResponse(audienceHash, status, contentType, body)
}
