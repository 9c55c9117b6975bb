package main

import (
	"io"
	"net/http"

	"github.com/tame-gcp/gcpauth/protocol"
)

// executeRequest runs req against client and returns the three values
// every provider's parse method needs: status code, content type, and
// body bytes. This is the ONE place in this program that performs an
// actual network round trip; the library itself never does.
func executeRequest(client *http.Client, req *http.Request) (status int, contentType string, body []byte, err error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", nil, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", nil, err
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), body, nil
}

// driveToken executes a provider's GetTokenWithSubject result, doing
// the single round trip it may require, and returns the finished
// access Token.
func driveToken(client *http.Client, p protocol.TokenProvider, subject string, scopes []string) (protocol.Token, error) {
	result, err := p.GetTokenWithSubject(subject, scopes)
	if err != nil {
		return protocol.Token{}, err
	}
	if result.IsToken() {
		return *result.Token, nil
	}

	status, contentType, body, err := executeRequest(client, result.Request.HTTP)
	if err != nil {
		return protocol.Token{}, err
	}
	return p.ParseTokenResponse(result.Request.ScopeHash, status, contentType, body)
}

// driveIdToken executes an IdTokenProvider's flow to completion. It
// handles both the single-round-trip shape (metadata server, end
// user) and the two-round-trip shape (service account) by switching
// on the Kind tag of whatever Request comes back.
func driveIdToken(client *http.Client, p protocol.IdTokenProvider, audience string) (protocol.IdToken, error) {
	result, err := p.GetIdToken(audience)
	if err != nil {
		return protocol.IdToken{}, err
	}
	if result.IsIdToken() {
		return *result.IdToken, nil
	}

	for {
		status, contentType, body, err := executeRequest(client, result.Request.HTTP)
		if err != nil {
			return protocol.IdToken{}, err
		}

		switch result.Request.Kind {
		case protocol.KindAccessTokenRequest:
			next, err := p.GetIdTokenWithAccessToken(audience, status, contentType, body)
			if err != nil {
				return protocol.IdToken{}, err
			}
			if next.IsIdToken() {
				return *next.IdToken, nil
			}
			result = next
		case protocol.KindIdTokenRequest:
			return p.ParseIdTokenResponse(result.Request.AudienceHash, status, contentType, body)
		}
	}
}
