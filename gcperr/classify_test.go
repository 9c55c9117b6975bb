package gcperr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tame-gcp/gcpauth/gcperr"
)

func TestIsSuccess(t *testing.T) {
	assert.True(t, gcperr.IsSuccess(200))
	assert.True(t, gcperr.IsSuccess(204))
	assert.True(t, gcperr.IsSuccess(299))
	assert.False(t, gcperr.IsSuccess(199))
	assert.False(t, gcperr.IsSuccess(300))
	assert.False(t, gcperr.IsSuccess(404))
}

func TestClassifyResponseDecodesStructuredAuthError(t *testing.T) {
	body := []byte(`{"error":"invalid_grant","error_description":"Invalid JWT Signature."}`)
	err := gcperr.ClassifyResponse(400, "application/json; charset=utf-8", body)

	assert.True(t, errors.Is(err, gcperr.Auth("invalid_grant", "")))

	var gerr *gcperr.Error
	assert.True(t, errors.As(err, &gerr))
	assert.Equal(t, gcperr.KindAuth, gerr.Kind)
	assert.Equal(t, "invalid_grant", gerr.AuthError)
	assert.Equal(t, "Invalid JWT Signature.", gerr.AuthDescription)
}

func TestClassifyResponseFallsBackToHTTPStatusOnWrongContentType(t *testing.T) {
	body := []byte(`{"error":"invalid_grant"}`)
	err := gcperr.ClassifyResponse(400, "application/json", body)

	assert.True(t, errors.Is(err, gcperr.HTTPStatus(400)))
}

func TestClassifyResponseFallsBackToHTTPStatusOnEmptyErrorFields(t *testing.T) {
	body := []byte(`{}`)
	err := gcperr.ClassifyResponse(503, "application/json; charset=utf-8", body)

	assert.True(t, errors.Is(err, gcperr.HTTPStatus(503)))
}

func TestClassifyResponseFallsBackToHTTPStatusOnUnparseableBody(t *testing.T) {
	body := []byte(`not json`)
	err := gcperr.ClassifyResponse(500, "application/json; charset=utf-8", body)

	assert.True(t, errors.Is(err, gcperr.HTTPStatus(500)))
}

func TestErrorIsDistinguishesByStatusAndAuthCode(t *testing.T) {
	assert.False(t, errors.Is(gcperr.HTTPStatus(400), gcperr.HTTPStatus(404)))
	assert.True(t, errors.Is(gcperr.HTTPStatus(404), gcperr.HTTPStatus(404)))

	assert.False(t, errors.Is(gcperr.Auth("invalid_grant", ""), gcperr.Auth("invalid_scope", "")))
	assert.True(t, errors.Is(gcperr.Auth("invalid_grant", "a"), gcperr.Auth("invalid_grant", "b")))
}
