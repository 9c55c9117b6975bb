package jwt_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	josejwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/tame-gcp/gcpauth/jwt"
	"github.com/tame-gcp/gcpauth/sign"
)

func testSigner(t *testing.T) (*sign.Signer, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	signer, err := sign.NewFromPKCS8(der)
	require.NoError(t, err)
	return signer, key
}

func TestEncodeOmitsUnsetOptionalHeaderFields(t *testing.T) {
	signer, _ := testSigner(t)
	token, err := jwt.Encode(jwt.Header{Alg: "RS256", Typ: "JWT"}, jwt.Claims{
		Iss: "svc@example.iam.gserviceaccount.com",
		Aud: "https://oauth2.googleapis.com/token",
		Exp: 1000,
		Iat: 100,
	}, signer)
	require.NoError(t, err)

	segments, err := jwt.Segments(token)
	require.NoError(t, err)

	headerJSON, err := jwt.DecodeSegment(segments[0])
	require.NoError(t, err)

	require.JSONEq(t, `{"alg":"RS256","typ":"JWT"}`, string(headerJSON))
}

func TestEncodeAcceptedByStandardRS256Verifier(t *testing.T) {
	signer, key := testSigner(t)
	token, err := jwt.Encode(jwt.Header{Alg: "RS256", Typ: "JWT"}, jwt.Claims{
		Iss:   "svc@example.iam.gserviceaccount.com",
		Scope: "https://www.googleapis.com/auth/pubsub",
		Aud:   "https://oauth2.googleapis.com/token",
		Exp:   1700000100,
		Iat:   1700000000,
	}, signer)
	require.NoError(t, err)

	parsed, err := josejwt.Parse(token, func(t *josejwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, josejwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(josejwt.MapClaims)
	require.Equal(t, "svc@example.iam.gserviceaccount.com", claims["iss"])
}

func TestSegmentsRejectsWrongPartCount(t *testing.T) {
	_, err := jwt.Segments("a.b")
	require.Error(t, err)

	_, err = jwt.Segments("a.b.c.d")
	require.Error(t, err)

	_, err = jwt.Segments("a..c")
	require.Error(t, err)
}

func TestDecodeSegmentRejectsPaddedInput(t *testing.T) {
	padded := base64.StdEncoding.EncodeToString([]byte(`{"exp":1}`))
	require.True(t, strings.HasSuffix(padded, "=") || len(padded)%4 == 0)
	// Force a padded string (StdEncoding pads short input with '=').
	paddedShort := base64.StdEncoding.EncodeToString([]byte(`{"exp":1`))
	_, err := jwt.DecodeSegment(paddedShort)
	require.Error(t, err)
}

func TestClaimsExpirationReadsExpClaim(t *testing.T) {
	payload, err := json.Marshal(map[string]any{"exp": int64(1700003600), "iss": "x"})
	require.NoError(t, err)
	header, err := json.Marshal(map[string]any{"alg": "RS256"})
	require.NoError(t, err)

	token := base64.RawURLEncoding.EncodeToString(header) + "." +
		base64.RawURLEncoding.EncodeToString(payload) + "." +
		base64.RawURLEncoding.EncodeToString([]byte("sig"))

	exp, err := jwt.ClaimsExpiration(token)
	require.NoError(t, err)
	require.EqualValues(t, 1700003600, exp)
}
