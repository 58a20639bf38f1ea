package tokens

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-32-bytes-should-be-long-enough"

func TestGenerateAccessToken_VerifyClaims(t *testing.T) {
	tok, err := GenerateAccessToken(secret, "owner-123", 2*time.Minute)
	require.NoError(t, err)

	v := NewHMACVerifier(secret)
	verified, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, verified.Claims(&claims))
	require.Equal(t, "owner-123", claims["sub"])
	require.Equal(t, Issuer, claims["iss"])

	left, err := v.ExpiresIn(tok)
	require.NoError(t, err)
	require.Greater(t, left, time.Minute)
}

func TestGenerateAccessToken_RequiresSecretAndSubject(t *testing.T) {
	_, err := GenerateAccessToken("", "sub", time.Minute)
	require.Error(t, err)
	_, err = GenerateAccessToken(secret, "", time.Minute)
	require.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	tok, err := GenerateAccessToken(secret, "u2", -time.Minute)
	require.NoError(t, err)
	_, err = NewHMACVerifier(secret).Verify(context.Background(), tok)
	require.Error(t, err)
}

func TestVerify_WrongSecretFails(t *testing.T) {
	tok, err := GenerateAccessToken(secret, "u3", 2*time.Minute)
	require.NoError(t, err)
	_, err = NewHMACVerifier("different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), tok)
	require.Error(t, err)
}

func TestVerify_Malformed(t *testing.T) {
	_, err := NewHMACVerifier(secret).Verify(context.Background(), "not.a.jwt")
	require.Error(t, err)
}

// Rejected when alg=none (unsigned token)
func TestVerify_AlgNoneRejected(t *testing.T) {
	enc := base64.RawURLEncoding.EncodeToString
	tok := enc([]byte(`{"alg":"none"}`)) + "." + enc([]byte(`{"sub":"u-none","iss":"scholarfolio","exp":9999999999}`)) + "."
	_, err := NewHMACVerifier(secret).Verify(context.Background(), tok)
	require.Error(t, err)
}

// Tampering with payload must fail signature verification
func TestVerify_TamperedPayload(t *testing.T) {
	tok, err := GenerateAccessToken(secret, "user-t", 5*time.Minute)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(strings.Replace(string(payload), "user-t", "attacker", 1)))
	_, err = NewHMACVerifier(secret).Verify(context.Background(), strings.Join(parts, "."))
	require.Error(t, err)
}

func TestVerify_WrongIssuerRejected(t *testing.T) {
	claims := jwt.MapClaims{"sub": "x", "iss": "someone-else", "exp": time.Now().Add(time.Minute).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = NewHMACVerifier(secret).Verify(context.Background(), tok)
	require.Error(t, err)
}
