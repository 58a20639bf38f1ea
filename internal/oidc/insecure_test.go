package oidc

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsecureVerifierParsesClaims(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"owner-1","email":"a@b.c"}`))
	tok, err := NewInsecureVerifier().Verify(context.Background(), "e30."+payload+".sig")
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "owner-1", claims["sub"])
}

func TestInsecureVerifierRejectsGarbage(t *testing.T) {
	_, err := NewInsecureVerifier().Verify(context.Background(), "garbage")
	require.Error(t, err)
	_, err = NewInsecureVerifier().Verify(context.Background(), "a.!!!.c")
	require.Error(t, err)
}
