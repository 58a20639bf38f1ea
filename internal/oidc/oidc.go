package oidc

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/scholarfolio/backend/pkg/middleware"
)

// Verifier checks ID tokens issued by the configured OIDC provider
// (Keycloak in the default deployment).
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier discovers the provider at issuer and returns a verifier that
// accepts tokens for clientID.
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// Verify verifies the raw ID token and returns it as a middleware.Token.
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return idToken, nil
}
