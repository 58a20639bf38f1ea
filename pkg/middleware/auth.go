package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/scholarfolio/backend/internal/revocation"
	"github.com/scholarfolio/backend/pkg/logger"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// VerifierChain tries each verifier in order and returns the first success.
type VerifierChain []Verifier

func (vc VerifierChain) Verify(ctx context.Context, raw string) (Token, error) {
	var lastErr error
	for _, v := range vc {
		tok, err := v.Verify(ctx, raw)
		if err == nil {
			return tok, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errNoVerifier
	}
	return nil, lastErr
}

var errNoVerifier = errors.New("no verifier configured")

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the provided verifier
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		revoked, err := revocation.IsRevoked(c.Request.Context(), token)
		if err != nil {
			logger.Warnf("revocation check failed: %v", err)
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		idToken, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "details": err.Error()})
			return
		}

		var claims map[string]interface{}
		if err := idToken.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// Subject returns the "sub" claim set by AuthMiddleware, if any.
func Subject(c *gin.Context) string {
	v, ok := c.Get("claims")
	if !ok {
		return ""
	}
	cm, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	sub, _ := cm["sub"].(string)
	return sub
}
