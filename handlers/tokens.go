package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scholarfolio/backend/internal/revocation"
	"github.com/scholarfolio/backend/pkg/logger"
	"github.com/scholarfolio/backend/pkg/middleware"
)

// defaultRevokeTTL is used when the token carries no usable exp claim.
const defaultRevokeTTL = time.Hour

// RegisterTokenRoutes registers POST /api/tokens/revoke, which adds the
// caller's own bearer token to the revocation list. auth must verify the
// token first.
func RegisterTokenRoutes(r gin.IRouter, auth gin.HandlerFunc) {
	r.POST("/api/tokens/revoke", auth, revokeToken)
}

func revokeToken(c *gin.Context) {
	if !revocation.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "token revocation requires Redis"})
		return
	}
	raw, _ := middleware.BearerToken(c)
	ttl := defaultRevokeTTL
	if v, ok := c.Get("claims"); ok {
		if cm, ok := v.(map[string]interface{}); ok {
			if exp, ok := cm["exp"].(float64); ok {
				ttl = time.Until(time.Unix(int64(exp), 0))
			}
		}
	}
	if err := revocation.Revoke(c.Request.Context(), raw, ttl); err != nil {
		logger.Errorf("revoke token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
