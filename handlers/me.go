package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scholarfolio/backend/pkg/middleware"
)

// RegisterMe registers GET /api/me, which reports who the bearer token
// belongs to and which owner its writes are scoped to. guard must verify
// the token and resolve the owner.
func RegisterMe(r gin.IRouter, guard ...gin.HandlerFunc) {
	r.GET("/api/me", append(append([]gin.HandlerFunc{}, guard...), func(c *gin.Context) {
		claims, _ := c.Get("claims")
		cm, _ := claims.(map[string]interface{})
		name, _ := cm["name"].(string)
		email, _ := cm["email"].(string)
		c.JSON(http.StatusOK, gin.H{
			"sub":   middleware.Subject(c),
			"owner": middleware.OwnerFrom(c),
			"name":  name,
			"email": email,
		})
	})...)
}
