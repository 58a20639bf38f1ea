package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"
)

const ownerKey = "owner"

// OwnerMiddleware resolves the owner identifier that scopes every content
// query. Anonymous requests (public reads) and the listed admin subjects
// resolve to defaultOwner, the site owner. Any other authenticated subject
// is its own owner.
func OwnerMiddleware(defaultOwner string, adminSubjects ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := Subject(c)
		if owner == "" || slices.Contains(adminSubjects, owner) {
			owner = defaultOwner
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

// OwnerFrom returns the owner resolved by OwnerMiddleware.
func OwnerFrom(c *gin.Context) string {
	return c.GetString(ownerKey)
}
