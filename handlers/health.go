package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check is one dependency probed by /ready.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// RegisterHealth registers /health (liveness) and /ready (every check must
// pass within two seconds).
func RegisterHealth(r gin.IRouter, started time.Time, checks ...Check) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		deps := make(map[string]bool, len(checks))
		for _, chk := range checks {
			ok := chk.Ping == nil || chk.Ping(ctx) == nil
			deps[chk.Name] = ok
			ready = ready && ok
		}
		body := gin.H{"deps": deps, "uptime": time.Since(started).Round(time.Second).String()}
		if !ready {
			body["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["status"] = "ready"
		c.JSON(http.StatusOK, body)
	})
}
