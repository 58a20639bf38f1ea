package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/scholarfolio/backend/internal/content"
	"github.com/scholarfolio/backend/internal/content/service"
	"github.com/scholarfolio/backend/pkg/logger"
	"github.com/scholarfolio/backend/pkg/metrics"
	"github.com/scholarfolio/backend/pkg/middleware"
)

// Resource names one content collection on the HTTP surface.
type Resource struct {
	Path     string // e.g. "research-papers"
	Singular string // e.g. "Research paper"
	Plural   string // e.g. "research papers"
}

var (
	Papers   = Resource{Path: "research-papers", Singular: "Research paper", Plural: "research papers"}
	Posts    = Resource{Path: "blog-posts", Singular: "Blog post", Plural: "blog posts"}
	Teaching = Resource{Path: "teaching-experiences", Singular: "Teaching experience", Plural: "teaching experiences"}
)

func (r Resource) lower() string { return strings.ToLower(r.Singular) }

func observe(res Resource, op, outcome string) {
	metrics.ContentOps.WithLabelValues(res.Path, op, outcome).Inc()
}

// Register mounts the list/get/create/update/delete routes of res under
// /api/<path>. write guards the mutating routes and may be empty. The
// owner must already be resolved by middleware.OwnerMiddleware.
func Register[T content.Record, I content.Input[T]](r gin.IRouter, res Resource, svc *service.Service[T, I], write ...gin.HandlerFunc) {
	base := "/api/" + res.Path
	guarded := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, write...), h)
	}

	r.GET(base, func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), middleware.OwnerFrom(c))
		if err != nil {
			logger.Errorf("list %s: %v", res.Path, err)
			observe(res, "list", "error")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch " + res.Plural})
			return
		}
		if list == nil {
			list = []T{}
		}
		observe(res, "list", "ok")
		c.JSON(http.StatusOK, list)
	})

	r.GET(base+"/:id", func(c *gin.Context) {
		rec, err := svc.Get(c.Request.Context(), middleware.OwnerFrom(c), c.Param("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				observe(res, "get", "not_found")
				c.JSON(http.StatusNotFound, gin.H{"error": res.Singular + " not found"})
				return
			}
			logger.Errorf("get %s %s: %v", res.Path, c.Param("id"), err)
			observe(res, "get", "error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch " + res.lower()})
			return
		}
		observe(res, "get", "ok")
		c.JSON(http.StatusOK, rec)
	})

	r.POST(base, guarded(func(c *gin.Context) {
		var in I
		if err := c.ShouldBindJSON(&in); err != nil {
			observe(res, "create", "invalid")
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
			return
		}
		rec, err := svc.Create(c.Request.Context(), middleware.OwnerFrom(c), in)
		if err != nil {
			var verr *content.ValidationError
			if errors.As(err, &verr) {
				observe(res, "create", "invalid")
				c.JSON(http.StatusBadRequest, gin.H{"message": verr.Message})
				return
			}
			logger.Errorf("create %s: %v", res.Path, err)
			observe(res, "create", "error")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create " + res.lower()})
			return
		}
		observe(res, "create", "ok")
		c.JSON(http.StatusCreated, gin.H{"message": res.Singular + " created successfully", "id": rec.RecordMeta().ID.Hex()})
	})...)

	r.PUT(base+"/:id", guarded(func(c *gin.Context) {
		var in I
		if err := c.ShouldBindJSON(&in); err != nil {
			observe(res, "update", "invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		rec, err := svc.Update(c.Request.Context(), middleware.OwnerFrom(c), c.Param("id"), in)
		if err != nil {
			var verr *content.ValidationError
			switch {
			case errors.Is(err, service.ErrNotFound):
				observe(res, "update", "not_found")
				c.JSON(http.StatusNotFound, gin.H{"error": res.Singular + " not found"})
			case errors.As(err, &verr):
				observe(res, "update", "invalid")
				c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
			default:
				logger.Errorf("update %s %s: %v", res.Path, c.Param("id"), err)
				observe(res, "update", "error")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update " + res.lower()})
			}
			return
		}
		observe(res, "update", "ok")
		c.JSON(http.StatusOK, rec)
	})...)

	r.DELETE(base+"/:id", guarded(func(c *gin.Context) {
		err := svc.Delete(c.Request.Context(), middleware.OwnerFrom(c), c.Param("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				observe(res, "delete", "not_found")
				c.JSON(http.StatusNotFound, gin.H{"error": res.Singular + " not found"})
				return
			}
			logger.Errorf("delete %s %s: %v", res.Path, c.Param("id"), err)
			observe(res, "delete", "error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete " + res.lower()})
			return
		}
		observe(res, "delete", "ok")
		c.JSON(http.StatusOK, gin.H{"success": true})
	})...)
}

// Services bundles the three content services wired by RegisterAll.
type Services struct {
	Papers   *service.Papers
	Posts    *service.Posts
	Teaching *service.Teaching
}

// RegisterAll mounts every content resource.
func RegisterAll(r gin.IRouter, s Services, write ...gin.HandlerFunc) {
	Register(r, Papers, s.Papers, write...)
	Register(r, Posts, s.Posts, write...)
	Register(r, Teaching, s.Teaching, write...)
}
