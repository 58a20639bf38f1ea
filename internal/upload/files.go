package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/scholarfolio/backend/internal/storage"
	"github.com/scholarfolio/backend/pkg/logger"
)

// Remove deletes a previously uploaded object from the default bucket.
func (u *Uploader) Remove(ctx context.Context, key string) error {
	key = strings.TrimPrefix(key, "/")
	if _, ok := cleanFolder(key); !ok || key == "" {
		return storage.ErrObjectNotFound
	}
	return u.store.Remove(ctx, u.defaults.BucketName, key)
}

// RegisterRemoveRoute registers DELETE /api/uploads/*key for cleaning up
// attachments no record points at any more.
func RegisterRemoveRoute(r gin.IRouter, u *Uploader, write ...gin.HandlerFunc) {
	h := func(c *gin.Context) {
		if err := u.Remove(c.Request.Context(), c.Param("key")); err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
				return
			}
			logger.Errorf("remove upload %s: %v", c.Param("key"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove file"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
	r.DELETE("/api/uploads/*key", append(append([]gin.HandlerFunc{}, write...), h)...)
}

// RegisterFileRoutes serves stored objects under prefix/<bucket>/<key>.
// Used with the in-memory store, whose public URL points back at the API.
func RegisterFileRoutes(r gin.IRouter, prefix string, store storage.ObjectStore) {
	r.GET(strings.TrimRight(prefix, "/")+"/:bucket/*key", func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		rc, err := store.Open(c.Request.Context(), c.Param("bucket"), key)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				c.Status(http.StatusNotFound)
				return
			}
			logger.Errorf("open %s/%s: %v", c.Param("bucket"), key, err)
			c.Status(http.StatusInternalServerError)
			return
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			logger.Errorf("read %s/%s: %v", c.Param("bucket"), key, err)
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
	})
}
