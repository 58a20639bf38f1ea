package upload

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/scholarfolio/backend/pkg/logger"
)

// multipartSlack covers form fields and multipart framing around the file.
const multipartSlack = 1 << 20

// RegisterRoutes registers POST /api/uploads. write guards the route
// (auth + owner middleware); it may be empty.
func RegisterRoutes(r gin.IRouter, u *Uploader, write ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, write...), func(c *gin.Context) { handleUpload(c, u) })
	r.POST("/api/uploads", handlers...)
}

// handleUpload accepts multipart/form-data with a "file" part and optional
// bucketName, folderPath, maxFileSize and accept (comma separated MIME
// types) fields. The response body mirrors Result.
func handleUpload(c *gin.Context, u *Uploader) {
	if max := u.Defaults().MaxFileSize; max > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max+multipartSlack)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, Result{Error: "File is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, Result{Error: "A single file is required in the \"file\" field"})
		return
	}
	form, _ := c.MultipartForm()
	if form != nil && len(form.File["file"]) > 1 {
		c.JSON(http.StatusBadRequest, Result{Error: "Only one file may be uploaded at a time"})
		return
	}

	opts := Options{
		BucketName: c.PostForm("bucketName"),
		FolderPath: c.PostForm("folderPath"),
	}
	if b := opts.BucketName; b != "" && b != u.Defaults().BucketName {
		c.JSON(http.StatusBadRequest, Result{Error: "Unknown bucket " + b})
		return
	}
	if v := c.PostForm("maxFileSize"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, Result{Error: "maxFileSize must be a positive integer"})
			return
		}
		opts.MaxFileSize = n
	}
	for _, t := range strings.Split(c.PostForm("accept"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			opts.AllowedTypes = append(opts.AllowedTypes, t)
		}
	}

	f, err := fh.Open()
	if err != nil {
		logger.Errorf("open uploaded part %q: %v", fh.Filename, err)
		c.JSON(http.StatusInternalServerError, Result{Error: "Failed to read upload"})
		return
	}
	defer f.Close()

	res, err := u.Upload(c.Request.Context(), File{Name: fh.Filename, Size: fh.Size, Body: f}, opts)
	if err != nil {
		logger.Errorf("store upload %q: %v", fh.Filename, err)
		c.JSON(http.StatusInternalServerError, Result{Error: "Failed to upload file"})
		return
	}
	if !res.Success {
		c.JSON(http.StatusBadRequest, res)
		return
	}
	logger.Infof("stored upload %s (%d bytes)", res.Key, fh.Size)
	c.JSON(http.StatusOK, res)
}
