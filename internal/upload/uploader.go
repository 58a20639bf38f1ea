package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/scholarfolio/backend/internal/storage"
	"github.com/scholarfolio/backend/pkg/metrics"
)

// sniffLen is how much of the body is read to detect its type.
const sniffLen = 3072

// Options configures one upload: where the object goes, how large it may be
// and which MIME types are accepted.
type Options struct {
	BucketName   string   `json:"bucketName"`
	FolderPath   string   `json:"folderPath"`
	MaxFileSize  int64    `json:"maxFileSize"`
	AllowedTypes []string `json:"allowedTypes,omitempty"`
}

// File is the attachment to store. Size must be the exact body length.
type File struct {
	Name string
	Size int64
	Body io.Reader
}

// Result is the outcome reported to the caller. Rejections are results,
// not errors.
type Result struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Key     string `json:"key,omitempty"`
	Error   string `json:"error,omitempty"`
}

func reject(format string, args ...interface{}) Result {
	metrics.Uploads.WithLabelValues("rejected").Inc()
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Uploader validates attachments and writes them to an ObjectStore.
type Uploader struct {
	store    storage.ObjectStore
	defaults Options
	newID    func() string
}

// NewUploader returns an Uploader that fills missing options from defaults.
func NewUploader(store storage.ObjectStore, defaults Options) *Uploader {
	return &Uploader{store: store, defaults: defaults, newID: func() string { return uuid.NewString() }}
}

// Defaults returns the options applied when a caller leaves fields empty.
func (u *Uploader) Defaults() Options { return u.defaults }

// resolve fills opts from the defaults. ok is false when the caller's
// allowed types share nothing with the server's.
func (u *Uploader) resolve(opts Options) (resolved Options, ok bool) {
	if opts.BucketName == "" {
		opts.BucketName = u.defaults.BucketName
	}
	if opts.FolderPath == "" {
		opts.FolderPath = u.defaults.FolderPath
	}
	// a caller may tighten the size limit but never loosen it
	if opts.MaxFileSize <= 0 || (u.defaults.MaxFileSize > 0 && opts.MaxFileSize > u.defaults.MaxFileSize) {
		opts.MaxFileSize = u.defaults.MaxFileSize
	}
	if len(opts.AllowedTypes) == 0 {
		opts.AllowedTypes = u.defaults.AllowedTypes
	} else if len(u.defaults.AllowedTypes) > 0 {
		var keep []string
		for _, t := range opts.AllowedTypes {
			if containsType(u.defaults.AllowedTypes, t) {
				keep = append(keep, t)
			}
		}
		if len(keep) == 0 {
			return opts, false
		}
		opts.AllowedTypes = keep
	}
	return opts, true
}

func containsType(list []string, t string) bool {
	for _, l := range list {
		if strings.EqualFold(l, t) {
			return true
		}
	}
	return false
}

// Upload checks f against opts and stores it. The returned error is only
// set for store failures; validation problems come back as a Result with
// Success=false.
func (u *Uploader) Upload(ctx context.Context, f File, opts Options) (Result, error) {
	opts, ok := u.resolve(opts)
	if !ok {
		return reject("File type is not allowed"), nil
	}
	if f.Body == nil || f.Size == 0 {
		return reject("File is empty"), nil
	}
	if opts.MaxFileSize > 0 && f.Size > opts.MaxFileSize {
		return reject("File size exceeds the %s limit", humanSize(opts.MaxFileSize)), nil
	}
	folder, ok := cleanFolder(opts.FolderPath)
	if !ok {
		return reject("Invalid folder path"), nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	detected := mimetype.Detect(head)
	if len(opts.AllowedTypes) > 0 && !mimeAllowed(detected, opts.AllowedTypes) {
		return reject("File type %s is not allowed", detected.String()), nil
	}

	key := u.newID() + "-" + sanitizeName(f.Name, detected.Extension())
	if folder != "" {
		key = folder + "/" + key
	}
	body := io.MultiReader(bytes.NewReader(head), f.Body)
	if err := u.store.Put(ctx, opts.BucketName, key, body, f.Size, detected.String()); err != nil {
		metrics.Uploads.WithLabelValues("error").Inc()
		return Result{}, err
	}
	metrics.Uploads.WithLabelValues("stored").Inc()
	metrics.UploadBytes.Add(float64(f.Size))
	return Result{Success: true, URL: u.store.URL(opts.BucketName, key), Key: key}, nil
}

func mimeAllowed(m *mimetype.MIME, allowed []string) bool {
	for _, a := range allowed {
		if m.Is(a) {
			return true
		}
	}
	return false
}

func cleanFolder(p string) (string, bool) {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "", true
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", false
		}
	}
	return p, true
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitizeName(name, ext string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Trim(unsafeName.ReplaceAllString(base, "-"), "-.")
	if base == "" {
		base = "file" + ext
	}
	if len(base) > 100 {
		base = base[len(base)-100:]
	}
	return base
}

func humanSize(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
