// Package client talks to the scholarfolio HTTP API. It backs the
// scholarctl CLI and satisfies the form package's Saver and Uploader.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/scholarfolio/backend/internal/content"
	"github.com/scholarfolio/backend/internal/upload"
)

// APIError is a non-2xx response. Message comes from the body's "message"
// or "error" field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %s", http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// UserMessage is shown by the form package instead of its fallback text.
func (e *APIError) UserMessage() string { return e.Message }

type Client struct {
	base  string
	token string
	http  *http.Client
}

type Option func(*Client)

func WithToken(token string) Option { return func(c *Client) { c.token = token } }

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{base: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: 60 * time.Second}}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode/100 != 2 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(data, &body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	return &APIError{Status: status, Message: msg}
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	if in == nil {
		return c.do(ctx, method, path, "", nil, out)
	}
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, "application/json", bytes.NewReader(b), out)
}

// Resource is the typed API of one content collection.
type Resource[T content.Record, I any] struct {
	c    *Client
	path string
}

func (c *Client) Papers() *Resource[content.ResearchPaper, content.PaperInput] {
	return &Resource[content.ResearchPaper, content.PaperInput]{c: c, path: "/api/research-papers"}
}

func (c *Client) Posts() *Resource[content.BlogPost, content.PostInput] {
	return &Resource[content.BlogPost, content.PostInput]{c: c, path: "/api/blog-posts"}
}

func (c *Client) Teaching() *Resource[content.TeachingExperience, content.TeachingInput] {
	return &Resource[content.TeachingExperience, content.TeachingInput]{c: c, path: "/api/teaching-experiences"}
}

func (r *Resource[T, I]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.c.doJSON(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T, I]) Get(ctx context.Context, id string) (T, error) {
	var out T
	err := r.c.doJSON(ctx, http.MethodGet, r.path+"/"+id, nil, &out)
	return out, err
}

// Create returns the new record's id.
func (r *Resource[T, I]) Create(ctx context.Context, in I) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := r.c.doJSON(ctx, http.MethodPost, r.path, in, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (r *Resource[T, I]) Update(ctx context.Context, id string, in I) (T, error) {
	var out T
	err := r.c.doJSON(ctx, http.MethodPut, r.path+"/"+id, in, &out)
	return out, err
}

func (r *Resource[T, I]) Delete(ctx context.Context, id string) error {
	return r.c.doJSON(ctx, http.MethodDelete, r.path+"/"+id, nil, nil)
}

// Upload posts f to /api/uploads. A rejection by the server comes back as
// a Result with Success=false, not as an error.
func (c *Client) Upload(ctx context.Context, f upload.File, opts upload.Options) (upload.Result, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, f, opts))
	}()

	var res upload.Result
	err := c.do(ctx, http.MethodPost, "/api/uploads", mw.FormDataContentType(), pr, &res)
	pr.Close()
	var ae *APIError
	if errors.As(err, &ae) && ae.Status == http.StatusBadRequest {
		return upload.Result{Success: false, Error: ae.Message}, nil
	}
	if err != nil {
		return upload.Result{}, err
	}
	return res, nil
}

func writeUpload(mw *multipart.Writer, f upload.File, opts upload.Options) error {
	fields := map[string]string{
		"bucketName": opts.BucketName,
		"folderPath": opts.FolderPath,
		"accept":     strings.Join(opts.AllowedTypes, ","),
	}
	if opts.MaxFileSize > 0 {
		fields["maxFileSize"] = strconv.FormatInt(opts.MaxFileSize, 10)
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", f.Name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f.Body); err != nil {
		return err
	}
	return mw.Close()
}

// Revoke invalidates the client's own token on the server.
func (c *Client) Revoke(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/tokens/revoke", nil, nil)
}
