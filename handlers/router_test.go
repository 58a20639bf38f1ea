package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/scholarfolio/backend/internal/content"
	"github.com/scholarfolio/backend/internal/content/handler"
	"github.com/scholarfolio/backend/internal/content/service"
	"github.com/scholarfolio/backend/internal/revocation"
	"github.com/scholarfolio/backend/internal/storage"
	"github.com/scholarfolio/backend/internal/tokens"
	"github.com/scholarfolio/backend/internal/upload"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "router-test-secret-32-bytes-xxxxxxxx"
	siteOwner  = "67ed468b5b281d81f91a0a78"
)

func memoryServices() handler.Services {
	return handler.Services{
		Papers:   service.NewMemory[content.ResearchPaper, content.PaperInput](),
		Posts:    service.NewMemory[content.BlogPost, content.PostInput](),
		Teaching: service.NewMemory[content.TeachingExperience, content.TeachingInput](),
	}
}

func newTestRouter(checks ...Check) http.Handler {
	up := upload.NewUploader(storage.NewMemoryStorage("http://cdn.local"), upload.Options{
		BucketName: "files", FolderPath: "pdfs", MaxFileSize: 20 << 20, AllowedTypes: []string{"application/pdf"},
	})
	return NewRouter(RouterDeps{
		Content:      memoryServices(),
		Uploader:     up,
		Verifier:     tokens.NewHMACVerifier(testSecret),
		DefaultOwner: siteOwner,
		Checks:       checks,
	})
}

func send(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestWritesRequireToken(t *testing.T) {
	h := newTestRouter()
	w := send(h, http.MethodPost, "/api/research-papers", "", `{"title":"T","abstract":"A"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	tok, err := tokens.GenerateAccessToken(testSecret, siteOwner, time.Minute)
	require.NoError(t, err)
	w = send(h, http.MethodPost, "/api/research-papers", tok, `{"title":"T","abstract":"A"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// public read sees the owner's record
	w = send(h, http.MethodGet, "/api/research-papers", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, siteOwner, list[0]["userId"])
}

func TestMe(t *testing.T) {
	h := newTestRouter()
	require.Equal(t, http.StatusUnauthorized, send(h, http.MethodGet, "/api/me", "", "").Code)

	tok, err := tokens.GenerateAccessToken(testSecret, siteOwner, time.Minute)
	require.NoError(t, err)
	w := send(h, http.MethodGet, "/api/me", tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	var me map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	require.Equal(t, siteOwner, me["sub"])
	require.Equal(t, siteOwner, me["owner"])
}

func TestOwnerScopingHidesOtherOwners(t *testing.T) {
	h := newTestRouter()
	tok, err := tokens.GenerateAccessToken(testSecret, "someone-else", time.Minute)
	require.NoError(t, err)
	w := send(h, http.MethodPost, "/api/blog-posts", tok, `{"title":"Mine","content":"x"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = send(h, http.MethodGet, "/api/blog-posts", "", "")
	require.JSONEq(t, `[]`, w.Body.String())
	w = send(h, http.MethodGet, "/api/blog-posts/"+created["id"], "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminSubjectWritesAsSiteOwner(t *testing.T) {
	h := NewRouter(RouterDeps{
		Content:       memoryServices(),
		Verifier:      tokens.NewHMACVerifier(testSecret),
		DefaultOwner:  siteOwner,
		AdminSubjects: []string{"kc-admin"},
	})
	tok, err := tokens.GenerateAccessToken(testSecret, "kc-admin", time.Minute)
	require.NoError(t, err)
	w := send(h, http.MethodPost, "/api/blog-posts", tok, `{"title":"Hello","content":"x"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = send(h, http.MethodGet, "/api/blog-posts", "", "")
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, siteOwner, list[0]["userId"])
}

func TestHealthAndReady(t *testing.T) {
	down := errors.New("down")
	ok := newTestRouter(Check{Name: "store", Ping: func(context.Context) error { return nil }})
	require.Equal(t, http.StatusOK, send(ok, http.MethodGet, "/health", "", "").Code)
	w := send(ok, http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"store":true`)

	bad := newTestRouter(Check{Name: "store", Ping: func(context.Context) error { return down }})
	w = send(bad, http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "not_ready")
}

func TestRevokeToken(t *testing.T) {
	h := newTestRouter()
	tok, err := tokens.GenerateAccessToken(testSecret, siteOwner, time.Minute)
	require.NoError(t, err)

	revocation.SetClient(nil)
	require.Equal(t, http.StatusServiceUnavailable, send(h, http.MethodPost, "/api/tokens/revoke", tok, "").Code)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	revocation.SetClient(rc)
	t.Cleanup(func() { revocation.SetClient(nil) })

	require.Equal(t, http.StatusOK, send(h, http.MethodPost, "/api/tokens/revoke", tok, "").Code)
	w := send(h, http.MethodDelete, "/api/research-papers/000000000000000000000000", tok, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "token revoked")
}

func TestCORSPreflight(t *testing.T) {
	h := WithCORS(newTestRouter(), []string{"http://admin.local"})
	req := httptest.NewRequest(http.MethodOptions, "/api/research-papers", nil)
	req.Header.Set("Origin", "http://admin.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	// browsers send the lowercase, comma-only form
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, "http://admin.local", w.Header().Get("Access-Control-Allow-Origin"))
	require.Less(t, w.Code, 300)
}
