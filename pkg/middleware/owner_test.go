package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestOwnerMiddleware(t *testing.T) {
	g := gin.New()
	ver := &fakeVerifier{good: "tok", sub: "admin-sub"}
	show := func(c *gin.Context) { c.String(http.StatusOK, OwnerFrom(c)) }
	g.GET("/public", OwnerMiddleware("site-owner"), show)
	g.GET("/private", AuthMiddleware(ver), OwnerMiddleware("site-owner"), show)

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	require.Equal(t, "site-owner", w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer tok")
	g.ServeHTTP(w, req)
	require.Equal(t, "admin-sub", w.Body.String())
}

func TestOwnerMiddlewareMapsAdminSubject(t *testing.T) {
	g := gin.New()
	show := func(c *gin.Context) { c.String(http.StatusOK, OwnerFrom(c)) }
	g.GET("/admin", AuthMiddleware(&fakeVerifier{good: "tok", sub: "admin-sub"}), OwnerMiddleware("site-owner", "admin-sub"), show)
	g.GET("/other", AuthMiddleware(&fakeVerifier{good: "tok", sub: "guest-sub"}), OwnerMiddleware("site-owner", "admin-sub"), show)

	for path, want := range map[string]string{"/admin": "site-owner", "/other": "guest-sub"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer tok")
		g.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, want, w.Body.String())
	}
}
