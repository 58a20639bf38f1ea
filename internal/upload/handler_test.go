package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, fields map[string]string, filename string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadHandler(t *testing.T) {
	u, store := newTestUploader()
	g := gin.New()
	RegisterRoutes(g, u)

	w := httptest.NewRecorder()
	g.ServeHTTP(w, multipartRequest(t, map[string]string{"bucketName": "files", "folderPath": "pdfs", "accept": "application/pdf"}, "paper.pdf", pdfBody))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Success)
	require.Equal(t, "http://cdn.local/files/pdfs/fixed-paper.pdf", res.URL)
	require.Equal(t, 1, store.Len())
}

func TestUploadHandlerRejections(t *testing.T) {
	u, store := newTestUploader()
	g := gin.New()
	RegisterRoutes(g, u)

	cases := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"no file", multipartRequest(t, nil, "", nil), http.StatusBadRequest},
		{"unknown bucket", multipartRequest(t, map[string]string{"bucketName": "other"}, "a.pdf", pdfBody), http.StatusBadRequest},
		{"bad size", multipartRequest(t, map[string]string{"maxFileSize": "abc"}, "a.pdf", pdfBody), http.StatusBadRequest},
		{"wrong type", multipartRequest(t, map[string]string{"accept": "application/pdf"}, "a.pdf", []byte("plain text")), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			g.ServeHTTP(w, tc.req)
			require.Equal(t, tc.status, w.Code)
			var res Result
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			require.False(t, res.Success)
			require.NotEmpty(t, res.Error)
		})
	}
	require.Zero(t, store.Len())
}
