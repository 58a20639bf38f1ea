package upload

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/scholarfolio/backend/internal/storage"
	"github.com/stretchr/testify/require"
)

var pdfBody = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func newTestUploader() (*Uploader, *storage.MemoryStorage) {
	store := storage.NewMemoryStorage("http://cdn.local")
	u := NewUploader(store, Options{
		BucketName:   "files",
		FolderPath:   "pdfs",
		MaxFileSize:  1024,
		AllowedTypes: []string{"application/pdf", "image/png"},
	})
	u.newID = func() string { return "fixed" }
	return u, store
}

func TestUploadStoresPDF(t *testing.T) {
	u, store := newTestUploader()
	res, err := u.Upload(context.Background(), File{Name: "My Paper (final).pdf", Size: int64(len(pdfBody)), Body: bytes.NewReader(pdfBody)}, Options{})
	require.NoError(t, err)
	require.True(t, res.Success, res.Error)
	require.Equal(t, "pdfs/fixed-My-Paper-final-.pdf", res.Key)
	require.Equal(t, "http://cdn.local/files/pdfs/fixed-My-Paper-final-.pdf", res.URL)

	obj, ok := store.Get("files", res.Key)
	require.True(t, ok)
	require.Equal(t, pdfBody, obj.Data)
	require.Equal(t, "application/pdf", obj.ContentType)
}

func TestUploadRejectsSniffedType(t *testing.T) {
	u, store := newTestUploader()
	body := "just some text pretending to be a pdf"
	res, err := u.Upload(context.Background(), File{Name: "fake.pdf", Size: int64(len(body)), Body: strings.NewReader(body)}, Options{AllowedTypes: []string{"application/pdf"}})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Contains(t, res.Error, "not allowed")
	require.Zero(t, store.Len())
}

func TestUploadRejectsOversize(t *testing.T) {
	u, _ := newTestUploader()
	res, err := u.Upload(context.Background(), File{Name: "big.pdf", Size: 4096, Body: bytes.NewReader(make([]byte, 4096))}, Options{})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "File size exceeds the 1024 bytes limit", res.Error)

	// a caller cannot raise the server limit
	res, _ = u.Upload(context.Background(), File{Name: "big.pdf", Size: 4096, Body: bytes.NewReader(make([]byte, 4096))}, Options{MaxFileSize: 1 << 30})
	require.False(t, res.Success)
}

func TestUploadRejectsEmptyAndBadFolder(t *testing.T) {
	u, _ := newTestUploader()
	res, err := u.Upload(context.Background(), File{Name: "a.pdf", Size: 0, Body: bytes.NewReader(nil)}, Options{})
	require.NoError(t, err)
	require.Equal(t, "File is empty", res.Error)

	res, err = u.Upload(context.Background(), File{Name: "a.pdf", Size: int64(len(pdfBody)), Body: bytes.NewReader(pdfBody)}, Options{FolderPath: "../etc"})
	require.NoError(t, err)
	require.Equal(t, "Invalid folder path", res.Error)
}

func TestUploadCallerTypesMustOverlapServerTypes(t *testing.T) {
	u, _ := newTestUploader()
	res, err := u.Upload(context.Background(), File{Name: "a.pdf", Size: int64(len(pdfBody)), Body: bytes.NewReader(pdfBody)}, Options{AllowedTypes: []string{"video/mp4"}})
	require.NoError(t, err)
	require.False(t, res.Success)
}
