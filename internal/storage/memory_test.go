package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoragePutOpenRemove(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage("http://cdn.local/")

	require.NoError(t, s.Put(ctx, "files", "pdfs/a b.pdf", strings.NewReader("%PDF-1.4"), 8, "application/pdf"))
	require.Equal(t, "http://cdn.local/files/pdfs/a%20b.pdf", s.URL("files", "pdfs/a b.pdf"))

	rc, err := s.Open(ctx, "files", "pdfs/a b.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, s.Remove(ctx, "files", "pdfs/a b.pdf"))
	_, err = s.Open(ctx, "files", "pdfs/a b.pdf")
	require.ErrorIs(t, err, ErrObjectNotFound)
}

func TestMemoryStorageRejectsShortBody(t *testing.T) {
	s := NewMemoryStorage("")
	err := s.Put(context.Background(), "b", "k", strings.NewReader("abc"), 10, "text/plain")
	require.Error(t, err)
	require.Zero(t, s.Len())
}
