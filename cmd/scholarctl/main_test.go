package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scholarfolio/backend/handlers"
	"github.com/scholarfolio/backend/internal/content"
	"github.com/scholarfolio/backend/internal/content/handler"
	"github.com/scholarfolio/backend/internal/content/service"
	"github.com/scholarfolio/backend/internal/storage"
	"github.com/scholarfolio/backend/internal/tokens"
	"github.com/scholarfolio/backend/internal/upload"
	"github.com/stretchr/testify/require"
)

const secret = "cli-test-secret-32-bytes-long-xxxxxxx"

func startServer(t *testing.T) string {
	t.Helper()
	r := handlers.NewRouter(handlers.RouterDeps{
		Content: handler.Services{
			Papers:   service.NewMemory[content.ResearchPaper, content.PaperInput](),
			Posts:    service.NewMemory[content.BlogPost, content.PostInput](),
			Teaching: service.NewMemory[content.TeachingExperience, content.TeachingInput](),
		},
		Uploader: upload.NewUploader(storage.NewMemoryStorage("http://cdn.local"), upload.Options{
			BucketName: "files", FolderPath: "pdfs", MaxFileSize: 20 << 20, AllowedTypes: []string{"application/pdf"},
		}),
		Verifier:     tokens.NewHMACVerifier(secret),
		DefaultOwner: "site-owner",
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestMintAndManagePapers(t *testing.T) {
	api := startServer(t)
	tok, _, err := run(t, "token", "mint", "--secret", secret, "--sub", "site-owner")
	require.NoError(t, err)
	tok = strings.TrimSpace(tok)
	require.Len(t, strings.Split(tok, "."), 3)

	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "paper.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n"), 0o600))

	out, notes, err := run(t, "--api", api, "--token", tok, "papers", "add", "--title", "Lattices", "--abstract", "On lattices", "--published-at", "2024-01-02", "--pdf", pdfPath)
	require.NoError(t, err, notes)
	id := strings.TrimSpace(out)
	require.Len(t, id, 24)
	require.Contains(t, notes, "PDF uploaded successfully!")
	require.Contains(t, notes, "Research paper saved successfully!")

	_, _, err = run(t, "--api", api, "--token", tok, "papers", "edit", id, "--title", "Lattices, revised")
	require.NoError(t, err)

	out, _, err = run(t, "--api", api, "papers", "get", id)
	require.NoError(t, err)
	var p content.ResearchPaper
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	require.Equal(t, "Lattices, revised", p.Title)
	require.Equal(t, "On lattices", p.Abstract)
	require.True(t, strings.HasPrefix(p.PDFURL, "http://cdn.local/files/pdfs/"))

	_, _, err = run(t, "--api", api, "--token", tok, "papers", "delete", id)
	require.NoError(t, err)
	_, _, err = run(t, "--api", api, "--token", tok, "papers", "delete", id)
	require.Error(t, err)
}

func TestAddRequiresFieldsWithoutCallingServer(t *testing.T) {
	_, notes, err := run(t, "--api", "http://127.0.0.1:1", "teaching", "add", "--subject", "Logic")
	require.Error(t, err)
	require.Contains(t, notes, "Subject, institution, and start date are required")
}

func TestWriteWithoutTokenIsRejected(t *testing.T) {
	api := startServer(t)
	_, notes, err := run(t, "--api", api, "posts", "add", "--title", "Hi", "--content", "There")
	require.Error(t, err)
	require.Contains(t, notes, "missing Authorization header")
}

func TestFlagName(t *testing.T) {
	require.Equal(t, "published-at", flagName("publishedAt"))
	require.Equal(t, "cover-image-url", flagName("coverImageUrl"))
	require.Equal(t, "title", flagName("title"))
}
