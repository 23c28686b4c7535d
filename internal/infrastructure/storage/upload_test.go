package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vidtube-accounts/pkg/helpers"
)

type recordedPut struct {
	method, path, contentType string
}

type objectServer struct {
	mu   sync.Mutex
	puts []recordedPut
}

func (o *objectServer) record(r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.puts = append(o.puts, recordedPut{method: r.Method, path: r.URL.Path, contentType: r.Header.Get("Content-Type")})
}

func (o *objectServer) last(t *testing.T) recordedPut {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.puts)
	return o.puts[len(o.puts)-1]
}

func stagedPNG(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(p, []byte("\x89PNG\r\n\x1a\nfake-image"), 0o600))
	return p
}

func newTestS3(t *testing.T, h http.HandlerFunc) *S3 {
	t.Helper()
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client, err := helpers.NewS3Client(context.Background(), helpers.S3Options{
		Region:    "us-east-1",
		AccessKey: "test",
		SecretKey: "test",
		Endpoint:  srv.URL,
		PathStyle: true,
	})
	require.NoError(t, err)
	return NewS3(client, "media", "https://cdn.example/media")
}

func TestS3Upload(t *testing.T) {
	rec := &objectServer{}
	s := newTestS3(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.WriteHeader(http.StatusOK)
	})

	url, err := s.Upload(context.Background(), stagedPNG(t), "avatars")
	require.NoError(t, err)

	put := rec.last(t)
	require.Equal(t, http.MethodPut, put.method)
	require.True(t, strings.HasPrefix(put.path, "/media/avatars/"), put.path)
	require.True(t, strings.HasSuffix(put.path, ".png"), put.path)
	require.Equal(t, "image/png", put.contentType)
	require.Equal(t, "https://cdn.example"+put.path, url)
}

func TestS3UploadFailures(t *testing.T) {
	s := newTestS3(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
	})

	_, err := s.Upload(context.Background(), stagedPNG(t), "avatars")
	require.Error(t, err)

	_, err = s.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.png"), "avatars")
	require.Error(t, err)

	_, err = NewS3(nil, "media", "").Upload(context.Background(), stagedPNG(t), "avatars")
	require.Error(t, err)
}

func TestGCSUpload(t *testing.T) {
	rec := &objectServer{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"bucket": "media", "name": "uploaded"})
	}))
	t.Cleanup(srv.Close)
	t.Setenv("STORAGE_EMULATOR_HOST", strings.TrimPrefix(srv.URL, "http://"))

	client, err := storage.NewClient(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	g := NewGCS(client, "media")

	url, err := g.Upload(context.Background(), stagedPNG(t), "covers")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://storage.googleapis.com/media/covers/"), url)
	require.True(t, strings.HasSuffix(url, ".png"), url)

	put := rec.last(t)
	require.Equal(t, http.MethodPost, put.method)
	require.Equal(t, "/upload/storage/v1/b/media/o", put.path)
}

func TestGCSUploadNotConfigured(t *testing.T) {
	_, err := NewGCS(nil, "media").Upload(context.Background(), stagedPNG(t), "covers")
	require.Error(t, err)
}
