// AngelaMos | 2026
// handler_test.go

package upload_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/riff/internal/config"
	"github.com/carterperez-dev/riff/internal/upload"
)

var pngHeader = []byte{
	0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func passThrough(next http.Handler) http.Handler {
	return next
}

func newRouter(t *testing.T, maxBytes int64) (http.Handler, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := upload.NewStore(config.UploadConfig{
		Dir:       dir,
		MaxBytes:  maxBytes,
		PublicURL: "/uploads/images",
	})
	require.NoError(t, err)

	h := upload.NewHandler(store)
	r := chi.NewRouter()
	h.RegisterRoutes(r, passThrough)
	r.Handle("/uploads/images/*", h.FileServer("/uploads/images/"))

	return r, dir
}

func post(t *testing.T, router http.Handler, field, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUploadImage(t *testing.T) {
	router, dir := newRouter(t, 5<<20)

	rec := post(t, router, "file", "photo.txt", pngHeader)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Success bool   `json:"success"`
		URL     string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.True(t, strings.HasPrefix(body.URL, "/uploads/images/"))
	assert.True(t, strings.HasSuffix(body.URL, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, filepath.Base(body.URL)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	get := httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, body.URL, nil))
	assert.Equal(t, http.StatusOK, get.Code)
}

func TestUploadDirectoryIsNotListed(t *testing.T) {
	router, dir := newRouter(t, 5<<20)

	rec := post(t, router, "file", "photo.png", pngHeader)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o750))

	for _, path := range []string{
		"/uploads/images/",
		"/uploads/images/nested/",
	} {
		get := httptest.NewRecorder()
		router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, get.Code, path)
		assert.NotContains(t, get.Body.String(), ".png", path)
	}
}

func TestUploadRejections(t *testing.T) {
	router, dir := newRouter(t, 64)

	tests := []struct {
		name  string
		field string
		data  []byte
		want  string
	}{
		{
			name:  "missing file field",
			field: "image",
			data:  pngHeader,
			want:  "No file provided",
		},
		{
			name:  "disguised text",
			field: "file",
			data:  []byte("<html><body>not an image</body></html>"),
			want:  "Invalid file type. Only JPEG, PNG, GIF, and WebP are allowed",
		},
		{
			name:  "oversize",
			field: "file",
			data:  append(append([]byte{}, pngHeader...), make([]byte, 64)...),
			want:  "File size too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, router, tt.field, "image.png", tt.data)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
