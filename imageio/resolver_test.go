package imageio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/distillery/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaTypeForRef(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"shot.png", "image/png"},
		{"photo.JPG", "image/jpeg"},
		{"anim.gif", "image/gif"},
		{"pic.webp", "image/webp"},
		{"unknown.bin", "image/jpeg"},
		{"noext", "image/jpeg"},
		{"https://example.com/a.png", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, MediaTypeForRef(tt.ref))
		})
	}
}

func TestResolver_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0644))

	r := NewResolver()
	img, err := r.Resolve(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []byte("png-bytes"), img.Data)
	assert.Equal(t, "image/png", img.MediaType)
}

func TestResolver_RelativeToUploadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shot.jpg"), []byte("jpg-bytes"), 0644))

	r := NewResolver(WithUploadDirs(dir))
	img, err := r.Resolve(context.Background(), "shot.jpg")
	require.NoError(t, err)

	assert.Equal(t, []byte("jpg-bytes"), img.Data)
	assert.Equal(t, "image/jpeg", img.MediaType)
}

func TestResolver_UploadAPIPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shot.webp"), []byte("webp-bytes"), 0644))

	r := NewResolver(WithUploadDirs(dir))
	img, err := r.Resolve(context.Background(), "/api/v1/upload/images/shot.webp")
	require.NoError(t, err)

	assert.Equal(t, []byte("webp-bytes"), img.Data)
	assert.Equal(t, "image/webp", img.MediaType)
}

func TestResolver_NotFound(t *testing.T) {
	r := NewResolver(WithUploadDirs(t.TempDir()))

	_, err := r.Resolve(context.Background(), "missing.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ai.ErrImageNotFound))
}

func TestResolver_RemoteURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("remote-bytes"))
	}))
	defer server.Close()

	r := NewResolver(WithHTTPClient(server.Client()))
	img, err := r.Resolve(context.Background(), server.URL+"/shot.png")
	require.NoError(t, err)

	assert.Equal(t, []byte("remote-bytes"), img.Data)
	assert.Equal(t, "image/png", img.MediaType)
}

func TestResolver_RemoteErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	r := NewResolver(WithHTTPClient(server.Client()))
	_, err := r.Resolve(context.Background(), server.URL+"/gone.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ai.ErrImageNotFound))
}
