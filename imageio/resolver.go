// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package imageio resolves image references to binary content for
// vision-capable model requests. A reference may be an absolute path, a
// path relative to the configured upload directories, an upload API path
// (/api/v1/upload/images/<name>), or an http(s) URL.
package imageio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/distillery/ai"
)

const uploadAPIPrefix = "/api/v1/upload/images/"

// mediaTypes maps file extensions to MIME types.
var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Resolver implements ai.ImageResolver over the local filesystem and HTTP.
type Resolver struct {
	uploadDirs []string
	client     *http.Client
	logger     *slog.Logger
}

var _ ai.ImageResolver = (*Resolver)(nil)

// Option configures a Resolver.
type Option func(*Resolver)

// WithUploadDirs sets the directories searched for relative references.
// Default is "uploads/images" then "uploads".
func WithUploadDirs(dirs ...string) Option {
	return func(r *Resolver) {
		r.uploadDirs = dirs
	}
}

// WithHTTPClient sets the client used for remote references.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewResolver creates a resolver with the given options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		uploadDirs: []string{filepath.Join("uploads", "images"), "uploads"},
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default().With("component", "image-resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the image bytes and media type for the reference.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*ai.ImageData, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return r.fetchRemote(ctx, ref)
	}

	path, err := r.locate(ref)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ai.ErrImageNotFound, ref, err)
	}

	r.logger.Debug("loaded image", "path", path, "bytes", len(data))
	return &ai.ImageData{Data: data, MediaType: MediaTypeForRef(ref)}, nil
}

// locate maps a local reference to an existing file path.
func (r *Resolver) locate(ref string) (string, error) {
	var candidates []string

	switch {
	case strings.HasPrefix(ref, uploadAPIPrefix):
		// Upload API path: look up the bare filename in the upload dirs.
		name := filepath.Base(strings.TrimPrefix(ref, uploadAPIPrefix))
		for _, dir := range r.uploadDirs {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	case filepath.IsAbs(ref):
		candidates = []string{ref}
	default:
		for _, dir := range r.uploadDirs {
			candidates = append(candidates, filepath.Join(dir, ref))
		}
		candidates = append(candidates, ref)
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	r.logger.Warn("image file not found", "ref", ref)
	return "", fmt.Errorf("%w: %s", ai.ErrImageNotFound, ref)
}

// fetchRemote downloads a remote image.
func (r *Resolver) fetchRemote(ctx context.Context, url string) (*ai.ImageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ai.ErrImageNotFound, url, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ai.ErrImageNotFound, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", ai.ErrImageNotFound, url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ai.ErrImageNotFound, url, err)
	}

	mediaType := resp.Header.Get("Content-Type")
	if mediaType == "" || !strings.HasPrefix(mediaType, "image/") {
		mediaType = MediaTypeForRef(url)
	}

	r.logger.Debug("fetched remote image", "url", url, "bytes", len(data))
	return &ai.ImageData{Data: data, MediaType: mediaType}, nil
}

// MediaTypeForRef determines the media type from a reference's extension.
// Unknown extensions default to image/jpeg.
func MediaTypeForRef(ref string) string {
	ext := strings.ToLower(filepath.Ext(ref))
	// Strip query strings from URL extensions
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}
	if mt, ok := mediaTypes[ext]; ok {
		return mt
	}
	return "image/jpeg"
}
