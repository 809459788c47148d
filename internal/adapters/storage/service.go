// Package storage hosts uploaded files and hands back durable URLs.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// FileHost stores blobs and returns URLs that stay valid after the request.
type FileHost interface {
	// Store writes data at key and returns its durable URL.
	Store(ctx context.Context, key, contentType string, data []byte) (string, error)
	// Delete removes the object at key. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
	// KeyFromURL recovers the key of a URL this host produced.
	KeyFromURL(url string) (string, bool)
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinIOPublicURL() string
	GetMinioBucketItemPhotos() string
	IsMinIOEnabled() bool
}

// ObjectKey builds a collision-free key under folder for fileName.
func ObjectKey(folder, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	base := sanitizeName(strings.TrimSuffix(path.Base(fileName), path.Ext(fileName)))
	if base == "" {
		base = "file"
	}
	return path.Join(folder, fmt.Sprintf("%s_%s%s", base, uuid.New().String()[:8], ext))
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	return b.String()
}

// MemoryHost keeps files in memory. Used for local runs without MinIO and
// in tests.
type MemoryHost struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
	fail    map[string]error
}

// NewMemoryHost creates an in-memory host serving URLs under baseURL.
func NewMemoryHost(baseURL string) *MemoryHost {
	return &MemoryHost{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
		fail:    make(map[string]error),
	}
}

// FailFor makes Store return err for keys containing fragment.
func (h *MemoryHost) FailFor(fragment string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fail[fragment] = err
}

func (h *MemoryHost) Store(_ context.Context, key, _ string, data []byte) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for fragment, err := range h.fail {
		if strings.Contains(key, fragment) {
			return "", err
		}
	}
	h.objects[key] = append([]byte(nil), data...)
	return h.baseURL + "/" + key, nil
}

func (h *MemoryHost) Delete(_ context.Context, key string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.objects, key)
	return nil
}

func (h *MemoryHost) KeyFromURL(url string) (string, bool) {
	return strings.CutPrefix(url, h.baseURL+"/")
}

// Has reports whether key is stored.
func (h *MemoryHost) Has(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.objects[key]
	return ok
}
