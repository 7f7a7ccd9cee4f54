package files

import (
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/smartlearn/core/classroom"
)

const urlPrefix = "blob:smartlearn/"

var ErrNotFound = errors.New("file not found")

// Blob is a stored upload.
type Blob struct {
	Name        string
	ContentType string
	Content     []byte
}

// Registry hands out session-scoped URLs for uploaded files. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

var _ classroom.FileStore = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{blobs: make(map[string]Blob)}
}

// Put stores f and returns its URL. The content type is sniffed when f has none.
func (r *Registry) Put(f classroom.File) (string, string, error) {
	if len(f.Content) == 0 {
		return "", "", errors.New("empty file")
	}
	ct := strings.TrimSpace(f.Type)
	if ct == "" {
		ct = mimetype.Detect(f.Content).String()
	}

	url := urlPrefix + uuid.NewString()
	r.mu.Lock()
	r.blobs[url] = Blob{
		Name:        f.Name,
		ContentType: ct,
		Content:     append([]byte(nil), f.Content...),
	}
	r.mu.Unlock()
	return url, ct, nil
}

func (r *Registry) Open(url string) (Blob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[url]
	if !ok {
		return Blob{}, ErrNotFound
	}
	return b, nil
}

// Release frees the blob behind url. Unknown URLs are ignored.
func (r *Registry) Release(url string) {
	r.mu.Lock()
	delete(r.blobs, url)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}
