package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrBlobTooLarge = errors.New("blob exceeds size limit")
	ErrEmptyBlob    = errors.New("blob is empty")
)

// URLPrefix is the path under which blobs are served.
const URLPrefix = "/api/blobs/"

// Blob is an attachment held in memory for the lifetime of the process.
type Blob struct {
	ID          string
	Name        string
	ContentType string
	Data        []byte
}

// URL is the address clients use to fetch the blob.
func (b Blob) URL() string {
	return URLPrefix + b.ID
}

// BlobStore keeps uploaded files and recordings addressable by URL, the way a
// browser object URL would. Nothing survives a restart.
type BlobStore struct {
	mu       sync.RWMutex
	blobs    map[string]Blob
	maxBytes int64
}

// NewBlobStore caps each blob at maxBytes; zero or less means unlimited.
func NewBlobStore(maxBytes int64) *BlobStore {
	return &BlobStore{blobs: make(map[string]Blob), maxBytes: maxBytes}
}

// Put reads r fully and stores it under a new id.
func (s *BlobStore) Put(name, contentType string, r io.Reader) (Blob, error) {
	reader := r
	if s.maxBytes > 0 {
		reader = io.LimitReader(r, s.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return Blob{}, fmt.Errorf("read blob: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return Blob{}, ErrBlobTooLarge
	}
	if len(data) == 0 {
		return Blob{}, ErrEmptyBlob
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	blob := Blob{
		ID:          uuid.NewString(),
		Name:        name,
		ContentType: contentType,
		Data:        data,
	}

	s.mu.Lock()
	s.blobs[blob.ID] = blob
	s.mu.Unlock()
	return blob, nil
}

// Get looks a blob up by id.
func (s *BlobStore) Get(id string) (Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[id]
	if !ok {
		return Blob{}, ErrBlobNotFound
	}
	return blob, nil
}

// Resolve maps a blob URL back to its blob.
func (s *BlobStore) Resolve(url string) (Blob, error) {
	id, ok := strings.CutPrefix(url, URLPrefix)
	if !ok {
		return Blob{}, ErrBlobNotFound
	}
	return s.Get(id)
}

// IsImage reports whether the attachment should render inline as a picture.
func IsImage(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
