package storage

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/procurement/backend/internal/application/port"
)

var _ port.ObjectStorage = (*MemoryObjectStorage)(nil)

// MemoryObjectStorage keeps objects in process memory. The server uses it
// when no bucket is configured; download URLs point at BaseURL.
type MemoryObjectStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryObjectStorage creates an empty in-memory store
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/files"
	}
	return &MemoryObjectStorage{BaseURL: baseURL, objects: make(map[string]memoryObject)}
}

// Upload stores a copy of data
func (s *MemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

// GenerateDownloadURL returns a URL for an uploaded object
func (s *MemoryObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	s.mu.RLock()
	_, ok := s.objects[storageKey]
	s.mu.RUnlock()
	if !ok {
		return "", time.Time{}, errors.New("object not found: " + storageKey)
	}

	expiresAt := time.Now().Add(expiresIn)
	u := s.BaseURL + "/" + (&url.URL{Path: storageKey}).EscapedPath() + "?expires=" + url.QueryEscape(expiresAt.Format(time.RFC3339))
	return u, expiresAt, nil
}

// Get returns an uploaded object
func (s *MemoryObjectStorage) Get(storageKey string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	return obj.data, obj.contentType, ok
}
