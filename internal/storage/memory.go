package storage

import (
	"context"
	"strings"
	"sync"
)

type memoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryStore() BlobStore {
	return &memoryStore{objects: make(map[string]Object)}
}

func (s *memoryStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = Object{
		Key:         key,
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
	}
	return nil
}

func (s *memoryStore) Get(_ context.Context, key string) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	obj.Data = append([]byte(nil), obj.Data...)
	return &obj, nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	return nil
}

func (s *memoryStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			delete(s.objects, key)
		}
	}
	return nil
}
