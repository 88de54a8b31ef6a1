package s3mock

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/aakumar2208/tamil-movies-scraper/internal/model"
)

// S3Storage keeps archived pages in memory. It stands in for the bucket when
// none is configured.
type S3Storage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func New() *S3Storage {
	return &S3Storage{objects: make(map[string][]byte)}
}

func (s *S3Storage) Save(ctx context.Context, obj model.FileObject) (string, error) {
	key := path.Join(obj.GetParent(), obj.GetFilename())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), obj.GetContent()...)
	return key, nil
}

func (s *S3Storage) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, model.ErrNotFound)
	}
	return data, nil
}

func (s *S3Storage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}
