package services

import (
	"context"
	"sync"
)

// MockS3Service is an in-memory S3Interface for tests and local runs without a bucket
type MockS3Service struct {
	objects map[string][]byte
	mu      sync.RWMutex
	err     error
}

func NewMockS3Service() *MockS3Service {
	return &MockS3Service{objects: make(map[string][]byte)}
}

// FailWith makes every later PutObject return err
func (m *MockS3Service) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *MockS3Service) PutObject(_ context.Context, key string, body []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.objects[key] = append([]byte(nil), body...)
	return nil
}

// Objects returns a copy of everything stored
func (m *MockS3Service) Objects() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	objects := make(map[string][]byte, len(m.objects))
	for k, v := range m.objects {
		objects[k] = v
	}
	return objects
}
