package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MockStore is an in-memory ObjectStore for tests. Failures can be injected
// per operation to exercise the best-effort cleanup paths.
type MockStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	counter  int
	FailNext error // returned by the next Upload or Delete, then cleared
	Deleted  []string
}

func NewMockStore() *MockStore {
	return &MockStore{objects: make(map[string][]byte)}
}

func (m *MockStore) Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	m.counter++
	url := fmt.Sprintf("https://mock.store/%s/%d-%s", folder, m.counter, filename)
	m.objects[url] = data
	return url, nil
}

func (m *MockStore) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return err
	}

	delete(m.objects, url)
	m.Deleted = append(m.Deleted, url)
	return nil
}

// Has reports whether an object is still stored.
func (m *MockStore) Has(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[url]
	return ok
}

// Count returns the number of stored objects.
func (m *MockStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
