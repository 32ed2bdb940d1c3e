package objectclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core"
)

// MemoryStore keeps uploads in process memory. It is used when no S3
// credentials are configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ core.ObjectClient = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) UploadFile(_ context.Context, key string, data []byte, _ string) (string, error) {
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[key] = buf
	m.mu.Unlock()
	return "memory://" + key, nil
}

func (m *MemoryStore) DeleteFile(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetFile(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, core.ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
