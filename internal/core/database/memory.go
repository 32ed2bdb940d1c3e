package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
)

// MemoryClient keeps document records in process memory. It backs the
// service when no DATABASE_URL is configured.
type MemoryClient struct {
	mu   sync.RWMutex
	docs map[string]models.Document
}

var _ core.DbClient = (*MemoryClient)(nil)

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{docs: make(map[string]models.Document)}
}

func (m *MemoryClient) CreateDocument(_ context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.ID]; ok {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	m.docs[doc.ID] = *doc
	return nil
}

func (m *MemoryClient) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, core.ErrNotFound)
	}
	return &d, nil
}

func (m *MemoryClient) ListDocumentsBySession(_ context.Context, sessionID string) ([]models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Document
	for _, d := range m.docs {
		if d.SessionID == sessionID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryClient) UpdateDocumentStatus(_ context.Context, id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, core.ErrNotFound)
	}
	d.Status = status
	d.UpdatedAt = time.Now().UTC()
	m.docs[id] = d
	return nil
}

func (m *MemoryClient) Close() error { return nil }
