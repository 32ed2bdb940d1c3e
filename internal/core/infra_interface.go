package core

import (
	"context"
	"errors"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
)

// ErrNotFound is returned by storage lookups that match nothing.
var ErrNotFound = errors.New("not found")

// DbClient records uploaded documents. Implementations exist for Postgres and
// for process memory.
type DbClient interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsBySession(ctx context.Context, sessionID string) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status string) error

	Close() error
}

// ObjectClient keeps the original bytes of uploads. The bucket is fixed when
// the client is built.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, key string) error
	GetFile(ctx context.Context, key string) ([]byte, error)
}
