package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/extraction"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
)

// ErrForbidden is returned when a session asks for another session's document.
var ErrForbidden = errors.New("document belongs to another session")

// Submitter queues a stored document for review.
type Submitter interface {
	Submit(ctx context.Context, doc models.Document) (uint64, error)
}

type DocumentService struct {
	db        core.DbClient
	storage   core.ObjectClient
	submitter Submitter
	now       func() time.Time
}

func NewDocumentService(db core.DbClient, storage core.ObjectClient, submitter Submitter) *DocumentService {
	return &DocumentService{db: db, storage: storage, submitter: submitter, now: time.Now}
}

// UploadAndCreate stores the original bytes, records the document and queues
// it for review. It returns the generation the review will carry.
func (s *DocumentService) UploadAndCreate(ctx context.Context, sessionID, filename, contentType string, data []byte) (*models.Document, uint64, error) {
	docID := uuid.NewString()
	filename = filepath.Base(strings.TrimSpace(filename))
	contentType = ResolveContentType(filename, contentType)
	key := s.objectKey(sessionID, docID, filename)

	url, err := s.storage.UploadFile(ctx, key, data, contentType)
	if err != nil {
		return nil, 0, fmt.Errorf("store upload: %w", err)
	}

	now := s.now().UTC()
	doc := &models.Document{
		ID:          docID,
		SessionID:   sessionID,
		FileName:    filename,
		ContentType: contentType,
		StorageKey:  key,
		StorageURL:  url,
		SizeBytes:   int64(len(data)),
		Status:      models.DocumentUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.CreateDocument(ctx, doc); err != nil {
		_ = s.storage.DeleteFile(context.WithoutCancel(ctx), key)
		return nil, 0, fmt.Errorf("record document: %w", err)
	}

	gen, err := s.submitter.Submit(ctx, *doc)
	if err != nil {
		return nil, 0, err
	}
	return doc, gen, nil
}

// Get returns a document of the session.
func (s *DocumentService) Get(ctx context.Context, sessionID, id string) (*models.Document, error) {
	doc, err := s.db.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.SessionID != sessionID {
		return nil, ErrForbidden
	}
	return doc, nil
}

func (s *DocumentService) ListBySession(ctx context.Context, sessionID string) ([]models.Document, error) {
	docs, err := s.db.ListDocumentsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

// Original returns the uploaded bytes of a document.
func (s *DocumentService) Original(ctx context.Context, doc *models.Document) ([]byte, error) {
	return s.storage.GetFile(ctx, doc.StorageKey)
}

// objectKey creates a consistent storage key layout.
func (s *DocumentService) objectKey(sessionID, docID, filename string) string {
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("sessions", sessionID, "documents", docID, filename)
}

// ResolveContentType keeps a declared type unless it is missing or generic,
// in which case the file extension decides. Browsers often send
// application/octet-stream for .docx files.
func ResolveContentType(filename, declared string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extraction.MimePDF
	case ".docx":
		return extraction.MimeDOCX
	case ".txt", ".text":
		return "text/plain; charset=utf-8"
	}
	if declared == "" {
		return "application/octet-stream"
	}
	return declared
}
