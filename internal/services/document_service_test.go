package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core"
	db "github.com/Bernard-Otieno/ai-doc-assistant/internal/core/database"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/extraction"
	objectclient "github.com/Bernard-Otieno/ai-doc-assistant/internal/core/object-client"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
)

type recordingSubmitter struct {
	docs []models.Document
	err  error
}

func (r *recordingSubmitter) Submit(_ context.Context, doc models.Document) (uint64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.docs = append(r.docs, doc)
	return uint64(len(r.docs)), nil
}

func TestDocumentService_UploadAndCreate(t *testing.T) {
	ctx := context.Background()
	store := objectclient.NewMemoryStore()
	sub := &recordingSubmitter{}
	svc := NewDocumentService(db.NewMemoryClient(), store, sub)

	doc, gen, err := svc.UploadAndCreate(ctx, "s1", "../../my essay.docx", "application/octet-stream", []byte("PK.."))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, "my essay.docx", doc.FileName)
	assert.Equal(t, extraction.MimeDOCX, doc.ContentType)
	assert.Equal(t, models.DocumentUploaded, doc.Status)
	assert.Equal(t, int64(4), doc.SizeBytes)
	assert.Contains(t, doc.StorageKey, "sessions/s1/documents/")
	assert.Contains(t, doc.StorageKey, "my_essay.docx")

	data, err := svc.Original(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, "PK..", string(data))
	require.Len(t, sub.docs, 1)
	assert.Equal(t, doc.ID, sub.docs[0].ID)

	got, err := svc.Get(ctx, "s1", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)

	_, err = svc.Get(ctx, "s2", doc.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Get(ctx, "s1", "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)

	list, err := svc.ListBySession(ctx, "s2")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestDocumentService_SubmitFailure(t *testing.T) {
	svc := NewDocumentService(db.NewMemoryClient(), objectclient.NewMemoryStore(), &recordingSubmitter{err: errors.New("queue full")})
	_, _, err := svc.UploadAndCreate(context.Background(), "s1", "a.txt", "text/plain", []byte("x"))
	assert.ErrorContains(t, err, "queue full")
}

func TestResolveContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ResolveContentType("a.PDF", ""))
	assert.Equal(t, "text/plain; charset=utf-8", ResolveContentType("notes.txt", "application/octet-stream"))
	assert.Equal(t, "text/markdown", ResolveContentType("readme.md", "text/markdown"))
	assert.Equal(t, "application/octet-stream", ResolveContentType("blob", ""))
}
