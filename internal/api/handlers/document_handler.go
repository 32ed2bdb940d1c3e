package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	middleware "github.com/Bernard-Otieno/ai-doc-assistant/internal/api/middlewares"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/services"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/util"
)

type DocumentHandler struct {
	docs     *services.DocumentService
	maxBytes int64
}

func NewDocumentHandler(docs *services.DocumentService, maxUploadMB int) *DocumentHandler {
	return &DocumentHandler{docs: docs, maxBytes: int64(maxUploadMB) << 20}
}

type uploadResponse struct {
	Document   *models.Document `json:"document"`
	Generation uint64           `json:"generation"`
}

// UploadDocument stores the file from the multipart field "file" and queues
// it for review. The review itself is fetched from /api/review.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionID(r.Context())
	if !ok {
		http.Error(w, "session not found in context", http.StatusUnauthorized)
		return
	}

	// room for the multipart envelope on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeBodyError(w, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	doc, gen, err := h.docs.UploadAndCreate(r.Context(), sessionID, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		slog.Error("upload failed", "session_id", sessionID, "file", header.Filename, "error", err)
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}

	slog.Info("document queued", "document_id", doc.ID, "session_id", sessionID, "content_type", doc.ContentType, "generation", gen)
	util.WriteJSON(w, http.StatusAccepted, uploadResponse{Document: doc, Generation: gen})
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionID(r.Context())
	if !ok {
		http.Error(w, "session not found in context", http.StatusUnauthorized)
		return
	}

	documents, err := h.docs.ListBySession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	util.WriteJSON(w, http.StatusOK, documents)
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, "invalid multipart body", http.StatusBadRequest)
}
