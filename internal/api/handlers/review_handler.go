package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	middleware "github.com/Bernard-Otieno/ai-doc-assistant/internal/api/middlewares"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/extraction"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/review"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/render"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/services"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/util"
)

// SuggestionsPath is where accept and reject requests are routed.
const SuggestionsPath = "/api/review/suggestions"

type ReviewHandler struct {
	store *review.Store
	docs  *services.DocumentService
}

func NewReviewHandler(store *review.Store, docs *services.DocumentService) *ReviewHandler {
	return &ReviewHandler{store: store, docs: docs}
}

// GetReview returns the session's current review: status, text, warning and
// segments with their decisions.
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}
	rev := h.store.Snapshot(sessionID)
	if rev.Segments == nil {
		rev.Segments = []models.Segment{}
	}
	util.WriteJSON(w, http.StatusOK, rev)
}

// ViewReview renders the suggestion panel as an HTML fragment.
func (h *ReviewHandler) ViewReview(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}
	html, err := render.PanelString(render.NewView(h.store.Snapshot(sessionID), SuggestionsPath))
	if err != nil {
		slog.Error("render panel", "session_id", sessionID, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// ImprovedText returns the document with accepted suggestions applied.
func (h *ReviewHandler) ImprovedText(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(review.Improved(h.store.Snapshot(sessionID))))
}

// Preview serves the visual preview of the current document: sanitized HTML
// for DOCX and text, the original bytes for PDF.
func (h *ReviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}
	rev := h.store.Snapshot(sessionID)
	if rev.DocumentID == "" {
		http.Error(w, "no document uploaded", http.StatusNotFound)
		return
	}
	if rev.PreviewHTML != "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(rev.PreviewHTML))
		return
	}
	if rev.Status == models.StatusLoading {
		http.Error(w, "preview not ready", http.StatusConflict)
		return
	}

	doc, err := h.docs.Get(r.Context(), sessionID, rev.DocumentID)
	if err != nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	data, err := h.docs.Original(r.Context(), doc)
	if err != nil {
		slog.Error("load original", "document_id", doc.ID, "error", err)
		http.Error(w, "preview unavailable", http.StatusInternalServerError)
		return
	}
	contentType := doc.ContentType
	if strings.HasPrefix(contentType, extraction.MimePDF) {
		contentType = extraction.MimePDF
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+strings.ReplaceAll(doc.FileName, `"`, "")+`"`)
	_, _ = w.Write(data)
}

func (h *ReviewHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.Accepted)
}

func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.Rejected)
}

func (h *ReviewHandler) decide(w http.ResponseWriter, r *http.Request, d models.Decision) {
	sessionID, ok := sessionOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid suggestion id", http.StatusBadRequest)
		return
	}

	seg, err := h.store.Decide(sessionID, id, d)
	if errors.Is(err, review.ErrSuggestionNotFound) {
		http.Error(w, "suggestion not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Forms posted from the rendered panel go back to the panel.
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, "/api/review/view", http.StatusSeeOther)
		return
	}
	util.WriteJSON(w, http.StatusOK, seg)
}

func sessionOrUnauthorized(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID, ok := middleware.SessionID(r.Context())
	if !ok {
		http.Error(w, "session not found in context", http.StatusUnauthorized)
	}
	return sessionID, ok
}
