package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/config"
	db "github.com/Bernard-Otieno/ai-doc-assistant/internal/core/database"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/extraction"
	objectclient "github.com/Bernard-Otieno/ai-doc-assistant/internal/core/object-client"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/pipeline"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/review"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/services"
)

// tehChecker flags every "Teh".
type tehChecker struct{}

func (tehChecker) Check(_ context.Context, text string) ([]models.Match, error) {
	var out []models.Match
	for i := 0; ; {
		j := strings.Index(text[i:], "Teh")
		if j < 0 {
			return out, nil
		}
		out = append(out, models.Match{Offset: i + j, Length: 3, Replacement: "The", Message: "Possible spelling mistake found."})
		i += j + 3
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Defaults()
	cfg.JWTSecret = "test-secret"
	cfg.MaxUploadMB = 1
	cfg.WebDir = ""

	store := review.NewStore()
	dbClient := db.NewMemoryClient()
	obj := objectclient.NewMemoryStore()
	proc := pipeline.NewProcessor(dbClient, obj, extraction.NewExtractor(extraction.NewPdfcpuPages()), tehChecker{}, store,
		pipeline.Settings{MaxCharWarning: cfg.MaxCharWarning}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	proc.Start(ctx, 2)

	return NewRouter(cfg, store, services.NewDocumentService(dbClient, obj, proc))
}

func do(t *testing.T, h http.Handler, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/session", "", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var out struct {
		Token     string `json:"token"`
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	require.NotEmpty(t, out.SessionID)
	return out.Token
}

func uploadBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func waitReady(t *testing.T, h http.Handler, token string) models.Review {
	t.Helper()
	var rev models.Review
	require.Eventually(t, func() bool {
		rec := do(t, h, http.MethodGet, "/api/review", token, nil, "")
		if rec.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &rev); err != nil {
			return false
		}
		return rev.Status == models.StatusReady || rev.Status == models.StatusError
	}, 5*time.Second, 10*time.Millisecond)
	return rev
}

func TestHealthAndOpenAPI(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"ai-doc-assistant"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/openapi.json", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, json.Valid(rec.Body.Bytes()), "openapi document is valid JSON")
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{"/api/review", "/api/documents", "/api/review/view"} {
		rec := do(t, h, http.MethodGet, path, "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestReviewBeforeUploadIsIdle(t *testing.T) {
	h := newTestRouter(t)
	token := newSession(t, h)

	rec := do(t, h, http.MethodGet, "/api/review", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"idle"`)
	assert.Contains(t, rec.Body.String(), `"segments":[]`)

	rec = do(t, h, http.MethodGet, "/api/review/preview", token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadReviewAndDecide(t *testing.T) {
	h := newTestRouter(t)
	token := newSession(t, h)

	body, ct := uploadBody(t, "essay.txt", "text/plain", []byte("Teh cat sat.\r\nA <b>bold</b> claim & more."))
	rec := do(t, h, http.MethodPost, "/api/documents/upload", token, body, ct)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"generation":1`)

	rev := waitReady(t, h, token)
	assert.Equal(t, models.StatusReady, rev.Status)
	assert.Equal(t, "Teh cat sat.\nA <b>bold</b> claim & more.", rev.Text)
	require.Len(t, rev.Segments, 3)
	assert.Equal(t, models.Undecided, rev.Segments[1].Decision)

	rec = do(t, h, http.MethodPost, "/api/review/suggestions/0/accept", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"decision":"accepted"`)

	rec = do(t, h, http.MethodGet, "/api/review/improved", token, nil, "")
	assert.Equal(t, "The cat sat.\nA <b>bold</b> claim & more.", rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/review/suggestions/0/reject", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/review/improved", token, nil, "")
	assert.Equal(t, "Teh cat sat.\nA <b>bold</b> claim & more.", rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/review/suggestions/7/accept", token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/review/suggestions/first/accept", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/review/view", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="rejected"`)
	assert.Contains(t, rec.Body.String(), "&lt;b&gt;bold&lt;/b&gt;")

	rec = do(t, h, http.MethodGet, "/api/review/preview", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<pre class="plain">`)

	rec = do(t, h, http.MethodGet, "/api/documents", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "essay.txt", docs[0].FileName)
}

func TestSessionsAreIsolated(t *testing.T) {
	h := newTestRouter(t)
	alice := newSession(t, h)
	bob := newSession(t, h)

	body, ct := uploadBody(t, "a.txt", "text/plain", []byte("Teh one"))
	require.Equal(t, http.StatusAccepted, do(t, h, http.MethodPost, "/api/documents/upload", alice, body, ct).Code)
	waitReady(t, h, alice)

	rec := do(t, h, http.MethodPost, "/api/review/suggestions/0/accept", bob, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/documents", bob, nil, "")
	assert.Equal(t, "[]", rec.Body.String())
}

func TestDecisionFromPanelFormRedirects(t *testing.T) {
	h := newTestRouter(t)
	token := newSession(t, h)

	body, ct := uploadBody(t, "a.txt", "text/plain", []byte("Teh one"))
	require.Equal(t, http.StatusAccepted, do(t, h, http.MethodPost, "/api/documents/upload", token, body, ct).Code)
	waitReady(t, h, token)

	req := httptest.NewRequest(http.MethodPost, "/api/review/suggestions/0/accept", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/api/review/view", rec.Header().Get("Location"))
}

func TestUploadTooLarge(t *testing.T) {
	h := newTestRouter(t)
	token := newSession(t, h)

	body, ct := uploadBody(t, "big.txt", "text/plain", bytes.Repeat([]byte("a"), 1<<20+1))
	rec := do(t, h, http.MethodPost, "/api/documents/upload", token, body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadWithoutFile(t *testing.T) {
	h := newTestRouter(t)
	token := newSession(t, h)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())
	rec := do(t, h, http.MethodPost, "/api/documents/upload", token, &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
