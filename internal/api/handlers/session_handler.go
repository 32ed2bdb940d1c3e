package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	middleware "github.com/Bernard-Otieno/ai-doc-assistant/internal/api/middlewares"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/util"
)

type SessionHandler struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionHandler(secret []byte, ttl time.Duration) *SessionHandler {
	return &SessionHandler{secret: secret, ttl: ttl}
}

type sessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateSession starts an anonymous reviewing session. The token is returned
// in the body and also set as a cookie for the server-rendered panel.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.NewString()
	token, err := middleware.IssueToken(h.secret, sessionID, h.ttl)
	if err != nil {
		slog.Error("sign session token", "error", err)
		http.Error(w, "could not create session", http.StatusInternalServerError)
		return
	}
	expires := time.Now().Add(h.ttl).UTC()

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	util.WriteJSON(w, http.StatusCreated, sessionResponse{Token: token, SessionID: sessionID, ExpiresAt: expires})
}
