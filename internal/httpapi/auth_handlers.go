package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"chatdesk.org/internal/audit"
	"chatdesk.org/internal/directory"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionRequest struct {
	IDToken   string `json:"idToken"`
	ExpiresIn int64  `json:"expiresIn,omitempty"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	token, err := a.identity.SignIn(r.Context(), email, req.Password)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}

	// The profile must exist before any cookie is issued; a provider account
	// without a directory row cannot hold a session.
	profile, err := a.users.GetByID(r.Context(), token.UID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			writeError(w, r, http.StatusForbidden, "account has no profile")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "profile lookup failed")
		return
	}

	signed, expiresAt, err := a.sessions.Issue(token.UID, 0)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "could not create session")
		return
	}
	a.sessions.SetCookie(w, signed, expiresAt)

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"uid": token.UID,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    profile,
	})
}

func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createSession(w, r)
	case http.MethodGet:
		a.currentSession(w, r)
	case http.MethodDelete:
		a.clearSession(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet, http.MethodDelete)
	}
}

func (a *API) createSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		writeError(w, r, http.StatusBadRequest, "idToken is required")
		return
	}

	record, err := a.identity.VerifyIDToken(r.Context(), req.IDToken)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}

	ttl := time.Duration(req.ExpiresIn) * time.Second
	signed, expiresAt, err := a.sessions.Issue(record.UID, ttl)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "could not create session")
		return
	}
	a.sessions.SetCookie(w, signed, expiresAt)

	_ = audit.LogEvent(r.Context(), "auth.session.create", map[string]any{
		"uid": record.UID,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) currentSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := directory.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          actor,
	})
}

func (a *API) clearSession(w http.ResponseWriter, r *http.Request) {
	// Drop the sliding-renewal cookie the session middleware may have set.
	w.Header().Del("Set-Cookie")
	a.sessions.ClearCookie(w)
	_ = audit.LogEvent(r.Context(), "auth.session.clear", nil)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
