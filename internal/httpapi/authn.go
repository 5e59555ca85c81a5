package httpapi

import (
	"errors"
	"net/http"

	"chatdesk.org/internal/directory"
	"chatdesk.org/internal/session"
)

var publicPaths = []string{
	"/healthz",
	"/readyz",
	"/v1/info",
	"/metrics",
	"/api/auth/login",
	"/api/auth/session",
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// isPublic reports whether r needs no session. Requests that only match the
// catch-all pattern fall through so the mux can answer with a 404.
func (a *API) isPublic(r *http.Request) bool {
	_, pattern := a.mux.Handler(r)
	if pattern == "" || pattern == "/" {
		return true
	}
	return isPublicPath(r.URL.Path)
}

// withSession resolves the session cookie into a directory profile. Public
// paths get a best-effort principal; everything else requires one.
func (a *API) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		actor, err := a.resolveActor(w, r)
		if err == nil {
			r = r.WithContext(directory.ContextWithActor(r.Context(), actor))
		}

		if a.isPublic(r) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			if errors.Is(err, session.ErrInvalidSession) || errors.Is(err, directory.ErrNotFound) {
				writeError(w, r, http.StatusUnauthorized, "authentication required")
				return
			}
			writeError(w, r, http.StatusInternalServerError, "authentication error")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// resolveActor verifies the cookie, joins the directory profile and slides
// the session forward with a fresh cookie.
func (a *API) resolveActor(w http.ResponseWriter, r *http.Request) (directory.User, error) {
	token, ok := session.FromRequest(r)
	if !ok {
		return directory.User{}, session.ErrInvalidSession
	}
	uid, err := a.sessions.Verify(token)
	if err != nil {
		return directory.User{}, err
	}
	actor, err := a.users.GetByID(r.Context(), uid)
	if err != nil {
		return directory.User{}, err
	}
	if renewed, expiresAt, err := a.sessions.Issue(uid, 0); err == nil {
		a.sessions.SetCookie(w, renewed, expiresAt)
	}
	return actor, nil
}

// requireActor returns the authenticated profile or writes a 401.
func requireActor(w http.ResponseWriter, r *http.Request) (directory.User, bool) {
	actor, ok := directory.ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return directory.User{}, false
	}
	return actor, true
}

// requirePrivileged returns the actor only when it holds Admin or above.
func (a *API) requirePrivileged(w http.ResponseWriter, r *http.Request) (directory.User, bool) {
	actor, ok := requireActor(w, r)
	if !ok {
		return directory.User{}, false
	}
	if !actor.Role.Privileged() {
		writeError(w, r, http.StatusForbidden, "admin access required")
		return directory.User{}, false
	}
	return actor, true
}
