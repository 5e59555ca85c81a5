package httpapi

import (
	"net/http"
	"strings"

	"chatdesk.org/internal/audit"
	"chatdesk.org/internal/directory"
	"chatdesk.org/internal/identity"
	"chatdesk.org/internal/obs"
)

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	FullName string `json:"fullName,omitempty"`
}

type updateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	FullName *string `json:"fullName,omitempty"`
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	actor, ok := a.requirePrivileged(w, r)
	if !ok {
		return
	}

	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "name, email and password are required")
		return
	}
	role, err := directory.ParseRole(req.Role)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}

	record, err := a.identity.CreateUser(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}

	user, err := a.users.Create(r.Context(), actor, directory.User{
		ID:       record.UID,
		Name:     req.Name,
		Email:    req.Email,
		Role:     role,
		FullName: req.FullName,
	})
	if err != nil {
		// Roll back the provider account so a retry is possible.
		if delErr := a.identity.DeleteUser(r.Context(), record.UID); delErr != nil {
			obs.Log("warn", "identity_rollback_failed", map[string]any{
				"uid":   record.UID,
				"error": delErr.Error(),
			})
		}
		handleDirectoryError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.create", map[string]any{
		"target": user.ID,
		"role":   string(user.Role),
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	uid := strings.TrimSpace(r.URL.Query().Get("uid"))
	if uid == "" {
		writeError(w, r, http.StatusBadRequest, "uid query parameter is required")
		return
	}

	if err := a.users.Delete(r.Context(), actor, uid); err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	if err := a.identity.DeleteUser(r.Context(), uid); err != nil {
		obs.Log("warn", "identity_delete_failed", map[string]any{
			"uid":   uid,
			"error": err.Error(),
		})
	}

	_ = audit.LogEvent(r.Context(), "user.delete", map[string]any{
		"target": uid,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requirePrivileged(w, r); !ok {
		return
	}
	users, err := a.users.List(r.Context())
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	if users == nil {
		users = []directory.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/admin/users/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	upd := directory.Update{
		Name:     req.Name,
		Email:    req.Email,
		FullName: req.FullName,
	}
	if req.Role != nil {
		role, err := directory.ParseRole(*req.Role)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		upd.Role = &role
	}

	user, err := a.users.Update(r.Context(), actor, id, upd)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	if req.Email != nil || req.Name != nil {
		provUpd := identity.RecordUpdate{Email: req.Email, DisplayName: req.Name}
		if err := a.identity.UpdateUser(r.Context(), id, provUpd); err != nil {
			obs.Log("warn", "identity_update_failed", map[string]any{
				"uid":   id,
				"error": err.Error(),
			})
		}
	}

	_ = audit.LogEvent(r.Context(), "user.update", map[string]any{
		"target": user.ID,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}
