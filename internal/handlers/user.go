package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/andrei-iacobb/neatplan-sub001/internal/repo"
)

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Repo      *repo.UserRepo
	AuditRepo *repo.AuditRepo
}

// ==========================
// Create User (role defaults to cleaner; admin requires password)
// ==========================
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required,min=3,max=64"`
		Password string `json:"password" validate:"max=128"`
		Role     string `json:"role" validate:"omitempty,oneof=admin cleaner"`
	}
	if !decodeAndValidate(w, r, &input) {
		return
	}
	role := input.Role
	if role == "" {
		role = models.RoleCleaner
	}
	if role == models.RoleAdmin && input.Password == "" {
		JSONValidationError(w, "validation failed", map[string]string{"password": "required for admin"}, http.StatusBadRequest)
		return
	}

	user, err := h.Repo.Create(r.Context(), input.Username, input.Password, role)
	if repo.IsUniqueViolation(err) {
		JSONError(w, "username already exists", http.StatusConflict)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "create", "user", user.ID, "")
	writeJSON(w, http.StatusCreated, user)
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r, 50, 200)
	users, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: users, Total: total, Limit: limit, Offset: offset})
}

// ==========================
// Get User
// ==========================
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "user")
	if !ok {
		return
	}

	user, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		JSONError(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ==========================
// Update User
// ==========================
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "user")
	if !ok {
		return
	}

	var input struct {
		Username string `json:"username" validate:"required,min=3,max=64"`
		Role     string `json:"role" validate:"omitempty,oneof=admin cleaner"`
	}
	if !decodeAndValidate(w, r, &input) {
		return
	}

	user, err := h.Repo.Update(r.Context(), id, input.Username, input.Role)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		JSONError(w, "user not found", http.StatusNotFound)
		return
	case repo.IsUniqueViolation(err):
		JSONError(w, "username already exists", http.StatusConflict)
		return
	case err != nil:
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "update", "user", id, "")
	writeJSON(w, http.StatusOK, user)
}

// ==========================
// Delete User
// ==========================
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "user")
	if !ok {
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "user not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "delete", "user", id, "")
	w.WriteHeader(http.StatusNoContent)
}
