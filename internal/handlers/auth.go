package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/andrei-iacobb/neatplan-sub001/internal/repo"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is used when AuthHandler.TokenTTL is zero.
const DefaultTokenTTL = 24 * time.Hour

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Secret   []byte
	TokenTTL time.Duration
	Now      func() time.Time
}

type credentials struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"max=128"`
}

// ==========================
// Register (self-service accounts are always cleaners)
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input credentials
	if !decodeAndValidate(w, r, &input) {
		return
	}
	if len(input.Password) < 8 {
		JSONValidationError(w, "validation failed", map[string]string{"password": "must be at least 8"}, http.StatusBadRequest)
		return
	}

	user, err := h.UserRepo.Create(r.Context(), input.Username, input.Password, models.RoleCleaner)
	if err != nil {
		// Idempotent: registering an existing username returns that user.
		if repo.IsUniqueViolation(err) {
			existing, getErr := h.UserRepo.GetByUsername(r.Context(), input.Username)
			if getErr != nil {
				JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, existing)
			return
		}
		slog.ErrorContext(r.Context(), "register: create user", "username", input.Username, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// ==========================
// Login (issues an HS256 JWT carrying user_id and role)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input credentials
	if !decodeAndValidate(w, r, &input) {
		return
	}

	user, err := h.UserRepo.GetByUsername(r.Context(), input.Username)
	if errors.Is(err, sql.ErrNoRows) {
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "login: get user", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if !repo.CheckPassword(user, input.Password) {
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	ttl := h.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := currentTime(h.Now)
	expires := now.Add(ttl)
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      expires.Unix(),
		"jti":      uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.Secret)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      signed,
		"expires_at": expires.UTC(),
		"user":       user,
	})
}
