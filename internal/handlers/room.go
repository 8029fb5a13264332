package handlers

import (
	"errors"
	"net/http"

	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/andrei-iacobb/neatplan-sub001/internal/repo"
)

type RoomHandler struct {
	Repo      *repo.RoomRepo
	AuditRepo *repo.AuditRepo
}

type roomInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Floor       *string `json:"floor" validate:"omitempty,max=50"`
	Description string  `json:"description" validate:"max=1000"`
}

//
// ==========================
// Create Room
// ==========================
//

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var input roomInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	room, err := h.Repo.Create(r.Context(), input.Name, input.Floor, input.Description)
	if repo.IsUniqueViolation(err) {
		JSONError(w, "room name already exists", http.StatusConflict)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "create", "room", room.ID, room.Name)
	writeJSON(w, http.StatusCreated, room)
}

//
// ==========================
// List Rooms (query: q, limit, offset)
// ==========================
//

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r, 50, 200)
	search := r.URL.Query().Get("q")

	rooms, err := h.Repo.List(r.Context(), search, limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context(), search)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: rooms, Total: total, Limit: limit, Offset: offset})
}

//
// ==========================
// Get Room By ID
// ==========================
//

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "room")
	if !ok {
		return
	}

	room, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if room == nil {
		JSONError(w, "room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

//
// ==========================
// Update Room
// ==========================
//

func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "room")
	if !ok {
		return
	}
	var input roomInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	room, err := h.Repo.Update(r.Context(), id, input.Name, input.Floor, input.Description)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		JSONError(w, "room not found", http.StatusNotFound)
		return
	case repo.IsUniqueViolation(err):
		JSONError(w, "room name already exists", http.StatusConflict)
		return
	case err != nil:
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "update", "room", id, room.Name)
	writeJSON(w, http.StatusOK, room)
}

//
// ==========================
// Delete Room (its assignments cascade)
// ==========================
//

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "room")
	if !ok {
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "room not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "delete", "room", id, "")
	w.WriteHeader(http.StatusNoContent)
}
