package handlers

import (
	"errors"
	"net/http"

	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/andrei-iacobb/neatplan-sub001/internal/repo"
)

// EquipmentHandler serves /equipment.
type EquipmentHandler struct {
	Repo      *repo.EquipmentRepo
	AuditRepo *repo.AuditRepo
}

type equipmentInput struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Location    string `json:"location" validate:"max=255"`
	Description string `json:"description" validate:"max=1000"`
}

func (h *EquipmentHandler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	var input equipmentInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	e, err := h.Repo.Create(r.Context(), input.Name, input.Location, input.Description)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "create", "equipment", e.ID, e.Name)
	writeJSON(w, http.StatusCreated, e)
}

// ListEquipment supports q (name or location search), limit and offset.
func (h *EquipmentHandler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r, 50, 200)
	search := r.URL.Query().Get("q")

	list, err := h.Repo.List(r.Context(), search, limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context(), search)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Equipment{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total, Limit: limit, Offset: offset})
}

func (h *EquipmentHandler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "equipment")
	if !ok {
		return
	}

	e, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if e == nil {
		JSONError(w, "equipment not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EquipmentHandler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "equipment")
	if !ok {
		return
	}
	var input equipmentInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	e, err := h.Repo.Update(r.Context(), id, input.Name, input.Location, input.Description)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "equipment not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "update", "equipment", id, e.Name)
	writeJSON(w, http.StatusOK, e)
}

func (h *EquipmentHandler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "equipment")
	if !ok {
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "equipment not found", http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.AuditRepo, "delete", "equipment", id, "")
	w.WriteHeader(http.StatusNoContent)
}
