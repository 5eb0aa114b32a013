package handlers

import (
	"net/http"

	"backlog/internal/models"
)

func (h *Handlers) ListProductAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.areas.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, productAreaViews(areas))
}

func (h *Handlers) CreateProductArea(w http.ResponseWriter, r *http.Request) {
	var body nameBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}

	areas, err := h.areas.Create(r.Context(), models.NameDraft{Name: body.Name})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, productAreaViews(areas))
}

func (h *Handlers) UpdateProductArea(w http.ResponseWriter, r *http.Request) {
	var body nameBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := requireID(body.ID); err != nil {
		h.respondError(w, r, err)
		return
	}

	areas, err := h.areas.Rename(r.Context(), body.ID, models.NameDraft{Name: body.Name})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, productAreaViews(areas))
}

func (h *Handlers) DeleteProductArea(w http.ResponseWriter, r *http.Request) {
	var body idBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := requireID(body.ID); err != nil {
		h.respondError(w, r, err)
		return
	}

	areas, err := h.areas.Delete(r.Context(), body.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, productAreaViews(areas))
}
