package handlers

import (
	"net/http"

	"backlog/internal/models"
)

type nameBody struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h *Handlers) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, clientViews(clients))
}

// GetClient returns one client with its next rank hint.
func (h *Handlers) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	client, err := h.clients.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newClientView(*client))
}

func (h *Handlers) CreateClient(w http.ResponseWriter, r *http.Request) {
	var body nameBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}

	clients, err := h.clients.Create(r.Context(), models.NameDraft{Name: body.Name})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, clientViews(clients))
}

func (h *Handlers) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var body nameBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := requireID(body.ID); err != nil {
		h.respondError(w, r, err)
		return
	}

	clients, err := h.clients.Rename(r.Context(), body.ID, models.NameDraft{Name: body.Name})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, clientViews(clients))
}

// DeleteClient removes a client. Clients referenced by any request are kept and an error is returned.
func (h *Handlers) DeleteClient(w http.ResponseWriter, r *http.Request) {
	var body idBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := requireID(body.ID); err != nil {
		h.respondError(w, r, err)
		return
	}

	clients, err := h.clients.Delete(r.Context(), body.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, clientViews(clients))
}
