package handlers

import (
	"net/http"

	"backlog/internal/models"
)

type tokenResponse struct {
	Token    string `json:"token"`
	Duration int    `json:"duration"`
}

// CreateUser registers a new user and returns it.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var draft models.UserDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), draft)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Token issues a token for the authenticated caller.
func (h *Handlers) Token(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	token, ttl, err := h.users.IssueToken(user)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tokenResponse{Token: token, Duration: int(ttl.Seconds())})
}

// Health reports whether the process is serving and the database answers.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		loggerFrom(r, h.logger).WithError(err).Error("health check failed")
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
