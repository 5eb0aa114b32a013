package handlers

import (
	"net/http"
	"strings"
	"time"

	"backlog/internal/models"
)

type refBody struct {
	ID       int64 `json:"id"`
	NextRank int   `json:"client_priority"`
}

// requestBody is the payload of /requests/new and /requests/edit.
type requestBody struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	TargetDate  string  `json:"target_date"`
	Client      refBody `json:"client"`
	ProductArea refBody `json:"product_area"`

	// Older clients send the rank next to the client instead of inside it.
	Rank int `json:"client_priority"`
}

func (b requestBody) draft() (models.RequestDraft, error) {
	d := models.RequestDraft{
		Title:         b.Title,
		Description:   b.Description,
		ClientID:      b.Client.ID,
		ProductAreaID: b.ProductArea.ID,
		Rank:          b.Client.NextRank,
	}
	if d.Rank == 0 {
		d.Rank = b.Rank
	}

	if strings.TrimSpace(b.TargetDate) != "" {
		date, err := models.ParseDate(b.TargetDate)
		if err != nil {
			return d, models.Invalid("target_date", err.Error())
		}
		d.TargetDate = date
	}

	return d, nil
}

type idBody struct {
	ID int64 `json:"id"`
}

// ListRequests returns the active requests ordered by rank.
func (h *Handlers) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requests.ListActive(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, requestViews(requests))
}

// ListCompletedRequests returns the completed requests ordered by rank.
func (h *Handlers) ListCompletedRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requests.ListCompleted(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, requestViews(requests))
}

// GetRequest returns a single request, active or completed.
func (h *Handlers) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	req, err := h.requests.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newRequestView(*req, time.Now()))
}

// ListRanks returns every rank ever assigned, ascending.
func (h *Handlers) ListRanks(w http.ResponseWriter, r *http.Request) {
	ranks, err := h.requests.Ranks(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ranks)
}

// CreateRequest creates a request and returns the active list.
func (h *Handlers) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var body requestBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}

	draft, err := body.draft()
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	requests, err := h.requests.Create(r.Context(), draft)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, requestViews(requests))
}

// UpdateRequest edits a request and returns the active list.
func (h *Handlers) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	var body requestBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := requireID(body.ID); err != nil {
		h.respondError(w, r, err)
		return
	}

	draft, err := body.draft()
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	requests, err := h.requests.Update(r.Context(), body.ID, draft)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, requestViews(requests))
}

// CompleteRequest marks a request completed and returns the active list.
func (h *Handlers) CompleteRequest(w http.ResponseWriter, r *http.Request) {
	var body idBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := requireID(body.ID); err != nil {
		h.respondError(w, r, err)
		return
	}

	requests, err := h.requests.Complete(r.Context(), body.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, requestViews(requests))
}

// DeleteRequest removes a request and returns the active list.
func (h *Handlers) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	var body idBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := requireID(body.ID); err != nil {
		h.respondError(w, r, err)
		return
	}

	requests, err := h.requests.Remove(r.Context(), body.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, requestViews(requests))
}
