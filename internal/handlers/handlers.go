package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"backlog/internal/models"
	"backlog/internal/services"
)

const maxBodyBytes = 1 << 20

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	db       Pinger
	requests *services.RequestService
	clients  *services.ClientService
	areas    *services.ProductAreaService
	users    *services.UserService
	logger   *logrus.Logger
}

// New creates a new Handlers instance.
func New(
	db Pinger,
	requests *services.RequestService,
	clients *services.ClientService,
	areas *services.ProductAreaService,
	users *services.UserService,
	logger *logrus.Logger,
) *Handlers {
	return &Handlers{
		db:       db,
		requests: requests,
		clients:  clients,
		areas:    areas,
		users:    users,
		logger:   logger,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// respondJSON writes payload as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

// respondError reports err in the body with status 200, which is what API clients check.
// Storage failures are logged and replaced by a generic message.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	message := err.Error()

	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrRelationConflict):
		loggerFrom(r, h.logger).WithError(err).Debug("request rejected")
	default:
		loggerFrom(r, h.logger).WithError(err).Error("internal error")
		message = "internal error"
	}

	respondJSON(w, http.StatusOK, errorBody{Error: message})
}

func respondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="backlog"`)
	respondJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
}

// decodeJSON reads the request body into dst. Any decoding problem is a ValidationError.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return models.Invalid("", "request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return models.Invalid("", "request body is not valid JSON")
	case errors.As(err, &typeErr):
		return models.Invalid(typeErr.Field, fmt.Sprintf("%s has the wrong type, expected %s", typeErr.Field, jsonKind(typeErr.Type.Kind().String())))
	case errors.As(err, &maxErr):
		return models.Invalid("", "request body is too large")
	default:
		return models.Invalid("", err.Error())
	}
}

func jsonKind(goKind string) string {
	switch goKind {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64", "float32", "float64":
		return "number"
	case "struct", "map":
		return "object"
	case "slice", "array":
		return "list"
	case "bool":
		return "boolean"
	default:
		return goKind
	}
}

// parseID extracts the numeric path parameter param.
func parseID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.Invalid(param, param+" must be a positive integer")
	}
	return id, nil
}

// requireID fails unless id identifies an entity.
func requireID(id int64) error {
	if id <= 0 {
		return models.Invalid("id", "id is a required field")
	}
	return nil
}
