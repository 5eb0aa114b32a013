package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"backlog/internal/models"
	"backlog/internal/services"
)

type loggerKey struct{}

type userKey struct{}

// requestLogger stores a request scoped logrus entry in the context and logs
// every completed request with its status and duration.
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			entry := logger.WithFields(logrus.Fields{
				"request-id": middleware.GetReqID(r.Context()),
				"path":       r.URL.Path,
				"method":     r.Method,
			})

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := context.WithValue(r.Context(), loggerKey{}, entry)

			defer func() {
				entry.WithFields(logrus.Fields{
					"status":   ww.Status(),
					"bytes":    ww.BytesWritten(),
					"ip":       r.RemoteAddr,
					"duration": time.Since(start).String(),
				}).Info("request completed")
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}

func loggerFrom(r *http.Request, fallback *logrus.Logger) *logrus.Entry {
	if entry, ok := r.Context().Value(loggerKey{}).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(fallback)
}

func userFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey{}).(*models.User)
	return user, ok && user != nil
}

// requireUser authenticates the caller before the wrapped handler runs. It accepts
// a bearer token, or HTTP basic credentials holding either a token as the
// username or an email and password pair.
func (h *Handlers) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.authenticate(r)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthorized) {
				loggerFrom(r, h.logger).WithError(err).Error("authentication failed")
			}
			respondUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handlers) authenticate(r *http.Request) (*models.User, error) {
	ctx := r.Context()

	if header := r.Header.Get("Authorization"); len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return h.users.VerifyToken(ctx, strings.TrimSpace(header[7:]))
	}

	username, password, ok := r.BasicAuth()
	if !ok || username == "" {
		return nil, services.ErrUnauthorized
	}

	if user, err := h.users.VerifyToken(ctx, username); err == nil {
		return user, nil
	}
	return h.users.Authenticate(ctx, strings.ToLower(strings.TrimSpace(username)), password)
}
