package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"backlog/internal/auth"
	"backlog/internal/models"
	"backlog/internal/store"
)

// ErrUnauthorized is returned when credentials or a token do not identify an active user.
var ErrUnauthorized = errors.New("unauthorized")

// UserService registers users and authenticates API callers.
type UserService struct {
	store  store.Store
	tokens *auth.Tokens
	now    func() time.Time
	logger *logrus.Entry
}

func NewUserService(s store.Store, tokens *auth.Tokens, logger *logrus.Entry) *UserService {
	if logger == nil {
		logger = nopLogger()
	}
	return &UserService{store: s, tokens: tokens, now: time.Now, logger: logger.WithField("service", "users")}
}

// Register creates an active user with the default status and role.
func (s *UserService) Register(ctx context.Context, draft models.UserDraft) (*models.User, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(draft.Password)
	if err != nil {
		return nil, models.Storage(err)
	}

	user := &models.User{
		FirstName: draft.FirstName,
		LastName:  draft.LastName,
		Email:     draft.Email,
		Hash:      hash,
		IsActive:  true,
		Status:    models.DefaultUserStatus,
		Role:      models.DefaultUserRole,
	}

	err = s.store.InTx(ctx, func(ctx context.Context, q store.Queries) error {
		existing, err := q.GetUserByEmail(ctx, draft.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return models.Invalid("email", "email is already registered")
		}
		return q.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, models.Storage(err)
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Authenticate checks an email and password pair.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, models.Storage(err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrUnauthorized
	}

	ok, err := auth.VerifyPassword(user.Hash, password)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("stored password hash is unreadable")
		return nil, ErrUnauthorized
	}
	if !ok {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// IssueToken signs a token for user. It returns the token and its lifetime.
func (s *UserService) IssueToken(user *models.User) (string, time.Duration, error) {
	token, err := s.tokens.Issue(user.ID, s.now())
	if err != nil {
		return "", 0, err
	}
	return token, s.tokens.TTL(), nil
}

// VerifyToken resolves a token to its active user.
func (s *UserService) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	uid, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.store.GetUser(ctx, uid)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, models.Storage(err)
	}
	if !user.IsActive {
		return nil, ErrUnauthorized
	}
	return user, nil
}
