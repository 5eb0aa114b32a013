package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"backlog/internal/models"
)

const userColumns = `id, first_name, last_name, email, hash, is_active, status, role`

// CreateUser inserts a user and sets its ID.
func (q *queries) CreateUser(ctx context.Context, user *models.User) error {
	err := q.get(ctx, &user.ID, `
		INSERT INTO users (first_name, last_name, email, hash, is_active, status, role)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, user.FirstName, user.LastName, user.Email, user.Hash, user.IsActive, user.Status, user.Role)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (q *queries) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := q.get(ctx, user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFound("user", id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email. It returns (nil, nil) when no user has that email.
func (q *queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := q.get(ctx, user, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}
