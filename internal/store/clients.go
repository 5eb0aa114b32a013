package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"backlog/internal/models"
)

const clientColumns = `
	c.id, c.name,
	(SELECT COUNT(*) FROM requests r WHERE r.client_id = c.id) + 1 AS next_rank
`

// CreateClient creates a new client and sets its ID.
func (q *queries) CreateClient(ctx context.Context, client *models.Client) error {
	err := q.get(ctx, &client.ID, `INSERT INTO clients (name) VALUES (?) RETURNING id`, client.Name)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	client.NextRank = 1
	return nil
}

// GetClient retrieves a client by ID.
func (q *queries) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	client := &models.Client{}
	err := q.get(ctx, client, `SELECT `+clientColumns+` FROM clients c WHERE c.id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFound("client", id)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// ListClients retrieves all clients ordered by name.
func (q *queries) ListClients(ctx context.Context) ([]models.Client, error) {
	clients := []models.Client{}
	if err := q.list(ctx, &clients, `SELECT `+clientColumns+` FROM clients c ORDER BY c.name, c.id`); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// RenameClient overwrites the client's name.
func (q *queries) RenameClient(ctx context.Context, id int64, name string) error {
	return q.execOne(ctx, "rename client", "client", id, `UPDATE clients SET name = ? WHERE id = ?`, name, id)
}

// DeleteClient deletes a client. The schema refuses the delete while requests reference it.
func (q *queries) DeleteClient(ctx context.Context, id int64) error {
	return q.execOne(ctx, "delete client", "client", id, `DELETE FROM clients WHERE id = ?`, id)
}

// ClientExists reports whether a client with the ID exists.
func (q *queries) ClientExists(ctx context.Context, id int64) (bool, error) {
	exists, err := q.exists(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = ?)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check client: %w", err)
	}
	return exists, nil
}

// CountClientRequests counts the requests, active or completed, linked to the client.
func (q *queries) CountClientRequests(ctx context.Context, id int64) (int, error) {
	var count int
	if err := q.get(ctx, &count, `SELECT COUNT(*) FROM requests WHERE client_id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to count client requests: %w", err)
	}
	return count, nil
}
