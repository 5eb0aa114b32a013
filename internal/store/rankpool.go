package store

import (
	"context"
	"fmt"

	"backlog/internal/models"
)

// EnsureRank registers rank in the rank pool if it is not there yet.
// Requests may only reference ranks present in the pool. The pool only grows.
func (q *queries) EnsureRank(ctx context.Context, rank int) error {
	if rank < 1 || rank > models.MaxRank {
		return models.Invalid("client_priority", fmt.Sprintf("rank must be between 1 and %d, got %d", models.MaxRank, rank))
	}

	if _, err := q.exec(ctx, `INSERT INTO rank_pool (rank) VALUES (?) ON CONFLICT (rank) DO NOTHING`, rank); err != nil {
		return fmt.Errorf("failed to register rank %d: %w", rank, err)
	}

	return nil
}

// ListRanks returns every rank ever registered, ascending.
func (q *queries) ListRanks(ctx context.Context) ([]int, error) {
	ranks := []int{}
	if err := q.list(ctx, &ranks, `SELECT rank FROM rank_pool ORDER BY rank`); err != nil {
		return nil, fmt.Errorf("failed to list ranks: %w", err)
	}
	return ranks, nil
}

// RankTaken reports whether any request of the client, active or completed, holds rank.
func (q *queries) RankTaken(ctx context.Context, clientID int64, rank int) (bool, error) {
	taken, err := q.exists(ctx, `SELECT EXISTS (SELECT 1 FROM requests WHERE client_id = ? AND rank = ?)`, clientID, rank)
	if err != nil {
		return false, fmt.Errorf("failed to check rank %d for client %d: %w", rank, clientID, err)
	}
	return taken, nil
}

// RequestsFromRank returns the client's requests with rank >= rank, highest rank first.
// Both active and completed requests are included.
func (q *queries) RequestsFromRank(ctx context.Context, clientID int64, rank int) ([]models.Request, error) {
	requests := []models.Request{}
	err := q.list(ctx, &requests, `
		SELECT `+requestColumns+` FROM requests
		WHERE client_id = ? AND rank >= ?
		ORDER BY rank DESC
	`, clientID, rank)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests from rank %d for client %d: %w", rank, clientID, err)
	}
	return requests, nil
}

// SetRequestRank moves a single request to rank. The rank must already be in the pool.
func (q *queries) SetRequestRank(ctx context.Context, id int64, rank int) error {
	return q.execOne(ctx, fmt.Sprintf("set rank of request %d", id), "request", id, `UPDATE requests SET rank = ? WHERE id = ?`, rank, id)
}
