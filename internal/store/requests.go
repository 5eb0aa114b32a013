package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"backlog/internal/models"
)

const requestColumns = `id, title, description, client_id, product_area_id, rank, target_date, is_active, created_at, updated_at`

// requestRow is a request joined with its client and product area.
type requestRow struct {
	models.Request
	ClientName      string `db:"client_name"`
	ClientNextRank  int    `db:"client_next_rank"`
	ProductAreaName string `db:"product_area_name"`
}

// CreateRequest inserts a new request and sets its ID and timestamps.
// The rank must already be registered in the rank pool.
func (q *queries) CreateRequest(ctx context.Context, req *models.Request) error {
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	err := q.get(ctx, &req.ID, `
		INSERT INTO requests (title, description, client_id, product_area_id, rank, target_date, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, req.Title, req.Description, req.ClientID, req.ProductAreaID, req.Rank, req.TargetDate, req.IsActive, now, now)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

// GetRequest retrieves a request by ID without expanding its references.
func (q *queries) GetRequest(ctx context.Context, id int64) (*models.Request, error) {
	req := &models.Request{}
	err := q.get(ctx, req, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFound("request", id)
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// UpdateRequest overwrites every mutable field of the request. The active flag is left alone.
func (q *queries) UpdateRequest(ctx context.Context, req *models.Request) error {
	req.UpdatedAt = time.Now().UTC()

	return q.execOne(ctx, "update request", "request", req.ID, `
		UPDATE requests
		SET title = ?, description = ?, client_id = ?, product_area_id = ?, rank = ?, target_date = ?, updated_at = ?
		WHERE id = ?
	`, req.Title, req.Description, req.ClientID, req.ProductAreaID, req.Rank, req.TargetDate, req.UpdatedAt, req.ID)
}

// SetRequestActive flips the active flag without touching the rank.
func (q *queries) SetRequestActive(ctx context.Context, id int64, active bool) error {
	return q.execOne(ctx, "set request active flag", "request", id,
		`UPDATE requests SET is_active = ?, updated_at = ? WHERE id = ?`, active, time.Now().UTC(), id)
}

// DeleteRequest removes a request permanently.
func (q *queries) DeleteRequest(ctx context.Context, id int64) error {
	return q.execOne(ctx, "delete request", "request", id, `DELETE FROM requests WHERE id = ?`, id)
}

func (q *queries) RequestExists(ctx context.Context, id int64) (bool, error) {
	exists, err := q.exists(ctx, `SELECT EXISTS (SELECT 1 FROM requests WHERE id = ?)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check request: %w", err)
	}
	return exists, nil
}

// ListRequests retrieves active or completed requests with their client and product area,
// ordered by rank and then by ID.
func (q *queries) ListRequests(ctx context.Context, active bool) ([]models.Request, error) {
	var rows []requestRow
	err := q.list(ctx, &rows, `
		SELECT
			r.id, r.title, r.description, r.client_id, r.product_area_id, r.rank,
			r.target_date, r.is_active, r.created_at, r.updated_at,
			c.name AS client_name,
			(SELECT COUNT(*) FROM requests cr WHERE cr.client_id = c.id) + 1 AS client_next_rank,
			p.name AS product_area_name
		FROM requests r
		JOIN clients c ON c.id = r.client_id
		JOIN product_areas p ON p.id = r.product_area_id
		WHERE r.is_active = ?
		ORDER BY r.rank ASC, r.id ASC
	`, active)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	requests := make([]models.Request, 0, len(rows))
	for _, row := range rows {
		req := row.Request
		req.Client = &models.Client{ID: req.ClientID, Name: row.ClientName, NextRank: row.ClientNextRank}
		req.ProductArea = &models.ProductArea{ID: req.ProductAreaID, Name: row.ProductAreaName}
		requests = append(requests, req)
	}

	return requests, nil
}
