package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"backlog/internal/models"
)

// CreateProductArea creates a new product area and sets its ID.
func (q *queries) CreateProductArea(ctx context.Context, area *models.ProductArea) error {
	err := q.get(ctx, &area.ID, `INSERT INTO product_areas (name) VALUES (?) RETURNING id`, area.Name)
	if err != nil {
		return fmt.Errorf("failed to create product area: %w", err)
	}
	return nil
}

// GetProductArea retrieves a product area by ID.
func (q *queries) GetProductArea(ctx context.Context, id int64) (*models.ProductArea, error) {
	area := &models.ProductArea{}
	err := q.get(ctx, area, `SELECT id, name FROM product_areas WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFound("product area", id)
		}
		return nil, fmt.Errorf("failed to get product area: %w", err)
	}
	return area, nil
}

// ListProductAreas retrieves all product areas ordered by name.
func (q *queries) ListProductAreas(ctx context.Context) ([]models.ProductArea, error) {
	areas := []models.ProductArea{}
	if err := q.list(ctx, &areas, `SELECT id, name FROM product_areas ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("failed to list product areas: %w", err)
	}
	return areas, nil
}

func (q *queries) RenameProductArea(ctx context.Context, id int64, name string) error {
	return q.execOne(ctx, "rename product area", "product area", id, `UPDATE product_areas SET name = ? WHERE id = ?`, name, id)
}

func (q *queries) DeleteProductArea(ctx context.Context, id int64) error {
	return q.execOne(ctx, "delete product area", "product area", id, `DELETE FROM product_areas WHERE id = ?`, id)
}

func (q *queries) ProductAreaExists(ctx context.Context, id int64) (bool, error) {
	exists, err := q.exists(ctx, `SELECT EXISTS (SELECT 1 FROM product_areas WHERE id = ?)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check product area: %w", err)
	}
	return exists, nil
}

func (q *queries) CountProductAreaRequests(ctx context.Context, id int64) (int, error) {
	var count int
	if err := q.get(ctx, &count, `SELECT COUNT(*) FROM requests WHERE product_area_id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to count product area requests: %w", err)
	}
	return count, nil
}
