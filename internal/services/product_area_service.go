package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"backlog/internal/models"
	"backlog/internal/store"
)

// ProductAreaService administers product areas.
type ProductAreaService struct {
	store  store.Store
	logger *logrus.Entry
}

func NewProductAreaService(s store.Store, logger *logrus.Entry) *ProductAreaService {
	if logger == nil {
		logger = nopLogger()
	}
	return &ProductAreaService{store: s, logger: logger.WithField("service", "product_areas")}
}

func (s *ProductAreaService) Create(ctx context.Context, draft models.NameDraft) ([]models.ProductArea, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	area := &models.ProductArea{Name: draft.Name}
	if err := s.store.CreateProductArea(ctx, area); err != nil {
		return nil, models.Storage(err)
	}

	s.logger.WithField("product_area_id", area.ID).Info("product area created")
	return s.List(ctx)
}

func (s *ProductAreaService) Rename(ctx context.Context, id int64, draft models.NameDraft) ([]models.ProductArea, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.RenameProductArea(ctx, id, draft.Name); err != nil {
		return nil, models.Storage(err)
	}
	return s.List(ctx)
}

// Delete removes product area id unless a request still references it.
func (s *ProductAreaService) Delete(ctx context.Context, id int64) ([]models.ProductArea, error) {
	err := s.store.InTx(ctx, func(ctx context.Context, q store.Queries) error {
		ok, err := q.ProductAreaExists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("product area", id)
		}

		count, err := q.CountProductAreaRequests(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return &models.RelationError{Entity: "product area", ID: id, Count: count}
		}

		return q.DeleteProductArea(ctx, id)
	})
	if err != nil {
		return nil, models.Storage(err)
	}

	s.logger.WithField("product_area_id", id).Info("product area deleted")
	return s.List(ctx)
}

func (s *ProductAreaService) List(ctx context.Context) ([]models.ProductArea, error) {
	areas, err := s.store.ListProductAreas(ctx)
	if err != nil {
		return nil, models.Storage(err)
	}
	return areas, nil
}
