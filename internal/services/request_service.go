// Package services implements the request lifecycle and the administration of
// clients, product areas and users on top of the store.
package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"backlog/internal/models"
	"backlog/internal/ranking"
	"backlog/internal/store"
)

// RequestService creates, edits, completes and removes requests. Every mutation
// returns the refreshed list of active requests.
type RequestService struct {
	store  store.Store
	engine *ranking.Engine
	logger *logrus.Entry
}

func NewRequestService(s store.Store, engine *ranking.Engine, logger *logrus.Entry) *RequestService {
	if logger == nil {
		logger = nopLogger()
	}
	return &RequestService{store: s, engine: engine, logger: logger.WithField("service", "requests")}
}

// Create validates draft and stores it as a new active request at the draft's rank.
func (s *RequestService) Create(ctx context.Context, draft models.RequestDraft) ([]models.Request, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	req := &models.Request{IsActive: true}
	applyDraft(req, draft)

	_, err := s.engine.Place(ctx, ranking.Placement{
		ClientID: draft.ClientID,
		Rank:     draft.Rank,
		Prepare: func(ctx context.Context, q store.Queries) error {
			return checkReferences(ctx, q, draft.ClientID, draft.ProductAreaID)
		},
		Write: func(ctx context.Context, q store.Queries) error {
			return q.CreateRequest(ctx, req)
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"request_id": req.ID, "client_id": req.ClientID, "rank": req.Rank}).Info("request created")
	return s.ListActive(ctx)
}

// Update overwrites every editable field of request id. The new rank is placed
// exactly like on create, so the request's own previous rank gets no special treatment.
func (s *RequestService) Update(ctx context.Context, id int64, draft models.RequestDraft) ([]models.Request, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	_, err := s.engine.Place(ctx, ranking.Placement{
		ClientID: draft.ClientID,
		Rank:     draft.Rank,
		Prepare: func(ctx context.Context, q store.Queries) error {
			if err := requireRequest(ctx, q, id); err != nil {
				return err
			}
			return checkReferences(ctx, q, draft.ClientID, draft.ProductAreaID)
		},
		Write: func(ctx context.Context, q store.Queries) error {
			req, err := q.GetRequest(ctx, id)
			if err != nil {
				return err
			}
			applyDraft(req, draft)
			return q.UpdateRequest(ctx, req)
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"request_id": id, "client_id": draft.ClientID, "rank": draft.Rank}).Info("request updated")
	return s.ListActive(ctx)
}

// Complete marks request id as completed. Its rank is kept.
func (s *RequestService) Complete(ctx context.Context, id int64) ([]models.Request, error) {
	err := s.store.InTx(ctx, func(ctx context.Context, q store.Queries) error {
		if err := requireRequest(ctx, q, id); err != nil {
			return err
		}
		return q.SetRequestActive(ctx, id, false)
	})
	if err != nil {
		return nil, models.Storage(err)
	}

	s.logger.WithField("request_id", id).Info("request completed")
	return s.ListActive(ctx)
}

// Remove deletes request id. Other requests keep their ranks.
func (s *RequestService) Remove(ctx context.Context, id int64) ([]models.Request, error) {
	err := s.store.InTx(ctx, func(ctx context.Context, q store.Queries) error {
		if err := requireRequest(ctx, q, id); err != nil {
			return err
		}
		return q.DeleteRequest(ctx, id)
	})
	if err != nil {
		return nil, models.Storage(err)
	}

	s.logger.WithField("request_id", id).Info("request removed")
	return s.ListActive(ctx)
}

// Get returns a single request.
func (s *RequestService) Get(ctx context.Context, id int64) (*models.Request, error) {
	req, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return nil, models.Storage(err)
	}

	if req.Client, err = s.store.GetClient(ctx, req.ClientID); err != nil {
		return nil, models.Storage(err)
	}
	if req.ProductArea, err = s.store.GetProductArea(ctx, req.ProductAreaID); err != nil {
		return nil, models.Storage(err)
	}
	return req, nil
}

// Ranks returns the rank pool: every rank any request has held, ascending.
func (s *RequestService) Ranks(ctx context.Context) ([]int, error) {
	ranks, err := s.store.ListRanks(ctx)
	if err != nil {
		return nil, models.Storage(err)
	}
	return ranks, nil
}

// ListActive returns open requests ordered by rank.
func (s *RequestService) ListActive(ctx context.Context) ([]models.Request, error) {
	return s.list(ctx, true)
}

// ListCompleted returns completed requests ordered by rank.
func (s *RequestService) ListCompleted(ctx context.Context) ([]models.Request, error) {
	return s.list(ctx, false)
}

func (s *RequestService) list(ctx context.Context, active bool) ([]models.Request, error) {
	requests, err := s.store.ListRequests(ctx, active)
	if err != nil {
		return nil, models.Storage(err)
	}
	return requests, nil
}

func applyDraft(req *models.Request, draft models.RequestDraft) {
	req.Title = draft.Title
	req.Description = draft.Description
	req.ClientID = draft.ClientID
	req.ProductAreaID = draft.ProductAreaID
	req.Rank = draft.Rank
	req.TargetDate = draft.TargetDate
}

func requireRequest(ctx context.Context, q store.Queries, id int64) error {
	ok, err := q.RequestExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NotFound("request", id)
	}
	return nil
}

// checkReferences fails with a NotFoundError unless both the client and the product area exist.
func checkReferences(ctx context.Context, q store.Queries, clientID, productAreaID int64) error {
	ok, err := q.ClientExists(ctx, clientID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NotFound("client", clientID)
	}

	ok, err = q.ProductAreaExists(ctx, productAreaID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NotFound("product area", productAreaID)
	}
	return nil
}

func nopLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}
