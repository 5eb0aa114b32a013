package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"backlog/internal/models"
	"backlog/internal/store"
)

// ClientService administers clients.
type ClientService struct {
	store  store.Store
	logger *logrus.Entry
}

func NewClientService(s store.Store, logger *logrus.Entry) *ClientService {
	if logger == nil {
		logger = nopLogger()
	}
	return &ClientService{store: s, logger: logger.WithField("service", "clients")}
}

// Create adds a client and returns all clients.
func (s *ClientService) Create(ctx context.Context, draft models.NameDraft) ([]models.Client, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	client := &models.Client{Name: draft.Name}
	if err := s.store.CreateClient(ctx, client); err != nil {
		return nil, models.Storage(err)
	}

	s.logger.WithField("client_id", client.ID).Info("client created")
	return s.List(ctx)
}

// Rename overwrites the name of client id and returns all clients.
func (s *ClientService) Rename(ctx context.Context, id int64, draft models.NameDraft) ([]models.Client, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.RenameClient(ctx, id, draft.Name); err != nil {
		return nil, models.Storage(err)
	}
	return s.List(ctx)
}

// Delete removes client id unless a request still references it.
func (s *ClientService) Delete(ctx context.Context, id int64) ([]models.Client, error) {
	err := s.store.InTx(ctx, func(ctx context.Context, q store.Queries) error {
		ok, err := q.ClientExists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("client", id)
		}

		count, err := q.CountClientRequests(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return &models.RelationError{Entity: "client", ID: id, Count: count}
		}

		return q.DeleteClient(ctx, id)
	})
	if err != nil {
		return nil, models.Storage(err)
	}

	s.logger.WithField("client_id", id).Info("client deleted")
	return s.List(ctx)
}

// Get returns one client with its next rank hint.
func (s *ClientService) Get(ctx context.Context, id int64) (*models.Client, error) {
	client, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, models.Storage(err)
	}
	return client, nil
}

// List returns all clients ordered by name.
func (s *ClientService) List(ctx context.Context) ([]models.Client, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, models.Storage(err)
	}
	return clients, nil
}
