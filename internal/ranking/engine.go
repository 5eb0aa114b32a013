// Package ranking keeps request ranks unique within each client.
//
// A write that targets a rank already held by another request of the same
// client first shifts every request of that client at or above the target
// rank up by one. The shift and the write commit in the same transaction.
package ranking

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"backlog/internal/models"
	"backlog/internal/store"
)

// Engine resolves rank collisions for request writes.
type Engine struct {
	store  store.Store
	locks  *clientLocks
	logger *logrus.Entry
}

// NewEngine creates an engine over s. A nil logger discards output.
func NewEngine(s store.Store, logger *logrus.Entry) *Engine {
	if logger == nil {
		logger = nopLogger()
	}
	return &Engine{
		store:  s,
		locks:  newClientLocks(),
		logger: logger.WithField("component", "ranking"),
	}
}

// Placement is a write that assigns Rank to a request of ClientID.
type Placement struct {
	ClientID int64
	Rank     int

	// Prepare runs first inside the transaction, before the collision check.
	// Precondition checks belong here so they observe the same snapshot as the write.
	Prepare func(ctx context.Context, q store.Queries) error

	// Write persists the request once Rank is free for the client and registered in the pool.
	Write func(ctx context.Context, q store.Queries) error
}

// IsRankTaken reports whether any request of the client, active or completed, holds rank.
func (e *Engine) IsRankTaken(ctx context.Context, q store.Queries, clientID int64, rank int) (bool, error) {
	return q.RankTaken(ctx, clientID, rank)
}

// MakeRoom frees rank for the client by moving every request of the client with
// rank >= rank up by exactly one. Completed requests move too. Rows are moved
// highest first so no two requests of the client ever share a rank mid-shift.
// It returns the number of requests moved.
func (e *Engine) MakeRoom(ctx context.Context, q store.Queries, clientID int64, rank int) (int, error) {
	requests, err := q.RequestsFromRank(ctx, clientID, rank)
	if err != nil {
		return 0, err
	}

	// Rows come highest first.
	if len(requests) > 0 && requests[0].Rank >= models.MaxRank {
		return 0, models.Invalid("client_priority",
			fmt.Sprintf("client_priority %d cannot move down past %d", requests[0].Rank, models.MaxRank))
	}

	for _, req := range requests {
		next := req.Rank + 1
		if err := q.EnsureRank(ctx, next); err != nil {
			return 0, err
		}
		if err := q.SetRequestRank(ctx, req.ID, next); err != nil {
			return 0, err
		}
	}

	return len(requests), nil
}

// Place runs p atomically while holding the client's lock: Prepare, the
// collision check and shift, registration of p.Rank, then Write. If any step
// fails nothing is persisted. It returns how many requests were shifted.
func (e *Engine) Place(ctx context.Context, p Placement) (int, error) {
	if p.Rank < 1 {
		return 0, models.Invalid("client_priority", fmt.Sprintf("client_priority must be greater than 0, got %d", p.Rank))
	}
	if p.Rank > models.MaxRank {
		return 0, models.Invalid("client_priority", fmt.Sprintf("client_priority must be at most %d, got %d", models.MaxRank, p.Rank))
	}
	if p.Write == nil {
		return 0, fmt.Errorf("placement for client %d has no write", p.ClientID)
	}

	unlock, err := e.locks.acquire(ctx, p.ClientID)
	if err != nil {
		return 0, models.Storage(fmt.Errorf("failed to lock client %d: %w", p.ClientID, err))
	}
	defer unlock()

	m := getMetrics()
	shifted := 0
	collided := false

	err = e.store.InTx(ctx, func(ctx context.Context, q store.Queries) error {
		shifted, collided = 0, false

		if p.Prepare != nil {
			if err := p.Prepare(ctx, q); err != nil {
				return err
			}
		}

		taken, err := e.IsRankTaken(ctx, q, p.ClientID, p.Rank)
		if err != nil {
			return err
		}
		if taken {
			collided = true
			if shifted, err = e.MakeRoom(ctx, q, p.ClientID, p.Rank); err != nil {
				return err
			}
		}

		if err := q.EnsureRank(ctx, p.Rank); err != nil {
			return err
		}

		return p.Write(ctx, q)
	})
	if err != nil {
		m.placementsTotal.WithLabelValues(resultLabel(err)).Inc()
		return 0, models.Storage(err)
	}

	m.placementsTotal.WithLabelValues("ok").Inc()
	if collided {
		m.collisionsTotal.Inc()
		m.shiftedRequests.Observe(float64(shifted))
		e.logger.WithFields(logrus.Fields{
			"client_id": p.ClientID,
			"rank":      p.Rank,
			"shifted":   shifted,
		}).Debug("made room for rank")
	}

	return shifted, nil
}
