package store

import (
	"context"

	"backlog/internal/models"
)

// Queries defines the data operations available both on the store and inside a transaction.
type Queries interface {
	// Client operations
	CreateClient(ctx context.Context, client *models.Client) error
	GetClient(ctx context.Context, id int64) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
	RenameClient(ctx context.Context, id int64, name string) error
	DeleteClient(ctx context.Context, id int64) error
	ClientExists(ctx context.Context, id int64) (bool, error)
	CountClientRequests(ctx context.Context, id int64) (int, error)

	// Product area operations
	CreateProductArea(ctx context.Context, area *models.ProductArea) error
	GetProductArea(ctx context.Context, id int64) (*models.ProductArea, error)
	ListProductAreas(ctx context.Context) ([]models.ProductArea, error)
	RenameProductArea(ctx context.Context, id int64, name string) error
	DeleteProductArea(ctx context.Context, id int64) error
	ProductAreaExists(ctx context.Context, id int64) (bool, error)
	CountProductAreaRequests(ctx context.Context, id int64) (int, error)

	// Request operations
	CreateRequest(ctx context.Context, req *models.Request) error
	GetRequest(ctx context.Context, id int64) (*models.Request, error)
	UpdateRequest(ctx context.Context, req *models.Request) error
	SetRequestActive(ctx context.Context, id int64, active bool) error
	DeleteRequest(ctx context.Context, id int64) error
	RequestExists(ctx context.Context, id int64) (bool, error)
	ListRequests(ctx context.Context, active bool) ([]models.Request, error)

	// Rank operations
	RankTaken(ctx context.Context, clientID int64, rank int) (bool, error)
	RequestsFromRank(ctx context.Context, clientID int64, rank int) ([]models.Request, error)
	SetRequestRank(ctx context.Context, id int64, rank int) error
	EnsureRank(ctx context.Context, rank int) error
	ListRanks(ctx context.Context) ([]int, error)

	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Store defines the interface for data persistence operations.
type Store interface {
	Queries

	// InTx runs fn inside a single transaction. The transaction commits when fn
	// returns nil and rolls back otherwise. fn must only use the Queries it is given.
	InTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error

	// Lifecycle
	Close() error
}
