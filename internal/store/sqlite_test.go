package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"backlog/internal/models"
)

func setupTestDB(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedClientAndArea(t *testing.T, store *SQLStore) (*models.Client, *models.ProductArea) {
	t.Helper()
	ctx := context.Background()

	client := &models.Client{Name: "Client A"}
	if err := store.CreateClient(ctx, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	area := &models.ProductArea{Name: "Billing"}
	if err := store.CreateProductArea(ctx, area); err != nil {
		t.Fatalf("CreateProductArea failed: %v", err)
	}
	return client, area
}

func insertRequest(t *testing.T, store *SQLStore, clientID, areaID int64, rank int, active bool) *models.Request {
	t.Helper()
	ctx := context.Background()

	if err := store.EnsureRank(ctx, rank); err != nil {
		t.Fatalf("EnsureRank failed: %v", err)
	}
	req := &models.Request{
		Title:         "Request",
		Description:   "Description",
		ClientID:      clientID,
		ProductAreaID: areaID,
		Rank:          rank,
		TargetDate:    models.NewDate(2026, time.June, 1),
		IsActive:      active,
	}
	if err := store.CreateRequest(ctx, req); err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	return req
}

func TestCreateClient(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	client := &models.Client{Name: "Client A"}
	if err := store.CreateClient(ctx, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	if client.ID == 0 {
		t.Error("expected client ID to be set")
	}

	got, err := store.GetClient(ctx, client.ID)
	if err != nil {
		t.Fatalf("GetClient failed: %v", err)
	}
	if got.Name != "Client A" {
		t.Errorf("expected name %q, got %q", "Client A", got.Name)
	}
	if got.NextRank != 1 {
		t.Errorf("expected next rank 1, got %d", got.NextRank)
	}
}

func TestGetClient_NotFound(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.GetClient(context.Background(), 99999)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestClientNextRank_CountsAllRequests(t *testing.T) {
	store := setupTestDB(t)
	client, area := seedClientAndArea(t, store)

	insertRequest(t, store, client.ID, area.ID, 1, true)
	insertRequest(t, store, client.ID, area.ID, 5, false)

	got, err := store.GetClient(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("GetClient failed: %v", err)
	}
	if got.NextRank != 3 {
		t.Errorf("expected next rank 3, got %d", got.NextRank)
	}
}

func TestRenameAndDeleteClient(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	client := &models.Client{Name: "Old"}
	store.CreateClient(ctx, client)

	if err := store.RenameClient(ctx, client.ID, "New"); err != nil {
		t.Fatalf("RenameClient failed: %v", err)
	}
	got, _ := store.GetClient(ctx, client.ID)
	if got.Name != "New" {
		t.Errorf("expected renamed client, got %q", got.Name)
	}

	if err := store.RenameClient(ctx, 424242, "X"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found renaming missing client, got %v", err)
	}

	if err := store.DeleteClient(ctx, client.ID); err != nil {
		t.Fatalf("DeleteClient failed: %v", err)
	}
	exists, err := store.ClientExists(ctx, client.ID)
	if err != nil {
		t.Fatalf("ClientExists failed: %v", err)
	}
	if exists {
		t.Error("expected client to be deleted")
	}
}

func TestListClients_OrderedByName(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"Charlie", "alpha", "Bravo"} {
		store.CreateClient(ctx, &models.Client{Name: name})
	}

	clients, err := store.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	if len(clients) != 3 {
		t.Fatalf("expected 3 clients, got %d", len(clients))
	}
	if clients[0].Name != "Bravo" || clients[1].Name != "Charlie" || clients[2].Name != "alpha" {
		t.Errorf("unexpected order: %v", clients)
	}
}

func TestListClients_EmptyIsNotNil(t *testing.T) {
	store := setupTestDB(t)

	clients, err := store.ListClients(context.Background())
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	if clients == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestProductAreaCRUD(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	area := &models.ProductArea{Name: "Reports"}
	if err := store.CreateProductArea(ctx, area); err != nil {
		t.Fatalf("CreateProductArea failed: %v", err)
	}
	if err := store.RenameProductArea(ctx, area.ID, "Reporting"); err != nil {
		t.Fatalf("RenameProductArea failed: %v", err)
	}

	areas, err := store.ListProductAreas(ctx)
	if err != nil {
		t.Fatalf("ListProductAreas failed: %v", err)
	}
	if len(areas) != 1 || areas[0].Name != "Reporting" {
		t.Fatalf("unexpected areas: %v", areas)
	}

	if err := store.DeleteProductArea(ctx, area.ID); err != nil {
		t.Fatalf("DeleteProductArea failed: %v", err)
	}
	if _, err := store.GetProductArea(ctx, area.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if err := store.DeleteProductArea(ctx, area.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found deleting twice, got %v", err)
	}
}

func TestDeleteReferencedClient_RestrictedBySchema(t *testing.T) {
	store := setupTestDB(t)
	client, area := seedClientAndArea(t, store)
	insertRequest(t, store, client.ID, area.ID, 1, true)

	if err := store.DeleteClient(context.Background(), client.ID); err == nil {
		t.Error("expected foreign key violation deleting referenced client")
	}
	if err := store.DeleteProductArea(context.Background(), area.ID); err == nil {
		t.Error("expected foreign key violation deleting referenced product area")
	}

	count, err := store.CountClientRequests(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("CountClientRequests failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 request, got %d", count)
	}
	count, err = store.CountProductAreaRequests(context.Background(), area.ID)
	if err != nil {
		t.Fatalf("CountProductAreaRequests failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 request, got %d", count)
	}
}

func TestCreateRequest(t *testing.T) {
	store := setupTestDB(t)
	client, area := seedClientAndArea(t, store)

	req := insertRequest(t, store, client.ID, area.ID, 3, true)
	if req.ID == 0 {
		t.Error("expected request ID to be set")
	}
	if req.CreatedAt.IsZero() || req.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := store.GetRequest(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("GetRequest failed: %v", err)
	}
	if got.Rank != 3 {
		t.Errorf("expected rank 3, got %d", got.Rank)
	}
	if !got.IsActive {
		t.Error("expected request to be active")
	}
	if got.TargetDate.String() != "06/01/2026" {
		t.Errorf("expected target date 06/01/2026, got %q", got.TargetDate.String())
	}
}

func TestCreateRequest_RankMustBeRegistered(t *testing.T) {
	store := setupTestDB(t)
	client, area := seedClientAndArea(t, store)

	req := &models.Request{
		Title:         "Unregistered",
		Description:   "rank 7 is not in the pool",
		ClientID:      client.ID,
		ProductAreaID: area.ID,
		Rank:          7,
		TargetDate:    models.NewDate(2026, time.June, 1),
		IsActive:      true,
	}
	if err := store.CreateRequest(context.Background(), req); err == nil {
		t.Error("expected foreign key violation for unregistered rank")
	}
}

func TestCreateRequest_DuplicateRankForClientRejected(t *testing.T) {
	store := setupTestDB(t)
	client, area := seedClientAndArea(t, store)
	insertRequest(t, store, client.ID, area.ID, 1, true)

	dup := &models.Request{
		Title: "Dup", Description: "Dup", ClientID: client.ID, ProductAreaID: area.ID,
		Rank: 1, TargetDate: models.NewDate(2026, time.June, 1), IsActive: true,
	}
	if err := store.CreateRequest(context.Background(), dup); err == nil {
		t.Error("expected unique violation for duplicate client rank")
	}
}

func TestUpdateRequest(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	client, area := seedClientAndArea(t, store)
	req := insertRequest(t, store, client.ID, area.ID, 1, true)

	store.EnsureRank(ctx, 4)
	req.Title = "Updated"
	req.Rank = 4
	req.TargetDate = models.NewDate(2027, time.January, 2)
	if err := store.UpdateRequest(ctx, req); err != nil {
		t.Fatalf("UpdateRequest failed: %v", err)
	}

	got, _ := store.GetRequest(ctx, req.ID)
	if got.Title != "Updated" || got.Rank != 4 {
		t.Errorf("unexpected request after update: %+v", got)
	}
	if got.TargetDate.String() != "01/02/2027" {
		t.Errorf("expected target date 01/02/2027, got %q", got.TargetDate.String())
	}

	missing := *req
	missing.ID = 99999
	if err := store.UpdateRequest(ctx, &missing); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestSetRequestActive_KeepsRank(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	client, area := seedClientAndArea(t, store)
	req := insertRequest(t, store, client.ID, area.ID, 2, true)

	if err := store.SetRequestActive(ctx, req.ID, false); err != nil {
		t.Fatalf("SetRequestActive failed: %v", err)
	}

	got, _ := store.GetRequest(ctx, req.ID)
	if got.IsActive {
		t.Error("expected request to be completed")
	}
	if got.Rank != 2 {
		t.Errorf("expected rank to stay 2, got %d", got.Rank)
	}
}

func TestDeleteRequest(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	client, area := seedClientAndArea(t, store)
	req := insertRequest(t, store, client.ID, area.ID, 1, true)

	if err := store.DeleteRequest(ctx, req.ID); err != nil {
		t.Fatalf("DeleteRequest failed: %v", err)
	}
	exists, _ := store.RequestExists(ctx, req.ID)
	if exists {
		t.Error("expected request to be deleted")
	}
	if err := store.DeleteRequest(ctx, req.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestListRequests_FilteredAndOrdered(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	client, area := seedClientAndArea(t, store)
	other := &models.Client{Name: "Client B"}
	store.CreateClient(ctx, other)

	r3 := insertRequest(t, store, client.ID, area.ID, 3, true)
	r1 := insertRequest(t, store, client.ID, area.ID, 1, true)
	o1 := insertRequest(t, store, other.ID, area.ID, 1, true)
	done := insertRequest(t, store, client.ID, area.ID, 2, false)

	active, err := store.ListRequests(ctx, true)
	if err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	wantIDs := []int64{r1.ID, o1.ID, r3.ID}
	if len(active) != len(wantIDs) {
		t.Fatalf("expected %d active requests, got %d", len(wantIDs), len(active))
	}
	for i, id := range wantIDs {
		if active[i].ID != id {
			t.Errorf("position %d: expected request %d, got %d", i, id, active[i].ID)
		}
	}

	first := active[0]
	if first.Client == nil || first.Client.Name != "Client A" {
		t.Fatalf("expected expanded client, got %+v", first.Client)
	}
	if first.Client.NextRank != 4 {
		t.Errorf("expected client next rank 4, got %d", first.Client.NextRank)
	}
	if first.ProductArea == nil || first.ProductArea.Name != "Billing" {
		t.Errorf("expected expanded product area, got %+v", first.ProductArea)
	}

	completed, err := store.ListRequests(ctx, false)
	if err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != done.ID {
		t.Errorf("expected only the completed request, got %v", completed)
	}
}

func TestEnsureRank_Idempotent(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	for _, rank := range []int{3, 1, 3, 2, 1} {
		if err := store.EnsureRank(ctx, rank); err != nil {
			t.Fatalf("EnsureRank(%d) failed: %v", rank, err)
		}
	}

	ranks, err := store.ListRanks(ctx)
	if err != nil {
		t.Fatalf("ListRanks failed: %v", err)
	}
	want := []int{1, 2, 3}
	if len(ranks) != len(want) {
		t.Fatalf("expected ranks %v, got %v", want, ranks)
	}
	for i := range want {
		if ranks[i] != want[i] {
			t.Errorf("expected ranks %v, got %v", want, ranks)
			break
		}
	}
}

func TestEnsureRank_RejectsOutOfRange(t *testing.T) {
	store := setupTestDB(t)

	for _, rank := range []int{0, -1, models.MaxRank + 1} {
		if err := store.EnsureRank(context.Background(), rank); !errors.Is(err, models.ErrValidation) {
			t.Errorf("EnsureRank(%d): expected validation error, got %v", rank, err)
		}
	}
}

func TestRankTakenAndRequestsFromRank(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	client, area := seedClientAndArea(t, store)

	insertRequest(t, store, client.ID, area.ID, 1, true)
	insertRequest(t, store, client.ID, area.ID, 2, false)
	insertRequest(t, store, client.ID, area.ID, 4, true)

	taken, err := store.RankTaken(ctx, client.ID, 2)
	if err != nil {
		t.Fatalf("RankTaken failed: %v", err)
	}
	if !taken {
		t.Error("expected completed request to hold rank 2")
	}
	taken, _ = store.RankTaken(ctx, client.ID, 3)
	if taken {
		t.Error("expected rank 3 to be free")
	}

	from, err := store.RequestsFromRank(ctx, client.ID, 2)
	if err != nil {
		t.Fatalf("RequestsFromRank failed: %v", err)
	}
	if len(from) != 2 || from[0].Rank != 4 || from[1].Rank != 2 {
		t.Errorf("expected ranks [4 2], got %v", from)
	}
}

func TestInTx_RollsBackOnError(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.InTx(ctx, func(ctx context.Context, q Queries) error {
		if err := q.CreateClient(ctx, &models.Client{Name: "Ghost"}); err != nil {
			return err
		}
		if err := q.EnsureRank(ctx, 9); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	clients, _ := store.ListClients(ctx)
	if len(clients) != 0 {
		t.Errorf("expected no clients after rollback, got %v", clients)
	}
	ranks, _ := store.ListRanks(ctx)
	if len(ranks) != 0 {
		t.Errorf("expected no ranks after rollback, got %v", ranks)
	}
}

func TestInTx_Commits(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	err := store.InTx(ctx, func(ctx context.Context, q Queries) error {
		return q.CreateClient(ctx, &models.Client{Name: "Kept"})
	})
	if err != nil {
		t.Fatalf("InTx failed: %v", err)
	}

	clients, _ := store.ListClients(ctx)
	if len(clients) != 1 {
		t.Errorf("expected committed client, got %v", clients)
	}
}

func TestInTx_CommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store, err := NewFromDB(db, DriverSQLite)
	if err != nil {
		t.Fatalf("NewFromDB failed: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO rank_pool`).WithArgs(1).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("disk I/O error"))

	err = store.InTx(context.Background(), func(ctx context.Context, q Queries) error {
		return q.EnsureRank(ctx, 1)
	})
	if err == nil {
		t.Fatal("expected commit failure")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestNewFromDB_UnknownDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	if _, err := NewFromDB(db, "oracle"); err == nil {
		t.Error("expected error for unknown driver")
	}
	if _, err := New("oracle", "dsn"); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename string
		version  int
		name     string
		wantErr  bool
	}{
		{filename: "001_init.sql", version: 1, name: "init"},
		{filename: "002_users.sql", version: 2, name: "users"},
		{filename: "010_add_index_on_rank.sql", version: 10, name: "add_index_on_rank"},
		{filename: "init.sql", wantErr: true},
		{filename: "abc_init.sql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, err := parseMigrationFilename(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if version != tt.version || name != tt.name {
				t.Errorf("got (%d, %q), want (%d, %q)", version, name, tt.version, tt.name)
			}
		})
	}
}

func TestLoadMigrations_BothDialects(t *testing.T) {
	for _, d := range dialects {
		migrations, err := loadMigrations(d.migrationsDir)
		if err != nil {
			t.Fatalf("loadMigrations(%s) failed: %v", d.migrationsDir, err)
		}
		if len(migrations) != 2 {
			t.Fatalf("%s: expected 2 migrations, got %d", d.driver, len(migrations))
		}
		if migrations[0].version != 1 || migrations[1].version != 2 {
			t.Errorf("%s: migrations not sorted: %v", d.driver, migrations)
		}
	}
}

func TestNewSQLiteStore_ReopenKeepsDataAndSkipsAppliedMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "backlog.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	client := &models.Client{Name: "Persisted"}
	if err := store.CreateClient(ctx, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	store, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	got, err := store.GetClient(ctx, client.ID)
	if err != nil {
		t.Fatalf("expected client to persist: %v", err)
	}
	if got.Name != "Persisted" {
		t.Fatalf("expected Persisted, got %s", got.Name)
	}

	applied, err := store.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations failed: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("expected 2 applied migrations, got %d", len(applied))
	}
	if applied[0].Name != "init" || applied[1].Name != "users" {
		t.Errorf("unexpected migrations: %+v", applied)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected db file to exist: %v", err)
	}
}

func TestUsers(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	user := &models.User{
		FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Hash: "h",
		IsActive: true, Status: models.DefaultUserStatus, Role: models.DefaultUserRole,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := store.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Email != "ann@example.com" || got.Role != "user" || got.Status != 3 || !got.IsActive {
		t.Errorf("unexpected user: %+v", got)
	}

	byEmail, err := store.GetUserByEmail(ctx, "ann@example.com")
	if err != nil || byEmail == nil || byEmail.ID != user.ID {
		t.Errorf("GetUserByEmail: got %+v, %v", byEmail, err)
	}
	missing, err := store.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Errorf("expected (nil, nil) for unknown email, got %+v, %v", missing, err)
	}

	if err := store.CreateUser(ctx, &models.User{FirstName: "A", LastName: "B", Email: "ann@example.com", Hash: "h", Role: "user"}); err == nil {
		t.Error("expected unique violation for duplicate email")
	}
}
