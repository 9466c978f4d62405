package webhook_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-booking/internal/models"
	"ms-booking/internal/webhook"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupStore(t *testing.T) *webhook.Store {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if err := bunDB.ResetModel(context.Background(), (*models.User)(nil)); err != nil {
		t.Fatalf("Failed to reset model: %v", err)
	}

	return webhook.NewStore(bunDB)
}

func countUsers(t *testing.T, store *webhook.Store) int {
	t.Helper()
	count, err := store.Bun.NewSelect().Model((*models.User)(nil)).Count(context.Background())
	if err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	return count
}

func TestUpsertUserInsertsAndUpdates(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	user := models.User{ID: "sub_1", Email: "a@example.com", FirstName: "A", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := store.UpsertUser(ctx, &user); err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}

	user.FirstName = "Alice"
	if err := store.UpsertUser(ctx, &user); err != nil {
		t.Fatalf("Failed to update user: %v", err)
	}

	if n := countUsers(t, store); n != 1 {
		t.Fatalf("Expected 1 user, got %d", n)
	}

	var stored models.User
	if err := store.Bun.NewSelect().Model(&stored).Where("id = ?", "sub_1").Scan(ctx); err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	if stored.FirstName != "Alice" {
		t.Errorf("Expected updated first name, got %s", stored.FirstName)
	}
}

func TestUpsertUserRekeysKnownEmail(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	original := models.User{ID: "sub_old", Email: "a@example.com", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := store.UpsertUser(ctx, &original); err != nil {
		t.Fatalf("Failed to insert original user: %v", err)
	}

	// Provider recreated the account: same email, new subject.
	recreated := models.User{ID: "sub_new", Email: "a@example.com", FirstName: "New", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := store.UpsertUser(ctx, &recreated); err != nil {
		t.Fatalf("Failed to re-key user: %v", err)
	}

	if n := countUsers(t, store); n != 1 {
		t.Fatalf("Expected 1 user after re-key, got %d", n)
	}

	var stored models.User
	if err := store.Bun.NewSelect().Model(&stored).Where("email = ?", "a@example.com").Scan(ctx); err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	if stored.ID != "sub_new" {
		t.Errorf("Expected re-keyed id sub_new, got %s", stored.ID)
	}
}
