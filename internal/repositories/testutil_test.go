package repositories

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"repair-backend/internal/database"
	"repair-backend/internal/models"
	"repair-backend/migrations"
)

// testPool connects to the database named by TEST_DATABASE_URL and ensures
// the schema exists. Repository tests are skipped when the variable is
// unset, so the suite stays runnable without infrastructure.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.NewMigrator(pool, migrations.FS, ".").RunMigrations(ctx); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return pool
}

// testUser creates a throwaway user for rows carrying an author foreign key.
func testUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool) int {
	t.Helper()
	u := &models.User{
		Name:         "Test Tech",
		Email:        fmt.Sprintf("tech-%d@test.local", time.Now().UnixNano()),
		PasswordHash: "x",
	}
	if err := NewUserRepository(pool).Create(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DELETE FROM users WHERE id=$1", u.ID)
	})
	return u.ID
}
