package test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hrygo/eidos/internal/profile"
	"github.com/hrygo/eidos/internal/version"
	"github.com/hrygo/eidos/store"
	"github.com/hrygo/eidos/store/db"
)

// NewTestingStore returns a migrated store backed by a fresh temporary database.
// DRIVER=postgres with POSTGRES_TEST_DSN runs against an external PostgreSQL instead of SQLite.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	p := getTestingProfile(t)
	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	s := store.New(dbDriver, p)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func getTestingProfile(t *testing.T) *profile.Profile {
	t.Helper()
	dir := t.TempDir()
	driver := getDriverFromEnv()
	p := &profile.Profile{
		Mode:    "dev",
		Data:    dir,
		Driver:  driver,
		Version: version.GetCurrentVersion("dev"),
	}
	switch driver {
	case "postgres":
		dsn := os.Getenv("POSTGRES_TEST_DSN")
		if dsn == "" {
			t.Skip("POSTGRES_TEST_DSN is not set")
		}
		p.DSN = dsn
	default:
		p.DSN = filepath.Join(dir, fmt.Sprintf("eidos_%s.db", p.Mode))
	}
	return p
}

func getDriverFromEnv() string {
	driver := os.Getenv("DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	return driver
}

// CreateTestingUser inserts a plain user named username.
func CreateTestingUser(ctx context.Context, ts *store.Store, username string) (*store.User, error) {
	return ts.CreateUser(ctx, &store.User{
		Username: username,
		Role:     store.RoleUser,
		Email:    username + "@example.com",
		Nickname: username,
	})
}
