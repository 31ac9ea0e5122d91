package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pasofino/tienda-backend/pkg/config"
	"github.com/pasofino/tienda-backend/pkg/db"
)

func newTestClient(t *testing.T) *db.Client {
	t.Helper()

	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: "sqlite"}, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	ddl := `CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL DEFAULT '',
  first_name TEXT,
  last_name TEXT,
  phone TEXT,
  address TEXT,
  city TEXT,
  postal_code TEXT,
  guest INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	if err := client.DB().Exec(ddl).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	return client
}
