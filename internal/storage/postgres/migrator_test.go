package postgres

import (
	"testing"
	"testing/fstest"
)

func TestLoadMigrationsFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/migrations/0002_create_orders.up.sql":     {Data: []byte("CREATE TABLE orders ()")},
		"sql/migrations/0002_create_orders.down.sql":   {Data: []byte("DROP TABLE orders")},
		"sql/migrations/0001_create_products.up.sql":   {Data: []byte("CREATE TABLE products ()")},
		"sql/migrations/0001_create_products.down.sql": {Data: []byte("DROP TABLE products")},
	}

	migrations, err := loadMigrationsFromFS(fsys)
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	// Миграции должны быть отсортированы по версии.
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Fatalf("unexpected order: %+v", migrations)
	}
	if migrations[0].Name != "create_products" {
		t.Errorf("unexpected name: %s", migrations[0].Name)
	}
	if migrations[0].UpSQL == "" || migrations[0].DownSQL == "" {
		t.Error("migration scripts should be loaded")
	}
}

func TestLoadMigrationsFromFS_BadName(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/migrations/not-a-migration.sql": {Data: []byte("SELECT 1")},
	}

	if _, err := loadMigrationsFromFS(fsys); err == nil {
		t.Fatal("expected error for malformed migration file name")
	}
}

func TestLoadMigrationsFromFS_MissingUp(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/migrations/0001_create_products.down.sql": {Data: []byte("DROP TABLE products")},
	}

	if _, err := loadMigrationsFromFS(fsys); err == nil {
		t.Fatal("expected error for migration without up script")
	}
}

func TestEmbeddedMigrationsAreWellFormed(t *testing.T) {
	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		t.Fatalf("load embedded migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected embedded migrations")
	}
	for _, m := range migrations {
		if m.UpSQL == "" || m.DownSQL == "" {
			t.Errorf("migration %d_%s is missing a script", m.Version, m.Name)
		}
	}
}
