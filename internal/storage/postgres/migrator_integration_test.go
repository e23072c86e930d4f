package postgres

import (
	"context"
	"testing"
	"time"
)

func TestMigrateUpDownIntegration(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status: %v", err)
	}
	if version == 0 || count == 0 {
		t.Fatalf("expected applied migrations, got version=%d count=%d", version, count)
	}

	// Повторный up должен быть no-op.
	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("second migrate up: %v", err)
	}
	version2, count2, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status: %v", err)
	}
	if version2 != version || count2 != count {
		t.Fatalf("repeated up changed status: %d/%d -> %d/%d", version, count, version2, count2)
	}

	// Откат одного шага уменьшает количество применённых миграций.
	if err := store.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	_, count3, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status: %v", err)
	}
	if count3 != count-1 {
		t.Fatalf("expected %d applied after down, got %d", count-1, count3)
	}

	// Возвращаем схему на место для остальных тестов.
	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("restore migrate up: %v", err)
	}
}
