package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/angelmondragon/pharmacy-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one %s migration, found %d", suffix, len(matches))
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks ...string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestInventoryMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_inventory_items"),
		"CREATE TABLE IF NOT EXISTS inventory_items",
		"CHECK (quantity >= 0)",
		"CHECK (price >= 0)",
		"numeric(12,2)",
		"DROP TABLE IF EXISTS inventory_items",
	)
}

func TestCartMigrationHasNoInventoryForeignKey(t *testing.T) {
	content := readMigration(t, "create_cart_items")
	assertContains(t, content,
		"CREATE TYPE cart_item_status AS ENUM ('active', 'consumed')",
		"CHECK (quantity > 0)",
	)
	if strings.Contains(content, "REFERENCES inventory_items") {
		t.Errorf("cart items must not reference inventory items")
	}
}

func TestOrdersMigrationPinsStatusWireValues(t *testing.T) {
	assertContains(t, readMigration(t, "create_orders"),
		"CREATE TYPE order_status AS ENUM ('pending', 'in_progress', 'completed', 'cancelled')",
		"REFERENCES inventory_items(id) ON DELETE RESTRICT",
		"CHECK (sub_total = quantity * unit_price)",
		"DROP TABLE IF EXISTS checkouts",
	)
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	if err := migrate.ValidateFS(migrate.Embedded()); err != nil {
		t.Fatalf("validate embedded migrations: %v", err)
	}
	embedded, err := fs.Glob(migrate.Embedded(), "*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob disk: %v", err)
	}
	if len(embedded) != len(onDisk) || len(embedded) == 0 {
		t.Fatalf("embedded %d migrations, disk has %d", len(embedded), len(onDisk))
	}
}

func TestValidateFSRejectsDuplicateVersions(t *testing.T) {
	body := []byte("-- +goose Up\n-- +goose Down\n")
	fsys := fstest.MapFS{
		"20260101000000_a.sql": {Data: body},
		"20260101000000_b.sql": {Data: body},
	}
	if err := migrate.ValidateFS(fsys); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate version error, got %v", err)
	}
}

func TestValidateFSRequiresDownSection(t *testing.T) {
	fsys := fstest.MapFS{"20260101000000_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")}}
	if err := migrate.ValidateFS(fsys); err == nil {
		t.Fatal("expected missing down section error")
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatalf("expected invalid filename error")
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Pharmacist Notes!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(path, "_add_pharmacist_notes.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected a name without letters or digits to be rejected")
	}
}
