package database

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", User: "shop", Password: "p w'd", Name: "store"}
	want := `user=shop password='p w\'d' host=db port=5432 dbname=store sslmode=disable`
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
}

func TestConfigURL(t *testing.T) {
	cfg := Config{Host: "db", Port: 6432, User: "shop", Password: "s@cret", Name: "store", SSLMode: "require"}
	want := "postgres://shop:s%40cret@db:6432/store?sslmode=require"
	if got := cfg.URL(); got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.Port != 5432 || cfg.SSLMode != "disable" || cfg.MaxConnections != 10 || cfg.MigrationsDir != "migrations" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestMigrationFileSelection(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_orders.up.sql",
		"000001_init.up.sql",
		"000001_init.down.sql",
		"000003_stock.up.sql",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files := listMigrationFiles(dir)
	want := []string{"000001_init.up.sql", "000002_orders.up.sql", "000003_stock.up.sql"}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("files = %v", files)
	}
	if got := appliedBetween(files, 1, 3); !reflect.DeepEqual(got, want[1:]) {
		t.Fatalf("applied = %v", got)
	}
	if got := appliedBetween(files, 3, 3); got != nil {
		t.Fatalf("expected nothing applied, got %v", got)
	}
}
