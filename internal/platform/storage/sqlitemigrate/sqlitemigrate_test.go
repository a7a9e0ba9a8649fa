package sqlitemigrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countRows(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var count int
	if err := db.QueryRow(query).Scan(&count); err != nil {
		t.Fatalf("count query %q: %v", query, err)
	}
	return count
}

func TestApplyRunsMigrationsInOrder(t *testing.T) {
	db := openTestDB(t)
	migrations := fstest.MapFS{
		"002_rename.sql": &fstest.MapFile{Data: []byte(`ALTER TABLE things RENAME TO items;`)},
		"001_things.sql": &fstest.MapFile{Data: []byte(`CREATE TABLE things (id TEXT PRIMARY KEY);`)},
	}

	if err := Apply(db, migrations); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := countRows(t, db, "SELECT COUNT(1) FROM items"); got != 0 {
		t.Errorf("items table missing or not empty: %d", got)
	}
	if got := countRows(t, db, "SELECT COUNT(1) FROM schema_migrations"); got != 2 {
		t.Errorf("schema_migrations rows = %d, want 2", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	migrations := fstest.MapFS{
		"001_things.sql": &fstest.MapFile{Data: []byte(`CREATE TABLE things (id TEXT PRIMARY KEY);`)},
	}

	if err := Apply(db, migrations); err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}
	if err := Apply(db, migrations); err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if got := countRows(t, db, "SELECT COUNT(1) FROM schema_migrations"); got != 1 {
		t.Errorf("schema_migrations rows = %d, want 1", got)
	}
}

func TestApplyPicksUpNewMigrations(t *testing.T) {
	db := openTestDB(t)
	first := fstest.MapFS{
		"001_things.sql": &fstest.MapFile{Data: []byte(`CREATE TABLE things (id TEXT PRIMARY KEY);`)},
	}
	if err := Apply(db, first); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	second := fstest.MapFS{
		"001_things.sql":  &fstest.MapFile{Data: []byte(`CREATE TABLE things (id TEXT PRIMARY KEY);`)},
		"002_widgets.sql": &fstest.MapFile{Data: []byte(`CREATE TABLE widgets (id TEXT PRIMARY KEY);`)},
	}
	if err := Apply(db, second); err != nil {
		t.Fatalf("Apply() with new file error = %v", err)
	}
	if got := countRows(t, db, "SELECT COUNT(1) FROM widgets"); got != 0 {
		t.Errorf("widgets table missing: %d", got)
	}
}

func TestApplyFailedMigrationIsNotRecorded(t *testing.T) {
	db := openTestDB(t)
	broken := fstest.MapFS{
		"001_broken.sql": &fstest.MapFile{Data: []byte(`CREATE TABLEX broken;`)},
	}
	if err := Apply(db, broken); err == nil {
		t.Fatalf("Apply() succeeded with invalid SQL")
	}
	if got := countRows(t, db, "SELECT COUNT(1) FROM schema_migrations"); got != 0 {
		t.Errorf("failed migration was recorded: %d rows", got)
	}
}
