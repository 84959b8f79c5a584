package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() error = %v", err)
	}

	if _, err := db.Exec("INSERT INTO kv (key, value) VALUES (?, ?)", "k", []byte("v")); err != nil {
		t.Errorf("insert into kv failed: %v", err)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 2; i++ {
		if err := MigrateUp(db); err != nil {
			t.Fatalf("MigrateUp() run %d error = %v", i+1, err)
		}
	}
}

func TestCheckDBMigrationStatus_Unmigrated(t *testing.T) {
	db := openTestDB(t)

	if err := CheckDBMigrationStatus(db); err == nil {
		t.Error("CheckDBMigrationStatus() on fresh database succeeded, want error")
	}
}

func TestKVPrimaryKey(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	if _, err := db.Exec("INSERT INTO kv (key, value) VALUES ('a', x'00')"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO kv (key, value) VALUES ('a', x'01')"); err == nil {
		t.Error("duplicate key insert succeeded, want constraint violation")
	}
}

// openTestDB opens an in-memory SQLite database pinned to one connection.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
