package db

import (
	"path/filepath"
	"testing"
)

func TestOpenAppliesPragmas(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "pragma.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	var mode string
	if err := database.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode=%q, want wal", mode)
	}
}

func TestOpenEnablesForeignKeysOnEveryConnection(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()
	database.SetMaxOpenConns(4)

	for i := 0; i < 4; i++ {
		var on int
		if err := database.QueryRow(`PRAGMA foreign_keys`).Scan(&on); err != nil {
			t.Fatalf("read foreign_keys: %v", err)
		}
		if on != 1 {
			t.Fatalf("foreign_keys=%d, want 1", on)
		}
	}
}

func TestDSNKeepsExistingFilePrefix(t *testing.T) {
	got := dsn("file:test.db")
	if got[:len("file:test.db?")] != "file:test.db?" {
		t.Fatalf("unexpected dsn %q", got)
	}
}
