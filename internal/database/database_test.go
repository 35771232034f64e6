package database

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestNew_RunsMigrations(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "shift.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"kv_store", "time_tracker_events"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("expected table %s: %v", table, err)
		}
	}
}
