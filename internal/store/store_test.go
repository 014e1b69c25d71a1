package store

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	// Verify the database file doesn't exist yet
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	// Verify the database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	// Verify that the expected tables exist by querying them
	tables := []string{"events", "ledger", "redeemed_vouchers", "settings"}
	for _, table := range tables {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q should exist after migrations: %v", table, err)
		}
	}
}

func TestStore_Close(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("close should not return error: %v", err)
	}

	// After closing, DB operations should fail
	if _, err := s.DB().Exec("SELECT 1"); err == nil {
		t.Error("DB operations should fail after close")
	}
}

func TestStore_IndexesCreated(t *testing.T) {
	s := newTestStore(t)

	indexes := []string{
		"idx_events_timestamp",
		"idx_events_material",
	}
	for _, idx := range indexes {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?",
			idx,
		).Scan(&name)
		if err != nil {
			t.Errorf("index %q should exist after migrations: %v", idx, err)
		}
	}
}

func TestSettings_GetSet(t *testing.T) {
	s := newTestStore(t)
	settings := s.Settings()

	if _, err := settings.Get("missing"); err != ErrNotFound {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := settings.Set("kiosk_name", "Block 123"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, err := settings.Get("kiosk_name")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "Block 123" {
		t.Errorf("value = %q, want %q", value, "Block 123")
	}

	// Overwrite
	if err := settings.Set("kiosk_name", "Green Mall"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if value, _ := settings.Get("kiosk_name"); value != "Green Mall" {
		t.Errorf("value = %q, want %q", value, "Green Mall")
	}
}

func TestSettings_Bool(t *testing.T) {
	s := newTestStore(t)
	settings := s.Settings()

	accepted, err := settings.GetBool(SettingTermsAccepted)
	if err != nil {
		t.Fatalf("GetBool() error = %v", err)
	}
	if accepted {
		t.Error("terms should default to not accepted")
	}

	if err := settings.SetBool(SettingTermsAccepted, true); err != nil {
		t.Fatalf("SetBool() error = %v", err)
	}

	accepted, err = settings.GetBool(SettingTermsAccepted)
	if err != nil {
		t.Fatalf("GetBool() error = %v", err)
	}
	if !accepted {
		t.Error("terms should be accepted after SetBool(true)")
	}
}
