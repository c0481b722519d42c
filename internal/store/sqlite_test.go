package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nhle/todoclient/internal/session"
	"github.com/nhle/todoclient/internal/store"
	"github.com/nhle/todoclient/tests/testutil"
)

func TestPreferences_CRUD(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if _, err := s.GetPreference(ctx, session.KeyRememberedEmail); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("GetPreference on empty store = %v, want ErrNotFound", err)
	}

	if err := s.SetPreference(ctx, session.KeyRememberedEmail, "a@x.io"); err != nil {
		t.Fatalf("SetPreference: %v", err)
	}
	if err := s.SetPreference(ctx, session.KeyRememberedEmail, "b@x.io"); err != nil {
		t.Fatalf("SetPreference overwrite: %v", err)
	}

	got, err := s.GetPreference(ctx, session.KeyRememberedEmail)
	if err != nil {
		t.Fatalf("GetPreference: %v", err)
	}
	if got != "b@x.io" {
		t.Errorf("GetPreference = %q, want b@x.io", got)
	}

	if err := s.DeletePreference(ctx, session.KeyRememberedEmail); err != nil {
		t.Fatalf("DeletePreference: %v", err)
	}
	if err := s.DeletePreference(ctx, session.KeyRememberedEmail); err != nil {
		t.Fatalf("DeletePreference on absent key: %v", err)
	}
	if _, err := s.GetPreference(ctx, session.KeyRememberedEmail); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("GetPreference after delete = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_AsSessionStore(t *testing.T) {
	var s session.Store = testutil.NewTestStore(t)

	if err := s.Set(session.KeyRememberMe, "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := s.Get(session.KeyRememberMe)
	if err != nil || v != "true" {
		t.Fatalf("Get = %q, %v", v, err)
	}
}

func TestNewSQLiteStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := s.SetPreference(ctx, "k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// Migrations must not re-run against an existing schema.
	s, err = store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()

	v, err := s.SchemaVersion(ctx)
	if err != nil || v != 1 {
		t.Fatalf("SchemaVersion = %d, %v", v, err)
	}
	got, err := s.GetPreference(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("GetPreference after reopen = %q, %v", got, err)
	}
}
