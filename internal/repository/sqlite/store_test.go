package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mamadbah2/eggtracker/internal/repository"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "eggs.db")
	s, err := NewStore(context.Background(), dbPath, nil)
	if err != nil {
		t.Fatalf("NewStore(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestNewStore(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}

func TestStore_GetPut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testStore(t)

	t.Run("missing key", func(t *testing.T) {
		_, found, err := s.Get(ctx, repository.KeyInventory)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if found {
			t.Error("found = true for missing key")
		}
	})

	t.Run("put then overwrite", func(t *testing.T) {
		if err := s.Put(ctx, repository.KeyCartons, []byte(`[]`)); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if err := s.Put(ctx, repository.KeyCartons, []byte(`[{"id":"a"}]`)); err != nil {
			t.Fatalf("Put overwrite: %v", err)
		}
		got, found, err := s.Get(ctx, repository.KeyCartons)
		if err != nil || !found {
			t.Fatalf("Get: found=%v err=%v", found, err)
		}
		if string(got) != `[{"id":"a"}]` {
			t.Errorf("Get = %s", got)
		}
	})
}

func TestStore_PutAllReplacesEverything(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := testStore(t)

	if err := s.Put(ctx, repository.KeyModePolicy, []byte(`{"speedModeEnabled":false}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	err := s.PutAll(ctx, map[repository.Key][]byte{
		repository.KeyInventory: []byte(`{"brown":4}`),
	})
	if err != nil {
		t.Fatalf("PutAll: %v", err)
	}

	if _, found, _ := s.Get(ctx, repository.KeyModePolicy); found {
		t.Error("modePolicy survived PutAll without it")
	}
	got, found, err := s.Get(ctx, repository.KeyInventory)
	if err != nil || !found {
		t.Fatalf("Get inventory: found=%v err=%v", found, err)
	}
	if string(got) != `{"brown":4}` {
		t.Errorf("inventory = %s", got)
	}
}

func TestStore_Reopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "eggs.db")

	s, err := NewStore(ctx, dbPath, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.Put(ctx, repository.KeyInventory, []byte(`{"white":2}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s.Close(ctx)

	s2, err := NewStore(ctx, dbPath, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close(ctx)
	got, found, err := s2.Get(ctx, repository.KeyInventory)
	if err != nil || !found || string(got) != `{"white":2}` {
		t.Errorf("after reopen Get = %s, %v, %v", got, found, err)
	}
}
