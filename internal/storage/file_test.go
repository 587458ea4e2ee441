package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := OpenFile(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(KeyAuthToken, "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(KeyCart, `[{"productId":1}]`); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened, err := OpenFile(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, ok := reopened.Get(KeyAuthToken); !ok || v != "tok-1" {
		t.Fatalf("expected persisted token, got %q ok=%v", v, ok)
	}
	if v, ok := reopened.Get(KeyCart); !ok || v != `[{"productId":1}]` {
		t.Fatalf("expected persisted cart, got %q ok=%v", v, ok)
	}
}

func TestFileStoreRemovePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := OpenFile(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(KeyAuthToken, "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Remove(KeyAuthToken); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove("never-set"); err != nil {
		t.Fatalf("remove absent key: %v", err)
	}

	reopened, err := OpenFile(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, ok := reopened.Get(KeyAuthToken); ok {
		t.Fatal("expected removed key to stay removed")
	}
}

func TestFileStoreCorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	s, err := OpenFile(path, nil)
	if err != nil {
		t.Fatalf("expected corrupt file to degrade, got %v", err)
	}
	if _, ok := s.Get(KeyCart); ok {
		t.Fatal("expected empty store")
	}
	if err := s.Set(KeyCart, "[]"); err != nil {
		t.Fatalf("expected store usable after corruption: %v", err)
	}
}

func TestFileStoreMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "state.json")
	s, err := OpenFile(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(KeyAuthRole, "USER"); err != nil {
		t.Fatalf("set creates parent dir: %v", err)
	}
	if v, _ := s.Get(KeyAuthRole); v != "USER" {
		t.Fatalf("expected value back, got %q", v)
	}
}
