package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/vire-optimizer/internal/common"
	"github.com/bobmcallan/vire-optimizer/internal/interfaces"
)

func TestStore_SetGetDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	s := NewStore(path, common.NewSilentLogger())
	ctx := context.Background()

	if _, err := s.Get(ctx, "jwt"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected ErrNotFound before first write, got %v", err)
	}

	if err := s.Set(ctx, "jwt", "token"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, err := s.Get(ctx, "jwt")
	if err != nil || val != "token" {
		t.Errorf("expected token, got %q (%v)", val, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("store file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions, got %o", perm)
	}

	if err := s.Delete(ctx, "jwt"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "jwt"); err != nil {
		t.Errorf("Delete of missing key should not error: %v", err)
	}
	if _, err := s.Get(ctx, "jwt"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	if err := NewStore(path, common.NewSilentLogger()).Set(ctx, "jwt", "persisted"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	all, err := NewStore(path, common.NewSilentLogger()).GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if all["jwt"] != "persisted" {
		t.Errorf("expected persisted token, got %v", all)
	}
}

func TestStore_CorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, common.NewSilentLogger())
	if _, err := s.Get(context.Background(), "jwt"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected corrupt file to read as empty, got %v", err)
	}

	if err := s.Set(context.Background(), "jwt", "fresh"); err != nil {
		t.Fatalf("Set over corrupt file failed: %v", err)
	}
	if val, _ := s.Get(context.Background(), "jwt"); val != "fresh" {
		t.Errorf("expected fresh, got %s", val)
	}
}
