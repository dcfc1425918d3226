package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"seathub/pkg/domain"
)

func newTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "seathub.db")
	ctx := context.Background()

	store := newTestStore(t, path)
	if err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if err := tx.SetOwner("alice"); err != nil {
			return err
		}
		if err := tx.SetTokenConfig(domain.TokenConfig{Name: "Seats", Symbol: "SEAT", Minter: "alice"}); err != nil {
			return err
		}
		if err := tx.PutToken(domain.Token{ID: "1", Owner: "alice"}); err != nil {
			return err
		}
		return tx.MarkRedeemed("1")
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := newTestStore(t, path)
	if err := reopened.View(ctx, func(view domain.TransactionView) error {
		if owner, ok := view.Owner(); !ok || owner != "alice" {
			t.Fatalf("owner not restored, got %q", owner)
		}
		if cfg, ok := view.TokenConfig(); !ok || cfg.Symbol != "SEAT" {
			t.Fatalf("token config not restored: %+v", cfg)
		}
		if _, ok := view.FindToken("1"); !ok {
			t.Fatal("token not restored")
		}
		if !view.IsRedeemed("1") {
			t.Fatal("redemption not restored")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestFailedTransactionLeavesSnapshotUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seathub.db")
	ctx := context.Background()

	store := newTestStore(t, path)
	if err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.SetOwner("alice")
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	failure := errors.New("boom")
	if err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if err := tx.SetOwner("mallory"); err != nil {
			return err
		}
		return failure
	}); !errors.Is(err, failure) {
		t.Fatalf("expected propagated failure, got %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := newTestStore(t, path)
	if err := reopened.View(ctx, func(view domain.TransactionView) error {
		if owner, ok := view.Owner(); !ok || owner != "alice" {
			t.Fatalf("expected owner alice after rollback, got %q", owner)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "seathub.db")
	store := newTestStore(t, path)
	if store.Path() != path {
		t.Fatalf("expected path %s, got %s", path, store.Path())
	}
	if store.DB() == nil {
		t.Fatal("expected live database handle")
	}
}
