package redeemable

import (
	"context"
	"errors"
	"testing"
	"time"

	"seathub/internal/infra/persistence/memory"
	"seathub/internal/modules/token"
	"seathub/pkg/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newStoreWithToken(t *testing.T, id string, owner domain.Address) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return token.Mint(tx, testNow, token.MintMsg{TokenID: id, Owner: owner})
	}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	return store
}

func redeem(store *memory.Store, sender domain.Address, id string) error {
	return store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := Module{}.Execute(tx, domain.Env{Now: testNow}, domain.MsgInfo{Sender: sender}, ExecuteMsg{Redeem: &RedeemMsg{TokenID: id}})
		return err
	})
}

func TestRedeemIsOneTime(t *testing.T) {
	store := newStoreWithToken(t, "1", "alice")
	if err := redeem(store, "alice", "1"); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if err := redeem(store, "alice", "1"); !domain.IsConflict(err) {
		t.Fatalf("expected conflict on second redeem, got %v", err)
	}

	if err := store.View(context.Background(), func(view domain.TransactionView) error {
		out, err := Module{}.Query(view, domain.Env{}, QueryMsg{IsRedeemed: &IsRedeemedMsg{TokenID: "1"}})
		if err != nil {
			return err
		}
		if !out.(IsRedeemedResponse).IsRedeemed {
			t.Fatal("expected token reported redeemed")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestRedeemMissingToken(t *testing.T) {
	store := memory.NewStore()
	if err := redeem(store, "alice", "ghost"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRedeemRequiresOwnerOrApproval(t *testing.T) {
	store := newStoreWithToken(t, "1", "alice")
	if err := redeem(store, "mallory", "1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for stranger, got %v", err)
	}

	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.UpdateToken("1", func(tok *domain.Token) error {
			tok.Approvals = []domain.Approval{{Spender: "bob", Expires: testNow.Add(time.Hour)}}
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("grant approval: %v", err)
	}
	if err := redeem(store, "bob", "1"); err != nil {
		t.Fatalf("approved redeem: %v", err)
	}
}

func TestRedeemDropsStandingListing(t *testing.T) {
	store := newStoreWithToken(t, "1", "alice")
	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.SetListing("1", domain.Coin{Denom: "uturnt", Amount: 100})
	}); err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	if err := redeem(store, "alice", "1"); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if err := store.View(context.Background(), func(view domain.TransactionView) error {
		if _, listed := view.FindListing("1"); listed {
			t.Fatal("expected listing removed on redemption")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestInstantiateSeedsRedemptionSet(t *testing.T) {
	store := memory.NewStore()
	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := Module{}.Instantiate(tx, domain.Env{}, domain.MsgInfo{}, InstantiateMsg{RedeemedItems: []string{"a", "b"}})
		return err
	}); err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if err := store.View(context.Background(), func(view domain.TransactionView) error {
		out, err := Module{}.Query(view, domain.Env{}, QueryMsg{RedeemedItems: &struct{}{}})
		if err != nil {
			return err
		}
		got := out.(RedeemedItemsResponse).TokenIDs
		if len(got) != 2 || got[0] != "a" || got[1] != "b" {
			t.Fatalf("unexpected redemption set: %+v", got)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}
