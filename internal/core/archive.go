package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"seathub/internal/blob"
	"seathub/pkg/domain"
)

// SnapshotArchiver writes a JSON snapshot of contract state to a blob store
// after each committed execute, building an audit trail of state versions.
// Objects are keyed <contract>/<sequence>.json; the sequence is per contract
// and starts at 1.
type SnapshotArchiver struct {
	blobs blob.Store
	mu    sync.Mutex
	seq   map[domain.Address]uint64
}

// NewSnapshotArchiver wraps the blob store.
func NewSnapshotArchiver(blobs blob.Store) *SnapshotArchiver {
	return &SnapshotArchiver{
		blobs: blobs,
		seq:   make(map[domain.Address]uint64),
	}
}

// StateSnapshot is the archived representation of one contract state version.
type StateSnapshot struct {
	Contract      domain.Address       `json:"contract,omitempty"`
	Sequence      uint64               `json:"sequence"`
	CapturedAt    time.Time            `json:"captured_at"`
	Owner         *domain.Address      `json:"owner,omitempty"`
	Metadata      domain.Document      `json:"metadata,omitempty"`
	HubContract   *domain.Address      `json:"hub_contract,omitempty"`
	TokenConfig   *domain.TokenConfig  `json:"token_config,omitempty"`
	Tokens        []domain.Token       `json:"tokens,omitempty"`
	RedeemedItems []string             `json:"redeemed_items,omitempty"`
	Listings      []domain.Listing     `json:"listings,omitempty"`
	PrimarySales  []domain.PrimarySale `json:"primary_sales,omitempty"`
}

// CaptureState reads the store's current state into a snapshot.
func CaptureState(ctx context.Context, store domain.PersistentStore, contract domain.Address) (StateSnapshot, error) {
	snap := StateSnapshot{Contract: contract, CapturedAt: time.Now().UTC()}
	if err := store.View(ctx, func(view domain.TransactionView) error {
		capture(&snap, view)
		return nil
	}); err != nil {
		return StateSnapshot{}, fmt.Errorf("capture state: %w", err)
	}
	return snap, nil
}

// Archive captures the store's current state and writes it as the next
// snapshot object for the contract.
func (a *SnapshotArchiver) Archive(ctx context.Context, store domain.PersistentStore, contract domain.Address) error {
	snap, err := CaptureState(ctx, store, contract)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.seq[contract]++
	snap.Sequence = a.seq[contract]
	a.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	key := archiveKey(contract, snap.Sequence)
	if _, err := a.blobs.Put(ctx, key, bytes.NewReader(payload), "application/json"); err != nil {
		return fmt.Errorf("archive snapshot %s: %w", key, err)
	}
	return nil
}

func archiveKey(contract domain.Address, seq uint64) string {
	name := string(contract)
	if name == "" {
		name = "contract"
	}
	return fmt.Sprintf("%s/%d.json", name, seq)
}

func capture(snap *StateSnapshot, view domain.TransactionView) {
	if owner, ok := view.Owner(); ok {
		snap.Owner = &owner
	}
	if meta, ok := view.Metadata(); ok {
		snap.Metadata = meta
	}
	if hub, ok := view.LinkedHub(); ok {
		snap.HubContract = &hub
	}
	if cfg, ok := view.TokenConfig(); ok {
		snap.TokenConfig = &cfg
	}
	snap.RedeemedItems = view.RedeemedItems()
	snap.PrimarySales = view.ListPrimarySales()

	after := ""
	for {
		tokens := view.ListTokens(domain.Page{StartAfter: after})
		if len(tokens) == 0 {
			break
		}
		snap.Tokens = append(snap.Tokens, tokens...)
		after = tokens[len(tokens)-1].ID
	}

	after = ""
	for {
		listings := view.ListListings(domain.Page{StartAfter: after})
		if len(listings) == 0 {
			break
		}
		snap.Listings = append(snap.Listings, listings...)
		after = listings[len(listings)-1].TokenID
	}
}
