// Package memory provides the in-memory implementation of the contract
// persistence store. It is authoritative for transaction semantics: durable
// backends wrap it and snapshot its state after each committed transaction.
package memory

import (
	"context"
	"sort"
	"sync"

	"seathub/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

// defaultPageLimit and maxPageLimit bound token and listing enumeration.
const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// state holds every module's bucket. Buckets are disjoint; only the owning
// module's operations touch each one.
type state struct {
	owner     domain.Address
	hasOwner  bool
	metadata  domain.Document
	linkedHub domain.Address

	tokenCfg    domain.TokenConfig
	hasTokenCfg bool
	tokens      map[string]domain.Token

	redeemed map[string]struct{}

	listings map[string]domain.Coin

	sales []domain.PrimarySale
}

func newState() state {
	return state{
		tokens:   make(map[string]domain.Token),
		redeemed: make(map[string]struct{}),
		listings: make(map[string]domain.Coin),
	}
}

func cloneToken(t domain.Token) domain.Token {
	cp := t
	cp.Approvals = append([]domain.Approval(nil), t.Approvals...)
	return cp
}

func (s state) clone() state {
	cp := newState()
	cp.owner = s.owner
	cp.hasOwner = s.hasOwner
	cp.metadata = s.metadata
	cp.linkedHub = s.linkedHub
	cp.tokenCfg = s.tokenCfg
	cp.hasTokenCfg = s.hasTokenCfg
	for id, t := range s.tokens {
		cp.tokens[id] = cloneToken(t)
	}
	for id := range s.redeemed {
		cp.redeemed[id] = struct{}{}
	}
	for id, price := range s.listings {
		cp.listings[id] = price
	}
	cp.sales = append([]domain.PrimarySale(nil), s.sales...)
	for i := range cp.sales {
		cp.sales[i].Price = append([]domain.Coin(nil), cp.sales[i].Price...)
	}
	return cp
}

// Snapshot is the serializable form of the store state. Field names double as
// the storage bucket names durable backends persist under.
type Snapshot struct {
	Owner         *domain.Address         `json:"owner,omitempty"`
	Metadata      domain.Document         `json:"metadata,omitempty"`
	HubContract   *domain.Address         `json:"hub_contract,omitempty"`
	TokenConfig   *domain.TokenConfig     `json:"token_config,omitempty"`
	Tokens        map[string]domain.Token `json:"tokens,omitempty"`
	RedeemedItems []string                `json:"redeemed_items,omitempty"`
	ListedTokens  map[string]domain.Coin  `json:"listed_tokens,omitempty"`
	PrimarySales  []domain.PrimarySale    `json:"primary_sales,omitempty"`
}

// Store is an in-memory transactional store. A transaction runs against a
// deep copy of the state; the copy replaces the live state only when the
// transaction function returns nil, so a failure anywhere in a call chain
// discards every write of that call.
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// RunInTransaction executes fn within a transactional copy of the state and
// commits the copy on success.
func (s *Store) RunInTransaction(_ context.Context, fn func(domain.Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// View executes fn against a read-only snapshot of the committed state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(&transaction{state: snapshot, readOnly: true})
}

// ExportState captures the committed state for durable snapshotting and
// archival.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state.clone()

	snap := Snapshot{}
	if st.hasOwner {
		owner := st.owner
		snap.Owner = &owner
	}
	snap.Metadata = st.metadata
	if !st.linkedHub.Empty() {
		hub := st.linkedHub
		snap.HubContract = &hub
	}
	if st.hasTokenCfg {
		cfg := st.tokenCfg
		snap.TokenConfig = &cfg
	}
	if len(st.tokens) > 0 {
		snap.Tokens = st.tokens
	}
	if len(st.redeemed) > 0 {
		ids := make([]string, 0, len(st.redeemed))
		for id := range st.redeemed {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		snap.RedeemedItems = ids
	}
	if len(st.listings) > 0 {
		snap.ListedTokens = st.listings
	}
	snap.PrimarySales = st.sales
	return snap
}

// ImportState replaces the committed state with the supplied snapshot, used
// by durable backends to hydrate on open.
func (s *Store) ImportState(snap Snapshot) {
	st := newState()
	if snap.Owner != nil {
		st.owner = *snap.Owner
		st.hasOwner = true
	}
	st.metadata = snap.Metadata
	if snap.HubContract != nil {
		st.linkedHub = *snap.HubContract
	}
	if snap.TokenConfig != nil {
		st.tokenCfg = *snap.TokenConfig
		st.hasTokenCfg = true
	}
	for id, t := range snap.Tokens {
		st.tokens[id] = cloneToken(t)
	}
	for _, id := range snap.RedeemedItems {
		st.redeemed[id] = struct{}{}
	}
	for id, price := range snap.ListedTokens {
		st.listings[id] = price
	}
	st.sales = append([]domain.PrimarySale(nil), snap.PrimarySales...)

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
