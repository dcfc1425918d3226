package domain

import "context"

// Page bounds an enumeration. StartAfter restarts a previous scan; Limit
// caps the page size (implementations apply a default and a hard cap);
// Descending reverses the order.
type Page struct {
	StartAfter string
	Limit      int
	Descending bool
}

// TransactionView provides read-only access to contract state. Every module
// reloads state through this handle on each call; nothing is cached across
// calls.
type TransactionView interface {
	Owner() (Address, bool)
	Metadata() (Document, bool)
	LinkedHub() (Address, bool)

	TokenConfig() (TokenConfig, bool)
	FindToken(id string) (Token, bool)
	CountTokens() int
	ListTokens(page Page) []Token

	IsRedeemed(id string) bool
	RedeemedItems() []string

	FindListing(id string) (Coin, bool)
	ListListings(page Page) []Listing

	ListPrimarySales() []PrimarySale
}

// Transaction exposes the mutations a persistence implementation must support
// within one atomic scope. Exactly one transaction handle is live per call;
// passing it explicitly keeps shared module state behind a single exclusive
// reference.
type Transaction interface {
	TransactionView

	SetOwner(Address) error
	SetMetadata(Document) error
	SetLinkedHub(Address) error

	SetTokenConfig(TokenConfig) error
	// PutToken stores a new token; it fails with ConflictError when the id
	// already exists.
	PutToken(Token) error
	UpdateToken(id string, mutator func(*Token) error) (Token, error)

	// MarkRedeemed adds the id to the redemption set; it fails with
	// ConflictError when the id is already present. Ids are never removed.
	MarkRedeemed(id string) error

	SetListing(id string, price Coin) error
	RemoveListing(id string) error

	// AppendPrimarySale adds a campaign record to the append-only log and
	// returns it with its sequence id assigned.
	AppendPrimarySale(PrimarySale) (PrimarySale, error)
	UpdatePrimarySale(id uint64, mutator func(*PrimarySale) error) (PrimarySale, error)
}

// PersistentStore is the transactional storage collaborator. All writes made
// by fn are committed together when fn returns nil and discarded entirely
// when it returns an error.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) error
	View(ctx context.Context, fn func(TransactionView) error) error
}
