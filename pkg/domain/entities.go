package domain

import "time"

// Entity names used in NotFound errors and persistence buckets.
const (
	EntityOwner       = "owner"
	EntityMetadata    = "metadata"
	EntityToken       = "token"
	EntityListing     = "listing"
	EntityPrimarySale = "primary_sale"
)

// Approval grants an address the right to move a token until it expires.
type Approval struct {
	Spender Address   `json:"spender"`
	Expires time.Time `json:"expires"`
}

// Expired reports whether the approval has lapsed at the given time.
func (a Approval) Expired(now time.Time) bool {
	return !a.Expires.After(now)
}

// Token is one entry in the NFT ledger. Tokens are minted once and never
// deleted; ownership moves on transfer or purchase.
type Token struct {
	ID         string     `json:"id"`
	Owner      Address    `json:"owner"`
	Approvals  []Approval `json:"approvals,omitempty"`
	URI        string     `json:"uri,omitempty"`
	Extension  Document   `json:"extension,omitempty"`
	MintedAt   time.Time  `json:"minted_at"`
	ModifiedAt time.Time  `json:"modified_at"`
}

// CanSend reports whether addr may move the token at the given time: the
// owner always can, a spender only while its approval is unexpired.
func (t Token) CanSend(addr Address, now time.Time) bool {
	if t.Owner == addr {
		return true
	}
	for _, ap := range t.Approvals {
		if ap.Spender == addr && !ap.Expired(now) {
			return true
		}
	}
	return false
}

// TokenConfig holds the ledger-wide settings fixed at instantiation.
type TokenConfig struct {
	Name   string  `json:"name"`
	Symbol string  `json:"symbol"`
	Minter Address `json:"minter"`
}

// Listing is a fixed-price offer for a specific token.
type Listing struct {
	TokenID string `json:"token_id"`
	Price   Coin   `json:"price"`
}

// PrimarySale is one record in the append-only campaign log. Whether a sale
// is active is always recomputed from the record, never stored.
type PrimarySale struct {
	ID          uint64    `json:"id"`
	TotalSupply uint64    `json:"total_supply"`
	Minted      uint64    `json:"minted"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Price       []Coin    `json:"price"`
	Halted      bool      `json:"halted"`
}

// ActiveAt reports whether the campaign is selling at the given time: the
// window covers now, the sale was not halted, and supply remains. Supply
// exhaustion and window expiry end a sale without an explicit transition.
func (s PrimarySale) ActiveAt(now time.Time) bool {
	if s.Halted || s.Minted >= s.TotalSupply {
		return false
	}
	return !now.Before(s.StartTime) && now.Before(s.EndTime)
}

// SeatInfo joins a ledger token with its listing state for contract-level
// enumeration queries.
type SeatInfo struct {
	TokenID     string     `json:"token_id"`
	Owner       Address    `json:"owner"`
	ListedPrice *Coin      `json:"listed_price,omitempty"`
	Approvals   []Approval `json:"approvals,omitempty"`
	TokenURI    string     `json:"token_uri,omitempty"`
	Extension   Document   `json:"extension,omitempty"`
}
