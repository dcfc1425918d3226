// Package domain defines the entities, value types, error taxonomy, and
// persistence interfaces shared by the seathub contract modules.
package domain

import (
	"context"
	"time"
)

// Address is a chain account or contract address. Addresses are treated as
// opaque strings; validation happens at the environment boundary.
type Address string

// Empty reports whether the address is unset.
func (a Address) Empty() bool { return a == "" }

// Coin is an amount of a single denomination.
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// IsZero reports whether the coin carries no value.
func (c Coin) IsZero() bool { return c.Amount == 0 }

// Coins is an ordered list of coins, typically the funds attached to a call.
type Coins []Coin

// AmountOf sums the amount carried for the given denomination.
func (cs Coins) AmountOf(denom string) uint64 {
	var total uint64
	for _, c := range cs {
		if c.Denom == denom {
			total += c.Amount
		}
	}
	return total
}

// Covers reports whether the funds meet or exceed every coin of the price.
func (cs Coins) Covers(price []Coin) bool {
	for _, p := range price {
		if cs.AmountOf(p.Denom) < p.Amount {
			return false
		}
	}
	return true
}

// Sub returns the funds remaining after deducting the price. Denominations
// the price does not name are returned unchanged. Callers must ensure the
// funds cover the price first.
func (cs Coins) Sub(price []Coin) Coins {
	owed := make(map[string]uint64, len(price))
	for _, p := range price {
		owed[p.Denom] += p.Amount
	}
	var rest Coins
	for _, c := range cs {
		due := owed[c.Denom]
		switch {
		case due == 0:
			if c.Amount > 0 {
				rest = append(rest, c)
			}
		case c.Amount > due:
			owed[c.Denom] = 0
			rest = append(rest, Coin{Denom: c.Denom, Amount: c.Amount - due})
		default:
			owed[c.Denom] = due - c.Amount
		}
	}
	return rest
}

// Env carries the execution context supplied by the environment for a single
// instantiate, execute, or query call.
type Env struct {
	// Contract is the address of the composed contract being executed.
	Contract Address
	// Now is the logical block time of the call.
	Now time.Time
}

// MsgInfo identifies the caller of an execute call and the funds it attached.
type MsgInfo struct {
	Sender Address
	Funds  Coins
}

// ChainQuerier exposes read access to chain-level reference data.
type ChainQuerier interface {
	// BondedDenom returns the staking bond denomination, used to default a
	// sale's settlement currency when none is configured.
	BondedDenom(ctx context.Context) (string, error)
}

// StaticChain is a ChainQuerier with fixed answers, used in tests and by
// deployments that configure the denom out of band.
type StaticChain struct {
	Denom string
}

// BondedDenom implements ChainQuerier.
func (c StaticChain) BondedDenom(context.Context) (string, error) {
	if c.Denom == "" {
		return "", NotFoundError{Entity: "bond_denom"}
	}
	return c.Denom, nil
}
