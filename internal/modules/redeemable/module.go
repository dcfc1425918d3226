// Package redeemable tracks the set of redeemed token ids. Redemption is a
// one-time, auditable event: once marked, a token is never unmarked.
package redeemable

import (
	"seathub/pkg/domain"
)

// InstantiateMsg optionally seeds already-redeemed ids, used when migrating
// an existing collection in.
type InstantiateMsg struct {
	RedeemedItems []string `json:"redeemed_items,omitempty"`
}

// ExecuteMsg is the tagged union of redeemable operations.
type ExecuteMsg struct {
	Redeem *RedeemMsg `json:"redeem,omitempty"`
}

// RedeemMsg marks a token redeemed.
type RedeemMsg struct {
	TokenID string `json:"token_id"`
}

// QueryMsg is the tagged union of redeemable queries.
type QueryMsg struct {
	IsRedeemed    *IsRedeemedMsg `json:"is_redeemed,omitempty"`
	RedeemedItems *struct{}      `json:"redeemed_items,omitempty"`
}

// IsRedeemedMsg asks whether a token has been redeemed.
type IsRedeemedMsg struct {
	TokenID string `json:"token_id"`
}

// IsRedeemedResponse answers is_redeemed.
type IsRedeemedResponse struct {
	IsRedeemed bool `json:"is_redeemed"`
}

// RedeemedItemsResponse answers redeemed_items.
type RedeemedItemsResponse struct {
	TokenIDs []string `json:"token_ids"`
}

// Module is the redeemable capability.
type Module struct{}

// Instantiate seeds the redemption set.
func (Module) Instantiate(tx domain.Transaction, _ domain.Env, _ domain.MsgInfo, msg InstantiateMsg) (domain.Response, error) {
	for _, id := range msg.RedeemedItems {
		if err := tx.MarkRedeemed(id); err != nil {
			return domain.Response{}, err
		}
	}
	return domain.Response{}, nil
}

// Execute routes a redeemable execute message.
func (m Module) Execute(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg ExecuteMsg) (domain.Response, error) {
	switch {
	case msg.Redeem != nil:
		return m.redeem(tx, env, info, *msg.Redeem)
	default:
		return domain.Response{}, domain.InvalidInputError{Reason: "unknown redeemable operation"}
	}
}

func (Module) redeem(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg RedeemMsg) (domain.Response, error) {
	t, ok := tx.FindToken(msg.TokenID)
	if !ok {
		return domain.Response{}, domain.NotFoundError{Entity: domain.EntityToken, ID: msg.TokenID}
	}
	if !t.CanSend(info.Sender, env.Now) {
		return domain.Response{}, domain.ErrUnauthorized
	}
	if err := tx.MarkRedeemed(msg.TokenID); err != nil {
		return domain.Response{}, err
	}
	// A redeemed token is locked; drop any standing listing so it cannot be bought.
	if _, listed := tx.FindListing(msg.TokenID); listed {
		if err := tx.RemoveListing(msg.TokenID); err != nil {
			return domain.Response{}, err
		}
	}
	return domain.Response{}.
		AddAttribute("action", "redeem").
		AddAttribute("token_id", msg.TokenID), nil
}

// Query routes a redeemable query message.
func (Module) Query(view domain.TransactionView, _ domain.Env, msg QueryMsg) (any, error) {
	switch {
	case msg.IsRedeemed != nil:
		return IsRedeemedResponse{IsRedeemed: view.IsRedeemed(msg.IsRedeemed.TokenID)}, nil
	case msg.RedeemedItems != nil:
		return RedeemedItemsResponse{TokenIDs: view.RedeemedItems()}, nil
	default:
		return nil, domain.InvalidInputError{Reason: "unknown redeemable query"}
	}
}
