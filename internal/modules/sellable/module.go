// Package sellable implements fixed-price listings over the token ledger:
// list, delist, and atomic buy with proceeds forwarding.
package sellable

import (
	"fmt"
	"sort"

	"seathub/internal/modules/token"
	"seathub/pkg/domain"
)

// InstantiateMsg optionally seeds initial listings. Each entry is validated
// exactly like a list call by the instantiating sender.
type InstantiateMsg struct {
	Tokens map[string]domain.Coin `json:"tokens,omitempty"`
}

// ExecuteMsg is the tagged union of sellable operations.
type ExecuteMsg struct {
	List   *ListMsg   `json:"list,omitempty"`
	Delist *DelistMsg `json:"delist,omitempty"`
	Buy    *BuyMsg    `json:"buy,omitempty"`
}

// ListMsg creates or replaces listings for the given tokens.
type ListMsg struct {
	Listings map[string]domain.Coin `json:"listings"`
}

// DelistMsg removes a listing.
type DelistMsg struct {
	TokenID string `json:"token_id"`
}

// BuyMsg purchases a listed token with the attached funds.
type BuyMsg struct {
	TokenID string `json:"token_id"`
}

// QueryMsg is the tagged union of sellable queries.
type QueryMsg struct {
	ListedTokens *ListedTokensMsg `json:"listed_tokens,omitempty"`
}

// ListedTokensMsg enumerates listings with restartable pagination.
type ListedTokensMsg struct {
	StartAfter string `json:"start_after,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Descending bool   `json:"descending,omitempty"`
}

// ListedTokensResponse answers listed_tokens.
type ListedTokensResponse struct {
	Listings []domain.Listing `json:"listings"`
}

// Module is the sellable capability.
type Module struct{}

// Instantiate seeds initial listings, validating each like a list call.
func (Module) Instantiate(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg InstantiateMsg) (domain.Response, error) {
	if len(msg.Tokens) == 0 {
		return domain.Response{}, nil
	}
	if err := listTokens(tx, env, info.Sender, msg.Tokens); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{}, nil
}

// Execute routes a sellable execute message.
func (m Module) Execute(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg ExecuteMsg) (domain.Response, error) {
	switch {
	case msg.List != nil:
		return m.list(tx, env, info, *msg.List)
	case msg.Delist != nil:
		return m.delist(tx, info, *msg.Delist)
	case msg.Buy != nil:
		return m.buy(tx, env, info, *msg.Buy)
	default:
		return domain.Response{}, domain.InvalidInputError{Reason: "unknown sellable operation"}
	}
}

func (Module) list(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg ListMsg) (domain.Response, error) {
	if len(msg.Listings) == 0 {
		return domain.Response{}, domain.InvalidInputError{Reason: "no listings supplied"}
	}
	if err := listTokens(tx, env, info.Sender, msg.Listings); err != nil {
		return domain.Response{}, err
	}
	resp := domain.Response{}.AddAttribute("action", "list")
	for _, id := range sortedIDs(msg.Listings) {
		resp = resp.AddAttribute("token_id", id)
	}
	return resp, nil
}

// listTokens validates and stores each listing: the lister must own the
// token, the token must not be redeemed, and the price must be non-zero.
func listTokens(tx domain.Transaction, env domain.Env, lister domain.Address, listings map[string]domain.Coin) error {
	for _, id := range sortedIDs(listings) {
		price := listings[id]
		if price.IsZero() || price.Denom == "" {
			return domain.InvalidInputError{Reason: fmt.Sprintf("invalid price for token %s", id)}
		}
		t, ok := tx.FindToken(id)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntityToken, ID: id}
		}
		if t.Owner != lister {
			return domain.ErrUnauthorized
		}
		if tx.IsRedeemed(id) {
			return domain.ConflictError{Reason: fmt.Sprintf("token %s already redeemed", id)}
		}
		if err := tx.SetListing(id, price); err != nil {
			return err
		}
	}
	return nil
}

func (Module) delist(tx domain.Transaction, info domain.MsgInfo, msg DelistMsg) (domain.Response, error) {
	if _, ok := tx.FindListing(msg.TokenID); !ok {
		return domain.Response{}, domain.NotFoundError{Entity: domain.EntityListing, ID: msg.TokenID}
	}
	t, ok := tx.FindToken(msg.TokenID)
	if !ok {
		return domain.Response{}, domain.NotFoundError{Entity: domain.EntityToken, ID: msg.TokenID}
	}
	if t.Owner != info.Sender {
		return domain.Response{}, domain.ErrUnauthorized
	}
	if err := tx.RemoveListing(msg.TokenID); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{}.
		AddAttribute("action", "delist").
		AddAttribute("token_id", msg.TokenID), nil
}

func (Module) buy(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg BuyMsg) (domain.Response, error) {
	price, ok := tx.FindListing(msg.TokenID)
	if !ok {
		return domain.Response{}, domain.NotFoundError{Entity: domain.EntityListing, ID: msg.TokenID}
	}
	if !info.Funds.Covers([]domain.Coin{price}) {
		return domain.Response{}, domain.InvalidInputError{Reason: "insufficient funds for listed price"}
	}
	t, ok := tx.FindToken(msg.TokenID)
	if !ok {
		return domain.Response{}, domain.NotFoundError{Entity: domain.EntityToken, ID: msg.TokenID}
	}
	// Re-validate lock state at buy time: a token redeemed after listing must
	// not change hands.
	if tx.IsRedeemed(msg.TokenID) {
		return domain.Response{}, domain.ConflictError{Reason: fmt.Sprintf("token %s already redeemed", msg.TokenID)}
	}
	seller := t.Owner
	if err := tx.RemoveListing(msg.TokenID); err != nil {
		return domain.Response{}, err
	}
	if err := token.TransferUnchecked(tx, env.Now, msg.TokenID, info.Sender); err != nil {
		return domain.Response{}, err
	}
	resp := domain.Response{}.
		AddAttribute("action", "buy").
		AddAttribute("token_id", msg.TokenID).
		AddAttribute("buyer", string(info.Sender)).
		AddEvent(domain.Event{Type: "seat-sold", Attributes: []domain.Attribute{
			{Key: "token_id", Value: msg.TokenID},
			{Key: "seller", Value: string(seller)},
			{Key: "buyer", Value: string(info.Sender)},
		}}).
		AddTransfer(seller, []domain.Coin{price})
	if refund := info.Funds.Sub([]domain.Coin{price}); len(refund) > 0 {
		resp = resp.AddTransfer(info.Sender, refund)
	}
	return resp, nil
}

// Query routes a sellable query message.
func (Module) Query(view domain.TransactionView, _ domain.Env, msg QueryMsg) (any, error) {
	switch {
	case msg.ListedTokens != nil:
		page := domain.Page{StartAfter: msg.ListedTokens.StartAfter, Limit: msg.ListedTokens.Limit, Descending: msg.ListedTokens.Descending}
		return ListedTokensResponse{Listings: view.ListListings(page)}, nil
	default:
		return nil, domain.InvalidInputError{Reason: "unknown sellable query"}
	}
}

func sortedIDs(m map[string]domain.Coin) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
