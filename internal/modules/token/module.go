// Package token implements the NFT ledger: mint, transfer, approvals, and
// bounded enumeration.
package token

import (
	"time"

	"seathub/pkg/domain"
)

// InstantiateMsg fixes the ledger-wide settings.
type InstantiateMsg struct {
	Name   string         `json:"name"`
	Symbol string         `json:"symbol"`
	Minter domain.Address `json:"minter"`
}

// ExecuteMsg is the tagged union of ledger operations.
type ExecuteMsg struct {
	Mint     *MintMsg     `json:"mint,omitempty"`
	Transfer *TransferMsg `json:"transfer,omitempty"`
	Approve  *ApproveMsg  `json:"approve,omitempty"`
	Revoke   *RevokeMsg   `json:"revoke,omitempty"`
}

// MintMsg creates a new token.
type MintMsg struct {
	TokenID   string          `json:"token_id"`
	Owner     domain.Address  `json:"owner"`
	TokenURI  string          `json:"token_uri,omitempty"`
	Extension domain.Document `json:"extension,omitempty"`
}

// TransferMsg reassigns token ownership.
type TransferMsg struct {
	TokenID   string         `json:"token_id"`
	Recipient domain.Address `json:"recipient"`
}

// ApproveMsg grants a spender the right to move a token until expiry.
type ApproveMsg struct {
	TokenID string         `json:"token_id"`
	Spender domain.Address `json:"spender"`
	Expires time.Time      `json:"expires"`
}

// RevokeMsg withdraws a previously granted approval.
type RevokeMsg struct {
	TokenID string         `json:"token_id"`
	Spender domain.Address `json:"spender"`
}

// QueryMsg is the tagged union of ledger queries.
type QueryMsg struct {
	OwnerOf   *OwnerOfMsg `json:"owner_of,omitempty"`
	NumTokens *struct{}   `json:"num_tokens,omitempty"`
	Tokens    *TokensMsg  `json:"tokens,omitempty"`
}

// OwnerOfMsg asks for a token's owner and live approvals.
type OwnerOfMsg struct {
	TokenID string `json:"token_id"`
}

// TokensMsg enumerates tokens with restartable pagination.
type TokensMsg struct {
	StartAfter string `json:"start_after,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Descending bool   `json:"descending,omitempty"`
}

// OwnerOfResponse answers owner_of.
type OwnerOfResponse struct {
	Owner     domain.Address    `json:"owner"`
	Approvals []domain.Approval `json:"approvals,omitempty"`
}

// NumTokensResponse answers num_tokens.
type NumTokensResponse struct {
	Count int `json:"count"`
}

// TokensResponse answers tokens.
type TokensResponse struct {
	Tokens []domain.Token `json:"tokens"`
}

// Module is the token ledger capability.
type Module struct{}

// Instantiate stores the ledger configuration.
func (Module) Instantiate(tx domain.Transaction, _ domain.Env, _ domain.MsgInfo, msg InstantiateMsg) (domain.Response, error) {
	if msg.Minter.Empty() {
		return domain.Response{}, domain.InvalidInputError{Reason: "minter address required"}
	}
	cfg := domain.TokenConfig{Name: msg.Name, Symbol: msg.Symbol, Minter: msg.Minter}
	if err := tx.SetTokenConfig(cfg); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{}, nil
}

// Execute routes a ledger execute message.
func (m Module) Execute(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg ExecuteMsg) (domain.Response, error) {
	switch {
	case msg.Mint != nil:
		return m.mint(tx, env, info, *msg.Mint)
	case msg.Transfer != nil:
		return m.transfer(tx, env, info, *msg.Transfer)
	case msg.Approve != nil:
		return m.approve(tx, env, info, *msg.Approve)
	case msg.Revoke != nil:
		return m.revoke(tx, info, *msg.Revoke)
	default:
		return domain.Response{}, domain.InvalidInputError{Reason: "unknown token operation"}
	}
}

func (Module) mint(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg MintMsg) (domain.Response, error) {
	cfg, ok := tx.TokenConfig()
	if !ok {
		return domain.Response{}, domain.NotFoundError{Entity: "token_config"}
	}
	if info.Sender != cfg.Minter {
		return domain.Response{}, domain.ErrUnauthorized
	}
	if err := Mint(tx, env.Now, msg); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{}.
		AddAttribute("action", "mint").
		AddAttribute("token_id", msg.TokenID).
		AddAttribute("owner", string(msg.Owner)), nil
}

func (Module) transfer(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg TransferMsg) (domain.Response, error) {
	if msg.Recipient.Empty() {
		return domain.Response{}, domain.InvalidInputError{Reason: "recipient address required"}
	}
	if err := TransferChecked(tx, env.Now, info.Sender, msg.TokenID, msg.Recipient); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{}.
		AddAttribute("action", "transfer").
		AddAttribute("token_id", msg.TokenID).
		AddAttribute("recipient", string(msg.Recipient)), nil
}

func (Module) approve(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg ApproveMsg) (domain.Response, error) {
	if !msg.Expires.After(env.Now) {
		return domain.Response{}, domain.InvalidInputError{Reason: "approval expiry must be in the future"}
	}
	_, err := tx.UpdateToken(msg.TokenID, func(t *domain.Token) error {
		if t.Owner != info.Sender {
			return domain.ErrUnauthorized
		}
		kept := t.Approvals[:0]
		for _, ap := range t.Approvals {
			if ap.Spender != msg.Spender {
				kept = append(kept, ap)
			}
		}
		t.Approvals = append(kept, domain.Approval{Spender: msg.Spender, Expires: msg.Expires})
		t.ModifiedAt = env.Now
		return nil
	})
	if err != nil {
		return domain.Response{}, err
	}
	return domain.Response{}.
		AddAttribute("action", "approve").
		AddAttribute("token_id", msg.TokenID).
		AddAttribute("spender", string(msg.Spender)), nil
}

func (Module) revoke(tx domain.Transaction, info domain.MsgInfo, msg RevokeMsg) (domain.Response, error) {
	_, err := tx.UpdateToken(msg.TokenID, func(t *domain.Token) error {
		if t.Owner != info.Sender {
			return domain.ErrUnauthorized
		}
		kept := t.Approvals[:0]
		for _, ap := range t.Approvals {
			if ap.Spender != msg.Spender {
				kept = append(kept, ap)
			}
		}
		t.Approvals = kept
		return nil
	})
	if err != nil {
		return domain.Response{}, err
	}
	return domain.Response{}.
		AddAttribute("action", "revoke").
		AddAttribute("token_id", msg.TokenID).
		AddAttribute("spender", string(msg.Spender)), nil
}

// Query routes a ledger query message.
func (Module) Query(view domain.TransactionView, env domain.Env, msg QueryMsg) (any, error) {
	switch {
	case msg.OwnerOf != nil:
		t, ok := view.FindToken(msg.OwnerOf.TokenID)
		if !ok {
			return nil, domain.NotFoundError{Entity: domain.EntityToken, ID: msg.OwnerOf.TokenID}
		}
		live := make([]domain.Approval, 0, len(t.Approvals))
		for _, ap := range t.Approvals {
			if !ap.Expired(env.Now) {
				live = append(live, ap)
			}
		}
		return OwnerOfResponse{Owner: t.Owner, Approvals: live}, nil
	case msg.NumTokens != nil:
		return NumTokensResponse{Count: view.CountTokens()}, nil
	case msg.Tokens != nil:
		page := domain.Page{StartAfter: msg.Tokens.StartAfter, Limit: msg.Tokens.Limit, Descending: msg.Tokens.Descending}
		return TokensResponse{Tokens: view.ListTokens(page)}, nil
	default:
		return nil, domain.InvalidInputError{Reason: "unknown token query"}
	}
}

// Mint records a new token without a minter check. Callers that are not the
// designated minter (the sales module minting on purchase) gate access their
// own way.
func Mint(tx domain.Transaction, now time.Time, msg MintMsg) error {
	if msg.TokenID == "" {
		return domain.InvalidInputError{Reason: "token id required"}
	}
	if msg.Owner.Empty() {
		return domain.InvalidInputError{Reason: "token owner required"}
	}
	return tx.PutToken(domain.Token{
		ID:         msg.TokenID,
		Owner:      msg.Owner,
		URI:        msg.TokenURI,
		Extension:  msg.Extension,
		MintedAt:   now,
		ModifiedAt: now,
	})
}

// TransferChecked moves a token to recipient if sender is the owner or holds
// an unexpired approval. Approvals and any standing listing are cleared on
// success; a listing is only valid while the lister owns the token.
func TransferChecked(tx domain.Transaction, now time.Time, sender domain.Address, id string, recipient domain.Address) error {
	_, err := tx.UpdateToken(id, func(t *domain.Token) error {
		if !t.CanSend(sender, now) {
			return domain.ErrUnauthorized
		}
		t.Owner = recipient
		t.Approvals = nil
		t.ModifiedAt = now
		return nil
	})
	if err != nil {
		return err
	}
	return dropListing(tx, id)
}

// TransferUnchecked moves a token to recipient bypassing the send check, used
// by the sellable module where purchase authorization replaces ownership
// authorization. Approvals and any standing listing are cleared on success.
func TransferUnchecked(tx domain.Transaction, now time.Time, id string, recipient domain.Address) error {
	_, err := tx.UpdateToken(id, func(t *domain.Token) error {
		t.Owner = recipient
		t.Approvals = nil
		t.ModifiedAt = now
		return nil
	})
	if err != nil {
		return err
	}
	return dropListing(tx, id)
}

func dropListing(tx domain.Transaction, id string) error {
	if _, listed := tx.FindListing(id); !listed {
		return nil
	}
	return tx.RemoveListing(id)
}
