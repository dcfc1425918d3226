// Package ownable implements single-owner access control. Every other module
// uses it as the sole authorization primitive.
package ownable

import (
	"seathub/pkg/domain"
)

// InstantiateMsg configures the initial owner.
type InstantiateMsg struct {
	Owner domain.Address `json:"owner"`
}

// ExecuteMsg is the tagged union of ownable operations.
type ExecuteMsg struct {
	SetOwner *SetOwnerMsg `json:"set_owner,omitempty"`
}

// SetOwnerMsg replaces the current owner.
type SetOwnerMsg struct {
	Owner domain.Address `json:"owner"`
}

// QueryMsg is the tagged union of ownable queries.
type QueryMsg struct {
	GetOwner *struct{}   `json:"get_owner,omitempty"`
	IsOwner  *IsOwnerMsg `json:"is_owner,omitempty"`
}

// IsOwnerMsg asks whether an address is the current owner.
type IsOwnerMsg struct {
	Address domain.Address `json:"address"`
}

// OwnerResponse answers get_owner.
type OwnerResponse struct {
	Owner domain.Address `json:"owner"`
}

// IsOwnerResponse answers is_owner.
type IsOwnerResponse struct {
	IsOwner bool `json:"is_owner"`
}

// Module is the ownable capability.
type Module struct{}

// Instantiate stores the configured owner.
func (Module) Instantiate(tx domain.Transaction, _ domain.Env, _ domain.MsgInfo, msg InstantiateMsg) (domain.Response, error) {
	if msg.Owner.Empty() {
		return domain.Response{}, domain.InvalidInputError{Reason: "owner address required"}
	}
	if err := tx.SetOwner(msg.Owner); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{}.AddAttribute("owner", string(msg.Owner)), nil
}

// Execute routes an ownable execute message.
func (m Module) Execute(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg ExecuteMsg) (domain.Response, error) {
	switch {
	case msg.SetOwner != nil:
		return m.setOwner(tx, info, *msg.SetOwner)
	default:
		return domain.Response{}, domain.InvalidInputError{Reason: "unknown ownable operation"}
	}
}

func (Module) setOwner(tx domain.Transaction, info domain.MsgInfo, msg SetOwnerMsg) (domain.Response, error) {
	if msg.Owner.Empty() {
		return domain.Response{}, domain.InvalidInputError{Reason: "owner address required"}
	}
	if err := RequireOwner(tx, info.Sender); err != nil {
		return domain.Response{}, err
	}
	if err := tx.SetOwner(msg.Owner); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{}.
		AddAttribute("action", "set_owner").
		AddAttribute("owner", string(msg.Owner)), nil
}

// Query routes an ownable query message.
func (Module) Query(view domain.TransactionView, _ domain.Env, msg QueryMsg) (any, error) {
	switch {
	case msg.GetOwner != nil:
		owner, ok := view.Owner()
		if !ok {
			return nil, domain.NotFoundError{Entity: domain.EntityOwner}
		}
		return OwnerResponse{Owner: owner}, nil
	case msg.IsOwner != nil:
		owner, _ := view.Owner()
		return IsOwnerResponse{IsOwner: !owner.Empty() && owner == msg.IsOwner.Address}, nil
	default:
		return nil, domain.InvalidInputError{Reason: "unknown ownable query"}
	}
}

// RequireOwner returns ErrUnauthorized unless addr is the stored owner. Other
// modules call this for their owner-gated operations.
func RequireOwner(view domain.TransactionView, addr domain.Address) error {
	owner, ok := view.Owner()
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityOwner}
	}
	if owner != addr {
		return domain.ErrUnauthorized
	}
	return nil
}
