// Package metadata implements the generic metadata record: one structured
// document, replaced wholesale on update, writes gated by ownable.
package metadata

import (
	"seathub/internal/modules/ownable"
	"seathub/pkg/domain"
)

// InstantiateMsg carries the initial metadata document.
type InstantiateMsg struct {
	Metadata domain.Document `json:"metadata"`
}

// ExecuteMsg is the tagged union of metadata operations.
type ExecuteMsg struct {
	SetMetadata *SetMetadataMsg `json:"set_metadata,omitempty"`
}

// SetMetadataMsg replaces the stored document.
type SetMetadataMsg struct {
	Metadata domain.Document `json:"metadata"`
}

// QueryMsg is the tagged union of metadata queries.
type QueryMsg struct {
	GetMetadata *struct{} `json:"get_metadata,omitempty"`
}

// Module is the metadata capability.
type Module struct{}

// Instantiate stores the initial document. An undefined document is allowed;
// get_metadata then reports not found until one is set.
func (Module) Instantiate(tx domain.Transaction, _ domain.Env, _ domain.MsgInfo, msg InstantiateMsg) (domain.Response, error) {
	if err := tx.SetMetadata(msg.Metadata); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{}, nil
}

// Execute routes a metadata execute message.
func (m Module) Execute(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg ExecuteMsg) (domain.Response, error) {
	switch {
	case msg.SetMetadata != nil:
		return m.setMetadata(tx, info, *msg.SetMetadata)
	default:
		return domain.Response{}, domain.InvalidInputError{Reason: "unknown metadata operation"}
	}
}

func (Module) setMetadata(tx domain.Transaction, info domain.MsgInfo, msg SetMetadataMsg) (domain.Response, error) {
	if err := ownable.RequireOwner(tx, info.Sender); err != nil {
		return domain.Response{}, err
	}
	if err := tx.SetMetadata(msg.Metadata); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{}.AddAttribute("action", "set_metadata"), nil
}

// Query routes a metadata query message.
func (Module) Query(view domain.TransactionView, _ domain.Env, msg QueryMsg) (any, error) {
	switch {
	case msg.GetMetadata != nil:
		doc, ok := view.Metadata()
		if !ok {
			return nil, domain.NotFoundError{Entity: domain.EntityMetadata}
		}
		return doc, nil
	default:
		return nil, domain.InvalidInputError{Reason: "unknown metadata query"}
	}
}
