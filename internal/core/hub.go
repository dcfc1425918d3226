package core

import (
	"context"
	"encoding/json"

	"seathub/internal/modules/metadata"
	"seathub/internal/modules/ownable"
	"seathub/pkg/domain"
)

// HubInstantiateMsg carries the instantiate payloads for the hub's two
// modules.
type HubInstantiateMsg struct {
	Ownable  ownable.InstantiateMsg  `json:"ownable"`
	Metadata metadata.InstantiateMsg `json:"metadata"`
}

// Hub is the collection contract: ownership and a metadata document, nothing
// else. Seats link back to their hub by address.
type Hub struct {
	store    domain.PersistentStore
	ownable  ownable.Module
	metadata metadata.Module
	opts     contractOptions
}

// NewHub builds a hub contract over the store.
func NewHub(store domain.PersistentStore, opts ...Option) *Hub {
	hub := &Hub{store: store}
	for _, opt := range opts {
		opt(&hub.opts)
	}
	return hub
}

// Instantiate sets up ownable then metadata in one transaction.
func (h *Hub) Instantiate(ctx context.Context, env domain.Env, info domain.MsgInfo, msg HubInstantiateMsg) (ContractResponse, error) {
	var out ContractResponse
	err := h.opts.instrument(ctx, "hub.instantiate", func(ctx context.Context) error {
		return h.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			ownableResp, err := h.ownable.Instantiate(tx, env, info, msg.Ownable)
			if err != nil {
				return moduleErr(ModuleOwnable, err)
			}
			metadataResp, err := h.metadata.Instantiate(tx, env, info, msg.Metadata)
			if err != nil {
				return moduleErr(ModuleMetadata, err)
			}
			out = mergeResponses(ownableResp, metadataResp)
			return nil
		})
	})
	if err != nil {
		return ContractResponse{}, err
	}
	return out, nil
}

// Execute routes the envelope to ownable or metadata.
func (h *Hub) Execute(ctx context.Context, env domain.Env, info domain.MsgInfo, raw []byte) (ContractResponse, error) {
	module, payload, err := decodeEnvelope(raw)
	if err != nil {
		return ContractResponse{}, err
	}
	var out ContractResponse
	err = h.opts.instrument(ctx, "hub.execute."+module, func(ctx context.Context) error {
		err := h.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			resp, err := h.executeModule(tx, env, info, module, payload)
			if err != nil {
				return err
			}
			out = mergeResponses(resp)
			return nil
		})
		if err != nil {
			return err
		}
		if h.opts.archiver != nil {
			return h.opts.archiver.Archive(ctx, h.store, env.Contract)
		}
		return nil
	})
	if err != nil {
		return ContractResponse{}, err
	}
	return out, nil
}

func (h *Hub) executeModule(tx domain.Transaction, env domain.Env, info domain.MsgInfo, module string, payload json.RawMessage) (domain.Response, error) {
	switch module {
	case ModuleOwnable:
		var msg ownable.ExecuteMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return domain.Response{}, err
		}
		resp, err := h.ownable.Execute(tx, env, info, msg)
		return resp, moduleErr(module, err)
	case ModuleMetadata:
		var msg metadata.ExecuteMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return domain.Response{}, err
		}
		resp, err := h.metadata.Execute(tx, env, info, msg)
		return resp, moduleErr(module, err)
	default:
		return domain.Response{}, domain.ModuleNotFoundError{Module: module}
	}
}

// Query answers ownable and metadata queries through a read-only view.
func (h *Hub) Query(ctx context.Context, env domain.Env, raw []byte) (any, error) {
	module, payload, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	var out any
	err = h.opts.instrument(ctx, "hub.query."+module, func(ctx context.Context) error {
		return h.store.View(ctx, func(view domain.TransactionView) error {
			switch module {
			case ModuleOwnable:
				var msg ownable.QueryMsg
				if err := decodePayload(module, payload, &msg); err != nil {
					return err
				}
				res, err := h.ownable.Query(view, env, msg)
				if err != nil {
					return moduleErr(module, err)
				}
				out = res
				return nil
			case ModuleMetadata:
				var msg metadata.QueryMsg
				if err := decodePayload(module, payload, &msg); err != nil {
					return err
				}
				res, err := h.metadata.Query(view, env, msg)
				if err != nil {
					return moduleErr(module, err)
				}
				out = res
				return nil
			default:
				return domain.ModuleNotFoundError{Module: module}
			}
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
