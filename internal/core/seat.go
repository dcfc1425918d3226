package core

import (
	"context"
	"encoding/json"
	"fmt"

	"seathub/internal/modules/metadata"
	"seathub/internal/modules/ownable"
	"seathub/internal/modules/redeemable"
	"seathub/internal/modules/sales"
	"seathub/internal/modules/sellable"
	"seathub/internal/modules/token"
	"seathub/pkg/domain"
)

// Module names registered by the Seat contract. Envelope keys follow the wire
// format of the deployed contracts.
const (
	ModuleOwnable    = "ownable"
	ModuleMetadata   = "metadata"
	ModuleSeatToken  = "seat_token"
	ModuleRedeemable = "redeemable"
	ModuleSellable   = "sellable"
	ModuleSales      = "sales"

	querySeats = "seats"
)

// SeatInstantiateMsg carries one instantiate payload per composed module plus
// the linked hub address. Sellable is optional; when absent the market starts
// with no listings.
type SeatInstantiateMsg struct {
	Ownable     ownable.InstantiateMsg    `json:"ownable"`
	Metadata    metadata.InstantiateMsg   `json:"metadata"`
	SeatToken   token.InstantiateMsg      `json:"seat_token"`
	Redeemable  redeemable.InstantiateMsg `json:"redeemable"`
	Sales       sales.InstantiateMsg      `json:"sales"`
	Sellable    *sellable.InstantiateMsg  `json:"sellable,omitempty"`
	HubContract domain.Address            `json:"hub_contract"`
}

// SeatsResponse answers the contract-level seats query: every ledger token
// joined with its listing state.
type SeatsResponse struct {
	Seats []domain.SeatInfo `json:"seats"`
}

// SeatsMsg bounds the seats enumeration.
type SeatsMsg struct {
	StartAfter string `json:"start_after,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// Seat is the composed marketplace contract: ownership, metadata, the token
// ledger, redemption locking, fixed-price listings, and primary-sale
// campaigns behind one dispatch surface.
type Seat struct {
	store      domain.PersistentStore
	ownable    ownable.Module
	metadata   metadata.Module
	token      token.Module
	redeemable redeemable.Module
	sellable   sellable.Module
	sales      sales.Module
	opts       contractOptions
}

// NewSeat builds a seat contract over the store. The chain querier supplies
// the bonded denomination used to default a sale price denom; a failure there
// is fatal because sales would silently reject otherwise-valid campaigns.
func NewSeat(ctx context.Context, store domain.PersistentStore, chain domain.ChainQuerier, opts ...Option) (*Seat, error) {
	denom, err := chain.BondedDenom(ctx)
	if err != nil {
		return nil, fmt.Errorf("query bonded denom: %w", err)
	}
	seat := &Seat{
		store: store,
		sales: sales.Module{DefaultDenom: denom},
	}
	for _, opt := range opts {
		opt(&seat.opts)
	}
	return seat, nil
}

// Instantiate sets up every composed module in declared order inside one
// transaction; the first module failure discards all writes. The merged
// response carries the seat_contract-instantiate event with the linked hub.
func (s *Seat) Instantiate(ctx context.Context, env domain.Env, info domain.MsgInfo, msg SeatInstantiateMsg) (ContractResponse, error) {
	var out ContractResponse
	err := s.opts.instrument(ctx, "seat.instantiate", func(ctx context.Context) error {
		return s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if err := tx.SetLinkedHub(msg.HubContract); err != nil {
				return err
			}
			parts := make([]domain.Response, 0, 6)
			step := func(module string, fn func() (domain.Response, error)) error {
				resp, err := fn()
				if err != nil {
					return moduleErr(module, err)
				}
				parts = append(parts, resp)
				return nil
			}
			if err := step(ModuleOwnable, func() (domain.Response, error) {
				return s.ownable.Instantiate(tx, env, info, msg.Ownable)
			}); err != nil {
				return err
			}
			if err := step(ModuleMetadata, func() (domain.Response, error) {
				return s.metadata.Instantiate(tx, env, info, msg.Metadata)
			}); err != nil {
				return err
			}
			if err := step(ModuleSeatToken, func() (domain.Response, error) {
				return s.token.Instantiate(tx, env, info, msg.SeatToken)
			}); err != nil {
				return err
			}
			if err := step(ModuleRedeemable, func() (domain.Response, error) {
				return s.redeemable.Instantiate(tx, env, info, msg.Redeemable)
			}); err != nil {
				return err
			}
			if err := step(ModuleSales, func() (domain.Response, error) {
				return s.sales.Instantiate(tx, env, info, msg.Sales)
			}); err != nil {
				return err
			}
			sellableMsg := sellable.InstantiateMsg{}
			if msg.Sellable != nil {
				sellableMsg = *msg.Sellable
			}
			if err := step(ModuleSellable, func() (domain.Response, error) {
				return s.sellable.Instantiate(tx, env, info, sellableMsg)
			}); err != nil {
				return err
			}
			out = mergeResponses(parts...).AddEvent(domain.Event{
				Type: "seat_contract-instantiate",
				Attributes: []domain.Attribute{
					{Key: "hub_address", Value: string(msg.HubContract)},
				},
			})
			return nil
		})
	})
	if err != nil {
		return ContractResponse{}, err
	}
	return out, nil
}

// Execute decodes the single-key module envelope, runs the addressed module
// inside one transaction, and merges its partial response. A committed
// execute is archived when an archiver is configured.
func (s *Seat) Execute(ctx context.Context, env domain.Env, info domain.MsgInfo, raw []byte) (ContractResponse, error) {
	module, payload, err := decodeEnvelope(raw)
	if err != nil {
		return ContractResponse{}, err
	}
	var out ContractResponse
	err = s.opts.instrument(ctx, "seat.execute."+module, func(ctx context.Context) error {
		err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			resp, err := s.executeModule(tx, env, info, module, payload)
			if err != nil {
				return err
			}
			out = mergeResponses(resp)
			return nil
		})
		if err != nil {
			return err
		}
		return s.archive(ctx, env)
	})
	if err != nil {
		return ContractResponse{}, err
	}
	return out, nil
}

func (s *Seat) executeModule(tx domain.Transaction, env domain.Env, info domain.MsgInfo, module string, payload json.RawMessage) (domain.Response, error) {
	switch module {
	case ModuleOwnable:
		var msg ownable.ExecuteMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return domain.Response{}, err
		}
		resp, err := s.ownable.Execute(tx, env, info, msg)
		return resp, moduleErr(module, err)
	case ModuleMetadata:
		var msg metadata.ExecuteMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return domain.Response{}, err
		}
		resp, err := s.metadata.Execute(tx, env, info, msg)
		return resp, moduleErr(module, err)
	case ModuleSeatToken:
		var msg token.ExecuteMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return domain.Response{}, err
		}
		resp, err := s.token.Execute(tx, env, info, msg)
		return resp, moduleErr(module, err)
	case ModuleRedeemable:
		var msg redeemable.ExecuteMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return domain.Response{}, err
		}
		resp, err := s.redeemable.Execute(tx, env, info, msg)
		return resp, moduleErr(module, err)
	case ModuleSellable:
		var msg sellable.ExecuteMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return domain.Response{}, err
		}
		resp, err := s.sellable.Execute(tx, env, info, msg)
		return resp, moduleErr(module, err)
	case ModuleSales:
		var msg sales.ExecuteMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return domain.Response{}, err
		}
		resp, err := s.sales.Execute(tx, env, info, msg)
		return resp, moduleErr(module, err)
	default:
		return domain.Response{}, domain.ModuleNotFoundError{Module: module}
	}
}

// Query decodes the envelope and answers through a read-only view. Beyond the
// per-module queries the seat answers the contract-level seats enumeration.
func (s *Seat) Query(ctx context.Context, env domain.Env, raw []byte) (any, error) {
	module, payload, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	var out any
	err = s.opts.instrument(ctx, "seat.query."+module, func(ctx context.Context) error {
		return s.store.View(ctx, func(view domain.TransactionView) error {
			var err error
			out, err = s.queryModule(view, env, module, payload)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Seat) queryModule(view domain.TransactionView, env domain.Env, module string, payload json.RawMessage) (any, error) {
	switch module {
	case ModuleOwnable:
		var msg ownable.QueryMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return nil, err
		}
		out, err := s.ownable.Query(view, env, msg)
		return out, moduleErr(module, err)
	case ModuleMetadata:
		var msg metadata.QueryMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return nil, err
		}
		out, err := s.metadata.Query(view, env, msg)
		return out, moduleErr(module, err)
	case ModuleSeatToken:
		var msg token.QueryMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return nil, err
		}
		out, err := s.token.Query(view, env, msg)
		return out, moduleErr(module, err)
	case ModuleRedeemable:
		var msg redeemable.QueryMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return nil, err
		}
		out, err := s.redeemable.Query(view, env, msg)
		return out, moduleErr(module, err)
	case ModuleSellable:
		var msg sellable.QueryMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return nil, err
		}
		out, err := s.sellable.Query(view, env, msg)
		return out, moduleErr(module, err)
	case ModuleSales:
		var msg sales.QueryMsg
		if err := decodePayload(module, payload, &msg); err != nil {
			return nil, err
		}
		out, err := s.sales.Query(view, env, msg)
		return out, moduleErr(module, err)
	case querySeats:
		var msg SeatsMsg
		if err := decodePayload(querySeats, payload, &msg); err != nil {
			return nil, err
		}
		return SeatsResponse{Seats: collectSeats(view, msg)}, nil
	default:
		return nil, domain.ModuleNotFoundError{Module: module}
	}
}

func (s *Seat) archive(ctx context.Context, env domain.Env) error {
	if s.opts.archiver == nil {
		return nil
	}
	return s.opts.archiver.Archive(ctx, s.store, env.Contract)
}

// collectSeats walks the full token ledger joining each token with its
// listing, page by page to honor the store's enumeration cap.
func collectSeats(view domain.TransactionView, msg SeatsMsg) []domain.SeatInfo {
	seats := make([]domain.SeatInfo, 0)
	after := msg.StartAfter
	remaining := msg.Limit
	for {
		page := domain.Page{StartAfter: after}
		if remaining > 0 {
			page.Limit = remaining
		}
		tokens := view.ListTokens(page)
		if len(tokens) == 0 {
			break
		}
		for _, tok := range tokens {
			info := domain.SeatInfo{
				TokenID:   tok.ID,
				Owner:     tok.Owner,
				Approvals: tok.Approvals,
				TokenURI:  tok.URI,
				Extension: tok.Extension,
			}
			if price, ok := view.FindListing(tok.ID); ok {
				p := price
				info.ListedPrice = &p
			}
			seats = append(seats, info)
		}
		after = tokens[len(tokens)-1].ID
		if remaining > 0 {
			remaining -= len(tokens)
			if remaining <= 0 {
				break
			}
		}
	}
	return seats
}
