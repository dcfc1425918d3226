// Package sales implements the primary-sale campaign state machine: an
// append-only campaign log with a recomputed-on-read active predicate.
package sales

import (
	"strconv"
	"time"

	"seathub/internal/modules/ownable"
	"seathub/internal/modules/token"
	"seathub/pkg/domain"
)

// InstantiateMsg carries no configuration; campaigns are created by execute.
type InstantiateMsg struct{}

// ExecuteMsg is the tagged union of sales operations.
type ExecuteMsg struct {
	PrimarySale *PrimarySaleMsg `json:"primary_sale,omitempty"`
	BuyItem     *BuyItemMsg     `json:"buy_item,omitempty"`
	HaltSale    *struct{}       `json:"halt_sale,omitempty"`
}

// PrimarySaleMsg creates a new campaign.
type PrimarySaleMsg struct {
	TotalSupply uint64        `json:"total_supply"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Price       []domain.Coin `json:"price"`
}

// BuyItemMsg purchases one newly minted token from the active campaign.
type BuyItemMsg struct {
	TokenID   string          `json:"token_id"`
	Owner     domain.Address  `json:"owner,omitempty"`
	TokenURI  string          `json:"token_uri,omitempty"`
	Extension domain.Document `json:"extension,omitempty"`
}

// QueryMsg is the tagged union of sales queries.
type QueryMsg struct {
	ActivePrimarySale *struct{} `json:"active_primary_sale,omitempty"`
	PrimarySales      *struct{} `json:"primary_sales,omitempty"`
}

// ActivePrimarySaleResponse answers active_primary_sale; Sale is nil when no
// campaign is active.
type ActivePrimarySaleResponse struct {
	Sale *domain.PrimarySale `json:"sale,omitempty"`
}

// PrimarySalesResponse answers primary_sales with the full campaign history
// in creation order.
type PrimarySalesResponse struct {
	Sales []domain.PrimarySale `json:"sales"`
}

// Module is the sales capability. DefaultDenom fills a campaign price entry
// whose denomination is empty; the composition layer sets it from the chain's
// bonded denomination.
type Module struct {
	DefaultDenom string
}

// Instantiate is a no-op; the campaign log starts empty.
func (Module) Instantiate(_ domain.Transaction, _ domain.Env, _ domain.MsgInfo, _ InstantiateMsg) (domain.Response, error) {
	return domain.Response{}, nil
}

// Execute routes a sales execute message.
func (m Module) Execute(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg ExecuteMsg) (domain.Response, error) {
	switch {
	case msg.PrimarySale != nil:
		return m.createSale(tx, env, info, *msg.PrimarySale)
	case msg.BuyItem != nil:
		return m.buyItem(tx, env, info, *msg.BuyItem)
	case msg.HaltSale != nil:
		return m.haltSale(tx, env, info)
	default:
		return domain.Response{}, domain.InvalidInputError{Reason: "unknown sales operation"}
	}
}

func (m Module) createSale(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg PrimarySaleMsg) (domain.Response, error) {
	if err := ownable.RequireOwner(tx, info.Sender); err != nil {
		return domain.Response{}, err
	}
	if msg.TotalSupply == 0 {
		return domain.Response{}, domain.InvalidInputError{Reason: "total supply must be positive"}
	}
	if !msg.EndTime.After(msg.StartTime) {
		return domain.Response{}, domain.InvalidInputError{Reason: "end time must be after start time"}
	}
	if len(msg.Price) == 0 {
		return domain.Response{}, domain.InvalidInputError{Reason: "price required"}
	}
	price := make([]domain.Coin, len(msg.Price))
	for i, c := range msg.Price {
		if c.Amount == 0 {
			return domain.Response{}, domain.InvalidInputError{Reason: "price amount must be positive"}
		}
		if c.Denom == "" {
			if m.DefaultDenom == "" {
				return domain.Response{}, domain.InvalidInputError{Reason: "price denom required"}
			}
			c.Denom = m.DefaultDenom
		}
		price[i] = c
	}
	// Single-active-sale guard: consult the full history, not just the latest
	// record, so halted and exhausted campaigns do not block a new one. The
	// overlap scan also covers future windows; two accepted campaigns must
	// never become active at the same instant.
	if active, ok := activeSale(tx, env.Now); ok {
		return domain.Response{}, domain.ConflictError{Reason: activeConflictReason(active)}
	}
	if open, ok := overlappingSale(tx, msg.StartTime, msg.EndTime); ok {
		return domain.Response{}, domain.ConflictError{Reason: "window overlaps sale " + formatID(open.ID)}
	}
	sale, err := tx.AppendPrimarySale(domain.PrimarySale{
		TotalSupply: msg.TotalSupply,
		StartTime:   msg.StartTime,
		EndTime:     msg.EndTime,
		Price:       price,
	})
	if err != nil {
		return domain.Response{}, err
	}
	return domain.Response{}.
		AddAttribute("action", "primary_sale").
		AddAttribute("sale_id", formatID(sale.ID)), nil
}

func (m Module) buyItem(tx domain.Transaction, env domain.Env, info domain.MsgInfo, msg BuyItemMsg) (domain.Response, error) {
	// Prefer the sale that still has supply; an exhausted record earlier in
	// the log must not shadow a live campaign sharing the window.
	sale, ok := activeSale(tx, env.Now)
	if !ok {
		if _, exhausted := currentWindowSale(tx, env.Now); exhausted {
			return domain.Response{}, domain.ConflictError{Reason: "sale supply exhausted"}
		}
		return domain.Response{}, domain.NotFoundError{Entity: domain.EntityPrimarySale}
	}
	if !info.Funds.Covers(sale.Price) {
		return domain.Response{}, domain.InvalidInputError{Reason: "insufficient funds for sale price"}
	}
	recipient := msg.Owner
	if recipient.Empty() {
		recipient = info.Sender
	}
	if err := token.Mint(tx, env.Now, token.MintMsg{
		TokenID:   msg.TokenID,
		Owner:     recipient,
		TokenURI:  msg.TokenURI,
		Extension: msg.Extension,
	}); err != nil {
		return domain.Response{}, err
	}
	if _, err := tx.UpdatePrimarySale(sale.ID, func(s *domain.PrimarySale) error {
		s.Minted++
		return nil
	}); err != nil {
		return domain.Response{}, err
	}
	owner, ok := tx.Owner()
	if !ok {
		return domain.Response{}, domain.NotFoundError{Entity: domain.EntityOwner}
	}
	resp := domain.Response{}.
		AddAttribute("action", "buy_item").
		AddAttribute("token_id", msg.TokenID).
		AddAttribute("sale_id", formatID(sale.ID)).
		AddEvent(domain.Event{Type: "seat-minted", Attributes: []domain.Attribute{
			{Key: "token_id", Value: msg.TokenID},
			{Key: "owner", Value: string(recipient)},
		}}).
		AddTransfer(owner, sale.Price)
	if refund := info.Funds.Sub(sale.Price); len(refund) > 0 {
		resp = resp.AddTransfer(info.Sender, refund)
	}
	return resp, nil
}

func (m Module) haltSale(tx domain.Transaction, env domain.Env, info domain.MsgInfo) (domain.Response, error) {
	if err := ownable.RequireOwner(tx, info.Sender); err != nil {
		return domain.Response{}, err
	}
	sale, ok := activeSale(tx, env.Now)
	if !ok {
		return domain.Response{}, domain.NotFoundError{Entity: domain.EntityPrimarySale}
	}
	if _, err := tx.UpdatePrimarySale(sale.ID, func(s *domain.PrimarySale) error {
		s.Halted = true
		return nil
	}); err != nil {
		return domain.Response{}, err
	}
	return domain.Response{}.
		AddAttribute("action", "halt_sale").
		AddAttribute("sale_id", formatID(sale.ID)), nil
}

// Query routes a sales query message.
func (Module) Query(view domain.TransactionView, env domain.Env, msg QueryMsg) (any, error) {
	switch {
	case msg.ActivePrimarySale != nil:
		if sale, ok := activeSale(view, env.Now); ok {
			return ActivePrimarySaleResponse{Sale: &sale}, nil
		}
		return ActivePrimarySaleResponse{}, nil
	case msg.PrimarySales != nil:
		return PrimarySalesResponse{Sales: view.ListPrimarySales()}, nil
	default:
		return nil, domain.InvalidInputError{Reason: "unknown sales query"}
	}
}

// activeSale scans the campaign log for a sale whose window covers now, that
// was not halted, and that has supply left.
func activeSale(view domain.TransactionView, now time.Time) (domain.PrimarySale, bool) {
	for _, sale := range view.ListPrimarySales() {
		if sale.ActiveAt(now) {
			return sale, true
		}
	}
	return domain.PrimarySale{}, false
}

// currentWindowSale finds a non-halted sale whose window covers now without
// regard to remaining supply. Used only after activeSale comes up empty, so
// supply exhaustion reports Conflict rather than NotFound.
func currentWindowSale(view domain.TransactionView, now time.Time) (domain.PrimarySale, bool) {
	for _, sale := range view.ListPrimarySales() {
		if sale.Halted {
			continue
		}
		if !now.Before(sale.StartTime) && now.Before(sale.EndTime) {
			return sale, true
		}
	}
	return domain.PrimarySale{}, false
}

// overlappingSale finds a non-halted, non-exhausted sale whose window
// intersects [start, end).
func overlappingSale(view domain.TransactionView, start, end time.Time) (domain.PrimarySale, bool) {
	for _, sale := range view.ListPrimarySales() {
		if sale.Halted || sale.Minted >= sale.TotalSupply {
			continue
		}
		if start.Before(sale.EndTime) && sale.StartTime.Before(end) {
			return sale, true
		}
	}
	return domain.PrimarySale{}, false
}

func activeConflictReason(sale domain.PrimarySale) string {
	return "sale " + formatID(sale.ID) + " is still active"
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
