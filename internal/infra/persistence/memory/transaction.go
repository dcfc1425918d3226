package memory

import (
	"fmt"
	"sort"

	"seathub/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.Transaction = (*transaction)(nil)

// transaction is the single exclusive handle to a state copy for the duration
// of one call. The read-only flag guards the query path against mutation.
type transaction struct {
	state    state
	readOnly bool
}

func (tx *transaction) guardWrite(op string) error {
	if tx.readOnly {
		return domain.StorageError{Err: fmt.Errorf("%s on read-only view", op)}
	}
	return nil
}

// Reads ----------------------------------------------------------------------

func (tx *transaction) Owner() (domain.Address, bool) {
	return tx.state.owner, tx.state.hasOwner
}

func (tx *transaction) Metadata() (domain.Document, bool) {
	return tx.state.metadata, tx.state.metadata.Defined()
}

func (tx *transaction) LinkedHub() (domain.Address, bool) {
	return tx.state.linkedHub, !tx.state.linkedHub.Empty()
}

func (tx *transaction) TokenConfig() (domain.TokenConfig, bool) {
	return tx.state.tokenCfg, tx.state.hasTokenCfg
}

func (tx *transaction) FindToken(id string) (domain.Token, bool) {
	t, ok := tx.state.tokens[id]
	if !ok {
		return domain.Token{}, false
	}
	return cloneToken(t), true
}

func (tx *transaction) CountTokens() int {
	return len(tx.state.tokens)
}

func (tx *transaction) ListTokens(page domain.Page) []domain.Token {
	ids := sortedKeys(tx.state.tokens, page)
	out := make([]domain.Token, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneToken(tx.state.tokens[id]))
	}
	return out
}

func (tx *transaction) IsRedeemed(id string) bool {
	_, ok := tx.state.redeemed[id]
	return ok
}

func (tx *transaction) RedeemedItems() []string {
	ids := make([]string, 0, len(tx.state.redeemed))
	for id := range tx.state.redeemed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (tx *transaction) FindListing(id string) (domain.Coin, bool) {
	price, ok := tx.state.listings[id]
	return price, ok
}

func (tx *transaction) ListListings(page domain.Page) []domain.Listing {
	ids := sortedKeys(tx.state.listings, page)
	out := make([]domain.Listing, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Listing{TokenID: id, Price: tx.state.listings[id]})
	}
	return out
}

func (tx *transaction) ListPrimarySales() []domain.PrimarySale {
	out := append([]domain.PrimarySale(nil), tx.state.sales...)
	for i := range out {
		out[i].Price = append([]domain.Coin(nil), out[i].Price...)
	}
	return out
}

// Writes ---------------------------------------------------------------------

func (tx *transaction) SetOwner(addr domain.Address) error {
	if err := tx.guardWrite("set owner"); err != nil {
		return err
	}
	tx.state.owner = addr
	tx.state.hasOwner = true
	return nil
}

func (tx *transaction) SetMetadata(doc domain.Document) error {
	if err := tx.guardWrite("set metadata"); err != nil {
		return err
	}
	tx.state.metadata = doc
	return nil
}

func (tx *transaction) SetLinkedHub(addr domain.Address) error {
	if err := tx.guardWrite("set linked hub"); err != nil {
		return err
	}
	tx.state.linkedHub = addr
	return nil
}

func (tx *transaction) SetTokenConfig(cfg domain.TokenConfig) error {
	if err := tx.guardWrite("set token config"); err != nil {
		return err
	}
	tx.state.tokenCfg = cfg
	tx.state.hasTokenCfg = true
	return nil
}

func (tx *transaction) PutToken(t domain.Token) error {
	if err := tx.guardWrite("put token"); err != nil {
		return err
	}
	if _, exists := tx.state.tokens[t.ID]; exists {
		return domain.ConflictError{Reason: fmt.Sprintf("token %s already exists", t.ID)}
	}
	tx.state.tokens[t.ID] = cloneToken(t)
	return nil
}

func (tx *transaction) UpdateToken(id string, mutator func(*domain.Token) error) (domain.Token, error) {
	if err := tx.guardWrite("update token"); err != nil {
		return domain.Token{}, err
	}
	stored, ok := tx.state.tokens[id]
	if !ok {
		return domain.Token{}, domain.NotFoundError{Entity: domain.EntityToken, ID: id}
	}
	current := cloneToken(stored)
	if err := mutator(&current); err != nil {
		return domain.Token{}, err
	}
	current.ID = id
	tx.state.tokens[id] = cloneToken(current)
	return cloneToken(current), nil
}

func (tx *transaction) MarkRedeemed(id string) error {
	if err := tx.guardWrite("mark redeemed"); err != nil {
		return err
	}
	if _, ok := tx.state.redeemed[id]; ok {
		return domain.ConflictError{Reason: fmt.Sprintf("token %s already redeemed", id)}
	}
	tx.state.redeemed[id] = struct{}{}
	return nil
}

func (tx *transaction) SetListing(id string, price domain.Coin) error {
	if err := tx.guardWrite("set listing"); err != nil {
		return err
	}
	tx.state.listings[id] = price
	return nil
}

func (tx *transaction) RemoveListing(id string) error {
	if err := tx.guardWrite("remove listing"); err != nil {
		return err
	}
	if _, ok := tx.state.listings[id]; !ok {
		return domain.NotFoundError{Entity: domain.EntityListing, ID: id}
	}
	delete(tx.state.listings, id)
	return nil
}

func (tx *transaction) AppendPrimarySale(sale domain.PrimarySale) (domain.PrimarySale, error) {
	if err := tx.guardWrite("append primary sale"); err != nil {
		return domain.PrimarySale{}, err
	}
	sale.ID = uint64(len(tx.state.sales)) + 1
	sale.Price = append([]domain.Coin(nil), sale.Price...)
	tx.state.sales = append(tx.state.sales, sale)
	return sale, nil
}

func (tx *transaction) UpdatePrimarySale(id uint64, mutator func(*domain.PrimarySale) error) (domain.PrimarySale, error) {
	if err := tx.guardWrite("update primary sale"); err != nil {
		return domain.PrimarySale{}, err
	}
	if id == 0 || id > uint64(len(tx.state.sales)) {
		return domain.PrimarySale{}, domain.NotFoundError{Entity: domain.EntityPrimarySale, ID: fmt.Sprintf("%d", id)}
	}
	current := tx.state.sales[id-1]
	if err := mutator(&current); err != nil {
		return domain.PrimarySale{}, err
	}
	current.ID = id
	tx.state.sales[id-1] = current
	return current, nil
}

// sortedKeys orders, pages and bounds a bucket's keys for enumeration.
func sortedKeys[V any](bucket map[string]V, page domain.Page) []string {
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if page.Descending {
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	}
	if page.StartAfter != "" {
		cut := 0
		for cut < len(ids) {
			passed := ids[cut] > page.StartAfter
			if page.Descending {
				passed = ids[cut] < page.StartAfter
			}
			if passed {
				break
			}
			cut++
		}
		ids = ids[cut:]
	}
	limit := page.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}
