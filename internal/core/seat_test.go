package core

import (
	"context"
	"errors"
	"testing"
	"time"

	memblob "seathub/internal/infra/blob/memory"
	"seathub/internal/infra/persistence/memory"
	"seathub/internal/modules/metadata"
	"seathub/internal/modules/ownable"
	"seathub/internal/modules/redeemable"
	"seathub/internal/modules/sales"
	"seathub/internal/modules/sellable"
	"seathub/internal/modules/token"
	"seathub/pkg/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testEnv() domain.Env {
	return domain.Env{Contract: "seat1", Now: testNow}
}

func seatMetadataDoc(t *testing.T) domain.Document {
	t.Helper()
	doc, err := domain.NewDocumentFromValue(SeatMetadata{
		Name:           "Kenny's contract",
		ImageURI:       "image",
		Description:    "description",
		Benefits:       []SeatBenefit{{Name: "name", Status: "status"}},
		TemplateNumber: 1,
		ImageSettings:  ImageSettings{SeatName: true, HubName: true},
	})
	if err != nil {
		t.Fatalf("metadata document: %v", err)
	}
	return doc
}

func seatInstantiateMsg(t *testing.T) SeatInstantiateMsg {
	t.Helper()
	return SeatInstantiateMsg{
		Ownable:     ownable.InstantiateMsg{Owner: "alice"},
		Metadata:    metadata.InstantiateMsg{Metadata: seatMetadataDoc(t)},
		SeatToken:   token.InstantiateMsg{Name: "Kenny's Token Contract", Symbol: "KNY", Minter: "alice"},
		Redeemable:  redeemable.InstantiateMsg{},
		Sales:       sales.InstantiateMsg{},
		HubContract: "hub1",
	}
}

func newTestSeat(t *testing.T, opts ...Option) (*Seat, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	seat, err := NewSeat(context.Background(), store, domain.StaticChain{Denom: "uturnt"}, opts...)
	if err != nil {
		t.Fatalf("new seat: %v", err)
	}
	if _, err := seat.Instantiate(context.Background(), testEnv(), domain.MsgInfo{Sender: "alice"}, seatInstantiateMsg(t)); err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return seat, store
}

func exec(t *testing.T, seat *Seat, sender domain.Address, funds domain.Coins, raw string) ContractResponse {
	t.Helper()
	resp, err := seat.Execute(context.Background(), testEnv(), domain.MsgInfo{Sender: sender, Funds: funds}, []byte(raw))
	if err != nil {
		t.Fatalf("execute %s: %v", raw, err)
	}
	return resp
}

func TestSeatInstantiateComposesModules(t *testing.T) {
	store := memory.NewStore()
	seat, err := NewSeat(context.Background(), store, domain.StaticChain{Denom: "uturnt"})
	if err != nil {
		t.Fatalf("new seat: %v", err)
	}
	resp, err := seat.Instantiate(context.Background(), testEnv(), domain.MsgInfo{Sender: "alice"}, seatInstantiateMsg(t))
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}

	found := false
	for _, ev := range resp.Events {
		if ev.Type == "seat_contract-instantiate" {
			found = true
			if len(ev.Attributes) != 1 || ev.Attributes[0].Key != "hub_address" || ev.Attributes[0].Value != "hub1" {
				t.Fatalf("unexpected instantiate event attributes: %+v", ev.Attributes)
			}
		}
	}
	if !found {
		t.Fatalf("missing instantiate event in %+v", resp.Events)
	}

	out, err := seat.Query(context.Background(), testEnv(), []byte(`{"ownable":{"get_owner":{}}}`))
	if err != nil {
		t.Fatalf("query owner: %v", err)
	}
	if out.(ownable.OwnerResponse).Owner != "alice" {
		t.Fatalf("unexpected owner: %+v", out)
	}

	out, err = seat.Query(context.Background(), testEnv(), []byte(`{"metadata":{"get_metadata":{}}}`))
	if err != nil {
		t.Fatalf("query metadata: %v", err)
	}
	var meta SeatMetadata
	if err := out.(domain.Document).Decode(&meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta.Name != "Kenny's contract" || !meta.ImageSettings.HubName {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	out, err = seat.Query(context.Background(), testEnv(), []byte(`{"seat_token":{"num_tokens":{}}}`))
	if err != nil {
		t.Fatalf("query num tokens: %v", err)
	}
	if out.(token.NumTokensResponse).Count != 0 {
		t.Fatalf("expected empty ledger, got %+v", out)
	}

	if err := store.View(context.Background(), func(view domain.TransactionView) error {
		hub, ok := view.LinkedHub()
		if !ok || hub != "hub1" {
			t.Fatalf("expected linked hub, got %q ok=%v", hub, ok)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestSeatInstantiateFailureDiscardsAllWrites(t *testing.T) {
	store := memory.NewStore()
	seat, err := NewSeat(context.Background(), store, domain.StaticChain{Denom: "uturnt"})
	if err != nil {
		t.Fatalf("new seat: %v", err)
	}
	msg := seatInstantiateMsg(t)
	msg.SeatToken.Minter = ""

	_, err = seat.Instantiate(context.Background(), testEnv(), domain.MsgInfo{Sender: "alice"}, msg)
	var merr domain.ModuleError
	if !errors.As(err, &merr) || merr.Module != ModuleSeatToken {
		t.Fatalf("expected seat_token module error, got %v", err)
	}

	// ownable ran before the failing module; its write must not survive
	if err := store.View(context.Background(), func(view domain.TransactionView) error {
		if _, ok := view.Owner(); ok {
			t.Fatal("expected owner discarded after aborted instantiate")
		}
		if _, ok := view.LinkedHub(); ok {
			t.Fatal("expected hub linkage discarded after aborted instantiate")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestSeatExecuteUnknownModule(t *testing.T) {
	seat, _ := newTestSeat(t)
	_, err := seat.Execute(context.Background(), testEnv(), domain.MsgInfo{Sender: "alice"}, []byte(`{"staking":{"delegate":{}}}`))
	var nf domain.ModuleNotFoundError
	if !errors.As(err, &nf) || nf.Module != "staking" {
		t.Fatalf("expected module not found, got %v", err)
	}
	if _, err := seat.Query(context.Background(), testEnv(), []byte(`{"staking":{"state":{}}}`)); !errors.As(err, &nf) {
		t.Fatalf("expected module not found on query, got %v", err)
	}
}

func TestSeatMarketplaceFlow(t *testing.T) {
	seat, store := newTestSeat(t)

	exec(t, seat, "alice", nil, `{"seat_token":{"mint":{"token_id":"1","owner":"alice"}}}`)
	exec(t, seat, "alice", nil, `{"sellable":{"list":{"listings":{"1":{"denom":"uturnt","amount":200}}}}}`)

	resp := exec(t, seat, "bob", domain.Coins{{Denom: "uturnt", Amount: 200}}, `{"sellable":{"buy":{"token_id":"1"}}}`)
	if len(resp.Transfers) != 1 || resp.Transfers[0].Recipient != "alice" || resp.Transfers[0].Amount[0].Amount != 200 {
		t.Fatalf("expected sale proceeds to alice, got %+v", resp.Transfers)
	}

	out, err := seat.Query(context.Background(), testEnv(), []byte(`{"seat_token":{"owner_of":{"token_id":"1"}}}`))
	if err != nil {
		t.Fatalf("query owner_of: %v", err)
	}
	if out.(token.OwnerOfResponse).Owner != "bob" {
		t.Fatalf("expected bob to own token, got %+v", out)
	}

	if err := store.View(context.Background(), func(view domain.TransactionView) error {
		if _, listed := view.FindListing("1"); listed {
			t.Fatal("expected listing removed after buy")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestSeatRedeemLocksToken(t *testing.T) {
	seat, _ := newTestSeat(t)
	exec(t, seat, "alice", nil, `{"seat_token":{"mint":{"token_id":"1","owner":"alice"}}}`)
	exec(t, seat, "alice", nil, `{"redeemable":{"redeem":{"token_id":"1"}}}`)

	out, err := seat.Query(context.Background(), testEnv(), []byte(`{"redeemable":{"is_redeemed":{"token_id":"1"}}}`))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !out.(redeemable.IsRedeemedResponse).IsRedeemed {
		t.Fatalf("expected token redeemed, got %+v", out)
	}

	// a redeemed token cannot be listed
	_, err = seat.Execute(context.Background(), testEnv(), domain.MsgInfo{Sender: "alice"},
		[]byte(`{"sellable":{"list":{"listings":{"1":{"denom":"uturnt","amount":200}}}}}`))
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict listing redeemed token, got %v", err)
	}
}

func TestSeatSalesFlow(t *testing.T) {
	seat, _ := newTestSeat(t)

	start := testNow.Format(time.RFC3339)
	end := testNow.Add(24 * time.Hour).Format(time.RFC3339)
	exec(t, seat, "alice", nil,
		`{"sales":{"primary_sale":{"total_supply":1,"start_time":"`+start+`","end_time":"`+end+`","price":[{"denom":"uturnt","amount":10}]}}}`)

	resp := exec(t, seat, "bob", domain.Coins{{Denom: "uturnt", Amount: 10}}, `{"sales":{"buy_item":{"token_id":"1"}}}`)
	if len(resp.Transfers) != 1 || resp.Transfers[0].Recipient != "alice" {
		t.Fatalf("expected proceeds to contract owner, got %+v", resp.Transfers)
	}

	out, err := seat.Query(context.Background(), testEnv(), []byte(`{"sales":{"active_primary_sale":{}}}`))
	if err != nil {
		t.Fatalf("query active sale: %v", err)
	}
	// supply of one sold out: the sale ended implicitly
	if out.(sales.ActivePrimarySaleResponse).Sale != nil {
		t.Fatalf("expected sale exhausted, got %+v", out)
	}

	out, err = seat.Query(context.Background(), testEnv(), []byte(`{"seat_token":{"owner_of":{"token_id":"1"}}}`))
	if err != nil {
		t.Fatalf("query owner_of: %v", err)
	}
	if out.(token.OwnerOfResponse).Owner != "bob" {
		t.Fatalf("expected minted token owned by buyer, got %+v", out)
	}
}

func TestSeatsQueryJoinsListings(t *testing.T) {
	seat, _ := newTestSeat(t)
	exec(t, seat, "alice", nil, `{"seat_token":{"mint":{"token_id":"1","owner":"alice"}}}`)
	exec(t, seat, "alice", nil, `{"seat_token":{"mint":{"token_id":"2","owner":"alice"}}}`)
	exec(t, seat, "alice", nil, `{"sellable":{"list":{"listings":{"2":{"denom":"uturnt","amount":300}}}}}`)

	out, err := seat.Query(context.Background(), testEnv(), []byte(`{"seats":{}}`))
	if err != nil {
		t.Fatalf("query seats: %v", err)
	}
	seats := out.(SeatsResponse).Seats
	if len(seats) != 2 {
		t.Fatalf("expected two seats, got %+v", seats)
	}
	if seats[0].TokenID != "1" || seats[0].ListedPrice != nil {
		t.Fatalf("unexpected first seat: %+v", seats[0])
	}
	if seats[1].TokenID != "2" || seats[1].ListedPrice == nil || seats[1].ListedPrice.Amount != 300 {
		t.Fatalf("unexpected second seat: %+v", seats[1])
	}
}

func TestSeatInstantiateWithSeededListings(t *testing.T) {
	store := memory.NewStore()
	seat, err := NewSeat(context.Background(), store, domain.StaticChain{Denom: "uturnt"})
	if err != nil {
		t.Fatalf("new seat: %v", err)
	}
	msg := seatInstantiateMsg(t)
	// listings over an empty ledger must abort the whole instantiate
	msg.Sellable = &sellable.InstantiateMsg{Tokens: map[string]domain.Coin{"1": {Denom: "uturnt", Amount: 100}}}
	_, err = seat.Instantiate(context.Background(), testEnv(), domain.MsgInfo{Sender: "alice"}, msg)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found for unminted seeded listing, got %v", err)
	}
}

func TestSeatObservabilityAndArchive(t *testing.T) {
	blobs := memblob.New()
	metrics := NewExpvarMetricsRecorder("")
	tracer := NewJSONTracer(nil)
	seat, _ := newTestSeat(t,
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
		WithArchiver(NewSnapshotArchiver(blobs)),
	)

	exec(t, seat, "alice", nil, `{"seat_token":{"mint":{"token_id":"1","owner":"alice"}}}`)
	exec(t, seat, "alice", nil, `{"sellable":{"list":{"listings":{"1":{"denom":"uturnt","amount":200}}}}}`)

	snap := metrics.Snapshot()
	if snap.Results["seat.execute.seat_token"]["success"] != 1 {
		t.Fatalf("expected mint observed, got %+v", snap.Results)
	}
	if snap.Results["seat.execute.sellable"]["success"] != 1 {
		t.Fatalf("expected list observed, got %+v", snap.Results)
	}

	var sawMint bool
	for _, entry := range tracer.Entries() {
		if entry.Operation == "seat.execute.seat_token" && entry.Status == "success" {
			sawMint = true
		}
	}
	if !sawMint {
		t.Fatalf("expected trace span for mint, got %+v", tracer.Entries())
	}

	infos, err := blobs.List(context.Background(), "seat1/")
	if err != nil {
		t.Fatalf("list archives: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected one snapshot per committed execute, got %+v", infos)
	}
}
