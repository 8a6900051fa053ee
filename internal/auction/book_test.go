package auction_test

import (
	"StableTreasury/internal/auction"
	"StableTreasury/internal/event"
	"testing"

	"github.com/google/uuid"
)

// ============================================================================
// Test: in-flight totals
// ============================================================================

func TestBook_SurplusTotals(t *testing.T) {
	book := auction.NewBook(nil)

	book.NewSurplusAuction(200)
	book.NewSurplusAuction(200)

	if got := book.TotalSurplusInAuction(); got != 400 {
		t.Errorf("total surplus: got %d, want 400", got)
	}
	if got := book.Open(); got != 2 {
		t.Errorf("open: got %d, want 2", got)
	}
}

func TestBook_DebitTotals(t *testing.T) {
	book := auction.NewBook(nil)

	// A debit auction contributes its fixed size to both the debit and
	// target totals; the initial amount is the native token on offer.
	book.NewDebitAuction(50, 300)

	if got := book.TotalDebitInAuction(); got != 300 {
		t.Errorf("total debit: got %d, want 300", got)
	}
	if got := book.TotalTargetInAuction(); got != 300 {
		t.Errorf("total target: got %d, want 300", got)
	}
}

func TestBook_CollateralTotalsPerAsset(t *testing.T) {
	book := auction.NewBook(nil)
	receiver := uuid.New()

	book.NewCollateralAuction(receiver, "DOT", 100, 90)
	book.NewCollateralAuction(receiver, "DOT", 50, 45)
	book.NewCollateralAuction(receiver, "XBTC", 7, 70)

	if got := book.TotalCollateralInAuction("DOT"); got != 150 {
		t.Errorf("DOT total: got %d, want 150", got)
	}
	if got := book.TotalCollateralInAuction("XBTC"); got != 7 {
		t.Errorf("XBTC total: got %d, want 7", got)
	}
	if got := book.TotalCollateralInAuction("ACA"); got != 0 {
		t.Errorf("ACA total: got %d, want 0", got)
	}
}

// ============================================================================
// Test: settlement
// ============================================================================

func TestBook_SettleReleasesTotals(t *testing.T) {
	var events []event.Event
	sink := event.Sink(func(e event.Event) { events = append(events, e) })

	book := auction.NewBook(sink)
	book.NewSurplusAuction(200)

	if len(events) != 1 || events[0].Type != event.TypeSurplusAuctionCreated {
		t.Fatalf("expected one surplus auction created event, got %+v", events)
	}
	id := events[0].AuctionID

	settled, ok := book.Settle(id)
	if !ok {
		t.Fatal("settle should find the auction")
	}
	if settled.Amount != 200 {
		t.Errorf("settled amount: got %d, want 200", settled.Amount)
	}
	if got := book.TotalSurplusInAuction(); got != 0 {
		t.Errorf("total surplus after settle: got %d, want 0", got)
	}
	if got := book.Open(); got != 0 {
		t.Errorf("open after settle: got %d, want 0", got)
	}
}

func TestBook_SettleUnknownID(t *testing.T) {
	book := auction.NewBook(nil)

	if _, ok := book.Settle(uuid.New()); ok {
		t.Error("settling an unknown id should report not found")
	}
}

func TestBook_CreationEventsCarryDetails(t *testing.T) {
	var events []event.Event
	sink := event.Sink(func(e event.Event) { events = append(events, e) })

	book := auction.NewBook(sink)
	receiver := uuid.New()
	book.NewDebitAuction(50, 300)
	book.NewCollateralAuction(receiver, "DOT", 100, 90)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	debit := events[0]
	if debit.Type != event.TypeDebitAuctionCreated || debit.Amount != 50 || debit.Aux != 300 {
		t.Errorf("debit event: got %+v", debit)
	}

	collateral := events[1]
	if collateral.Type != event.TypeCollateralAuctionCreated ||
		collateral.Asset != "DOT" || collateral.Amount != 100 || collateral.Aux != 90 {
		t.Errorf("collateral event: got %+v", collateral)
	}
	if collateral.AuctionID == uuid.Nil {
		t.Error("collateral event should carry the auction id")
	}
}
