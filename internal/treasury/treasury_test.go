package treasury_test

import (
	"StableTreasury/internal/auction"
	"StableTreasury/internal/currency"
	"StableTreasury/internal/event"
	"StableTreasury/internal/exchange"
	"StableTreasury/internal/treasury"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// recorder captures emitted events for assertions.
type recorder struct {
	events []event.Event
}

func (r *recorder) sink(e event.Event) { r.events = append(r.events, e) }

func (r *recorder) ofType(tp event.Type) []event.Event {
	var out []event.Event
	for _, e := range r.events {
		if e.Type == tp {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	ledger   *currency.Book
	auctions *auction.Book
	venue    *exchange.FixedRateVenue
	rec      *recorder
	tr       *treasury.Treasury
}

func newFixture(t *testing.T, genesis treasury.ParamsGenesis) *fixture {
	t.Helper()

	ledger := currency.NewBook()
	rec := &recorder{}
	sink := event.Sink(rec.sink)
	auctions := auction.NewBook(sink)
	venue := exchange.NewFixedRateVenue(ledger)
	params := treasury.NewParams(treasury.AllowOrigins("admin"), sink, nil, genesis)

	tr := treasury.New(treasury.Deps{
		Currency:    ledger,
		Auctions:    auctions,
		Exchange:    venue,
		Params:      params,
		StableAsset: "AUSD",
		Events:      sink,
		Logger:      zerolog.Nop(),
	})

	return &fixture{ledger: ledger, auctions: auctions, venue: venue, rec: rec, tr: tr}
}

// ============================================================================
// Test: pool bookkeeping
// ============================================================================

func TestTreasury_OnSystemDebit(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})

	if err := f.tr.OnSystemDebit(300); err != nil {
		t.Fatalf("on system debit: %v", err)
	}
	if got := f.tr.DebitPool(); got != 300 {
		t.Errorf("debit pool: got %d, want 300", got)
	}
}

func TestTreasury_OnSystemDebitOverflow(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})
	f.tr.Restore(currency.MaxBalance, 0, nil, false)

	err := f.tr.OnSystemDebit(1)
	if !errors.Is(err, treasury.ErrDebitPoolOverflow) {
		t.Fatalf("got %v, want ErrDebitPoolOverflow", err)
	}
	if got := f.tr.DebitPool(); got != currency.MaxBalance {
		t.Errorf("debit pool changed on overflow: got %d", got)
	}
}

func TestTreasury_OnSystemSurplusMints(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})

	if err := f.tr.OnSystemSurplus(500); err != nil {
		t.Fatalf("on system surplus: %v", err)
	}
	if got := f.tr.SurplusPool(); got != 500 {
		t.Errorf("surplus pool: got %d, want 500", got)
	}
	if got := f.ledger.Balance("AUSD", treasury.Account()); got != 500 {
		t.Errorf("treasury stable balance: got %d, want 500", got)
	}
	if got := f.ledger.TotalIssuance("AUSD"); got != 500 {
		t.Errorf("issuance: got %d, want 500", got)
	}
}

func TestTreasury_OnSystemSurplusOverflow(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})
	f.tr.Restore(0, currency.MaxBalance, nil, false)

	err := f.tr.OnSystemSurplus(1)
	if !errors.Is(err, treasury.ErrSurplusPoolOverflow) {
		t.Fatalf("got %v, want ErrSurplusPoolOverflow", err)
	}
	// The overflow check fires before any mint.
	if got := f.ledger.TotalIssuance("AUSD"); got != 0 {
		t.Errorf("issuance changed on overflow: got %d", got)
	}
}

// ============================================================================
// Test: debit issuance and burning
// ============================================================================

func TestTreasury_IssueDebitUnbacked(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})
	alice := uuid.New()

	if err := f.tr.IssueDebit(alice, 400, false); err != nil {
		t.Fatalf("issue debit: %v", err)
	}
	if got := f.tr.DebitPool(); got != 400 {
		t.Errorf("debit pool: got %d, want 400", got)
	}
	if got := f.ledger.Balance("AUSD", alice); got != 400 {
		t.Errorf("recipient balance: got %d, want 400", got)
	}
}

func TestTreasury_IssueDebitBacked(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})
	alice := uuid.New()

	if err := f.tr.IssueDebit(alice, 400, true); err != nil {
		t.Fatalf("issue debit: %v", err)
	}
	if got := f.tr.DebitPool(); got != 0 {
		t.Errorf("backed issuance should not touch the debit pool: got %d", got)
	}
	if got := f.ledger.Balance("AUSD", alice); got != 400 {
		t.Errorf("recipient balance: got %d, want 400", got)
	}
}

func TestTreasury_IssueDebitCurrencyFailureLeavesPool(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})
	alice := uuid.New()
	bob := uuid.New()

	// Saturate issuance so the deposit leg fails after the pool check passed.
	f.ledger.Deposit("AUSD", bob, currency.MaxBalance)

	err := f.tr.IssueDebit(alice, 1, false)
	if !errors.Is(err, currency.ErrIssuanceOverflow) {
		t.Fatalf("got %v, want ErrIssuanceOverflow", err)
	}
	if got := f.tr.DebitPool(); got != 0 {
		t.Errorf("debit pool written on failed deposit: got %d", got)
	}
}

func TestTreasury_BurnDebit(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})
	alice := uuid.New()
	f.ledger.Deposit("AUSD", alice, 100)

	if err := f.tr.BurnDebit(alice, 60); err != nil {
		t.Fatalf("burn debit: %v", err)
	}
	if got := f.ledger.Balance("AUSD", alice); got != 40 {
		t.Errorf("balance: got %d, want 40", got)
	}
	if got := f.tr.DebitPool(); got != 0 {
		t.Errorf("burn must not touch the debit pool: got %d", got)
	}
}

func TestTreasury_DepositSurplus(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})
	alice := uuid.New()
	f.ledger.Deposit("AUSD", alice, 1_000)

	if err := f.tr.DepositSurplus(alice, 700); err != nil {
		t.Fatalf("deposit surplus: %v", err)
	}
	if got := f.tr.SurplusPool(); got != 700 {
		t.Errorf("surplus pool: got %d, want 700", got)
	}
	if got := f.ledger.Balance("AUSD", treasury.Account()); got != 700 {
		t.Errorf("treasury balance: got %d, want 700", got)
	}
	if got := f.ledger.Balance("AUSD", alice); got != 300 {
		t.Errorf("alice balance: got %d, want 300", got)
	}
}

// ============================================================================
// Test: collateral custody
// ============================================================================

func TestTreasury_CollateralRoundtrip(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})
	alice := uuid.New()
	f.ledger.Deposit("DOT", alice, 500)

	if err := f.tr.DepositCollateral(alice, "DOT", 500); err != nil {
		t.Fatalf("deposit collateral: %v", err)
	}
	if got := f.tr.TotalCollateral("DOT"); got != 500 {
		t.Errorf("total collateral: got %d, want 500", got)
	}
	if got := f.ledger.Balance("DOT", treasury.Account()); got != 500 {
		t.Errorf("treasury DOT balance: got %d, want 500", got)
	}

	if err := f.tr.WithdrawCollateral(alice, "DOT", 200); err != nil {
		t.Fatalf("withdraw collateral: %v", err)
	}
	if got := f.tr.TotalCollateral("DOT"); got != 300 {
		t.Errorf("total collateral after withdraw: got %d, want 300", got)
	}
	if got := f.ledger.Balance("DOT", alice); got != 200 {
		t.Errorf("alice DOT balance: got %d, want 200", got)
	}
}

func TestTreasury_WithdrawCollateralNotEnough(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})
	alice := uuid.New()
	f.ledger.Deposit("DOT", alice, 100)
	f.tr.DepositCollateral(alice, "DOT", 100)

	err := f.tr.WithdrawCollateral(alice, "DOT", 101)
	if !errors.Is(err, treasury.ErrCollateralNotEnough) {
		t.Fatalf("got %v, want ErrCollateralNotEnough", err)
	}
	if got := f.tr.TotalCollateral("DOT"); got != 100 {
		t.Errorf("total collateral changed on failure: got %d", got)
	}
}

// ============================================================================
// Test: debit proportion
// ============================================================================

func TestTreasury_DebitProportion(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})
	alice := uuid.New()
	f.ledger.Deposit("AUSD", alice, 1_000)

	got := f.tr.DebitProportion(250)
	want := treasury.Ratio(treasury.RatioScale / 4)
	if got != want {
		t.Errorf("proportion: got %d, want %d", got, want)
	}
}

func TestTreasury_DebitProportionZeroIssuance(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})

	if got := f.tr.DebitProportion(250); got != 0 {
		t.Errorf("proportion with zero issuance: got %d, want 0", got)
	}
}

// ============================================================================
// Test: emergency shutdown latch
// ============================================================================

func TestTreasury_EmergencyShutdownIdempotent(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})

	f.tr.EmergencyShutdown()
	f.tr.EmergencyShutdown()
	f.tr.EmergencyShutdown()

	if !f.tr.IsShutdown() {
		t.Fatal("treasury should be shut down")
	}
	if got := len(f.rec.ofType(event.TypeEmergencyShutdown)); got != 1 {
		t.Errorf("shutdown events: got %d, want 1", got)
	}
}

// ============================================================================
// Test: snapshot restore
// ============================================================================

func TestTreasury_Restore(t *testing.T) {
	f := newFixture(t, treasury.ParamsGenesis{})

	f.tr.Restore(100, 200, map[currency.Asset]uint64{"DOT": 50, "XBTC": 3}, true)

	if got := f.tr.DebitPool(); got != 100 {
		t.Errorf("debit pool: got %d, want 100", got)
	}
	if got := f.tr.SurplusPool(); got != 200 {
		t.Errorf("surplus pool: got %d, want 200", got)
	}
	if got := f.tr.TotalCollateral("DOT"); got != 50 {
		t.Errorf("DOT collateral: got %d, want 50", got)
	}
	if !f.tr.IsShutdown() {
		t.Error("shutdown flag not restored")
	}
}
