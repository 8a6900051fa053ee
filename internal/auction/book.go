package auction

import (
	"StableTreasury/internal/currency"
	"StableTreasury/internal/event"

	"github.com/google/uuid"
)

// Kind classifies an open auction.
type Kind int32

const (
	KindSurplus Kind = iota
	KindDebit
	KindCollateral
)

// Auction is one open auction tracked by the Book.
type Auction struct {
	ID             uuid.UUID
	Kind           Kind
	Asset          currency.Asset // collateral auctions only
	Amount         uint64         // surplus: stable for sale; debit: initial native; collateral: collateral for sale
	Target         uint64         // debit/collateral: stable wanted
	RefundReceiver uuid.UUID      // collateral auctions only
}

// Book is the in-memory Manager implementation. It assigns auction IDs,
// keeps in-flight totals in sync with the open set, and reports each
// creation to an optional event sink.
type Book struct {
	open map[uuid.UUID]Auction

	totalSurplus    uint64
	totalDebit      uint64
	totalTarget     uint64
	totalCollateral map[currency.Asset]uint64

	events event.Sink
}

func NewBook(events event.Sink) *Book {
	return &Book{
		open:            make(map[uuid.UUID]Auction),
		totalCollateral: make(map[currency.Asset]uint64),
		events:          events,
	}
}

func (b *Book) TotalSurplusInAuction() uint64 { return b.totalSurplus }
func (b *Book) TotalDebitInAuction() uint64   { return b.totalDebit }
func (b *Book) TotalTargetInAuction() uint64  { return b.totalTarget }

func (b *Book) TotalCollateralInAuction(asset currency.Asset) uint64 {
	return b.totalCollateral[asset]
}

func (b *Book) NewSurplusAuction(amount uint64) {
	a := Auction{ID: uuid.New(), Kind: KindSurplus, Amount: amount}
	b.open[a.ID] = a
	b.totalSurplus += amount

	b.events.Emit(event.Event{
		Type:      event.TypeSurplusAuctionCreated,
		Amount:    amount,
		AuctionID: a.ID,
	})
}

func (b *Book) NewDebitAuction(initialAmount, fixedSize uint64) {
	a := Auction{ID: uuid.New(), Kind: KindDebit, Amount: initialAmount, Target: fixedSize}
	b.open[a.ID] = a
	b.totalDebit += fixedSize
	b.totalTarget += fixedSize

	b.events.Emit(event.Event{
		Type:      event.TypeDebitAuctionCreated,
		Amount:    initialAmount,
		Aux:       fixedSize,
		AuctionID: a.ID,
	})
}

func (b *Book) NewCollateralAuction(refundReceiver uuid.UUID, asset currency.Asset, amount, target uint64) {
	a := Auction{
		ID:             uuid.New(),
		Kind:           KindCollateral,
		Asset:          asset,
		Amount:         amount,
		Target:         target,
		RefundReceiver: refundReceiver,
	}
	b.open[a.ID] = a
	b.totalCollateral[asset] += amount

	b.events.Emit(event.Event{
		Type:      event.TypeCollateralAuctionCreated,
		Asset:     asset,
		Amount:    amount,
		Aux:       target,
		AuctionID: a.ID,
	})
}

// Settle removes an auction from the open set and releases its in-flight
// totals. The fund movement of settlement is performed by the caller.
func (b *Book) Settle(id uuid.UUID) (Auction, bool) {
	a, ok := b.open[id]
	if !ok {
		return Auction{}, false
	}
	delete(b.open, id)

	switch a.Kind {
	case KindSurplus:
		b.totalSurplus -= a.Amount
	case KindDebit:
		b.totalDebit -= a.Target
		b.totalTarget -= a.Target
	case KindCollateral:
		b.totalCollateral[a.Asset] -= a.Amount
	}
	return a, true
}

// Open returns the number of open auctions.
func (b *Book) Open() int { return len(b.open) }

// OpenAuctions returns a copy of all open auctions, in no particular order.
func (b *Book) OpenAuctions() []Auction {
	out := make([]Auction, 0, len(b.open))
	for _, a := range b.open {
		out = append(out, a)
	}
	return out
}
