package event

import (
	"time"

	"StableTreasury/internal/currency"

	"github.com/google/uuid"
)

// Type discriminator for treasury notifications.
type Type int32

const (
	TypeUnknown Type = iota

	// Parameter updates (administrative surface)
	TypeSurplusAuctionFixedSizeUpdated
	TypeSurplusBufferSizeUpdated
	TypeInitialAmountPerDebitAuctionUpdated
	TypeDebitAuctionFixedSizeUpdated
	TypeCollateralAuctionMaximumSizeUpdated

	// Operational
	TypeSurplusAuctionCreated
	TypeDebitAuctionCreated
	TypeCollateralAuctionCreated
	TypeSurplusAndDebitOffset
	TypeCollateralSwappedToStable
	TypeEmergencyShutdown
	TypeCycleCompleted
)

// Event is a single treasury notification. Amount carries the primary
// value of the notification; Aux carries a secondary value where the
// event has two (e.g. a debit auction's initial amount and fixed size,
// or a swap's supply and received amounts).
type Event struct {
	Type      Type
	Asset     currency.Asset // collateral context, empty for global events
	Amount    uint64
	Aux       uint64
	AuctionID uuid.UUID // zero unless an auction was created
}

// Sink consumes events emitted by the core. A nil Sink drops them.
type Sink func(Event)

// Emit sends evt to the sink if one is attached.
func (s Sink) Emit(evt Event) {
	if s != nil {
		s(evt)
	}
}

// Envelope wraps an event for the log and outbound publishing. Sequence
// and Timestamp are assigned by the runtime, not by the core.
type Envelope struct {
	Sequence  int64
	Timestamp time.Time
	Event     Event
}

func (t Type) String() string {
	switch t {
	case TypeSurplusAuctionFixedSizeUpdated:
		return "SurplusAuctionFixedSizeUpdated"
	case TypeSurplusBufferSizeUpdated:
		return "SurplusBufferSizeUpdated"
	case TypeInitialAmountPerDebitAuctionUpdated:
		return "InitialAmountPerDebitAuctionUpdated"
	case TypeDebitAuctionFixedSizeUpdated:
		return "DebitAuctionFixedSizeUpdated"
	case TypeCollateralAuctionMaximumSizeUpdated:
		return "CollateralAuctionMaximumSizeUpdated"
	case TypeSurplusAuctionCreated:
		return "SurplusAuctionCreated"
	case TypeDebitAuctionCreated:
		return "DebitAuctionCreated"
	case TypeCollateralAuctionCreated:
		return "CollateralAuctionCreated"
	case TypeSurplusAndDebitOffset:
		return "SurplusAndDebitOffset"
	case TypeCollateralSwappedToStable:
		return "CollateralSwappedToStable"
	case TypeEmergencyShutdown:
		return "EmergencyShutdown"
	case TypeCycleCompleted:
		return "CycleCompleted"
	default:
		return "Unknown"
	}
}
