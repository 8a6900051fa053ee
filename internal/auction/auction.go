package auction

import (
	"StableTreasury/internal/currency"

	"github.com/google/uuid"
)

// Manager creates surplus, debit and collateral auctions and reports the
// amounts currently committed to unsettled ones. Creation is fire-and-forget:
// clearing, bidding and settlement happen inside the manager.
type Manager interface {
	TotalSurplusInAuction() uint64
	TotalDebitInAuction() uint64
	TotalTargetInAuction() uint64
	TotalCollateralInAuction(asset currency.Asset) uint64

	// NewSurplusAuction sells amount of stable currency for the native token.
	NewSurplusAuction(amount uint64)

	// NewDebitAuction sells initialAmount of native token to raise fixedSize
	// of stable currency.
	NewDebitAuction(initialAmount, fixedSize uint64)

	// NewCollateralAuction sells amount of asset to recover target of stable
	// currency; unsold collateral is refunded to refundReceiver.
	NewCollateralAuction(refundReceiver uuid.UUID, asset currency.Asset, amount, target uint64)
}
