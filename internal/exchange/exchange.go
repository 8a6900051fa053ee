package exchange

import (
	"errors"

	"StableTreasury/internal/currency"

	"github.com/google/uuid"
)

var (
	ErrNoMarket         = errors.New("no market for asset pair")
	ErrBelowMinimum     = errors.New("received amount below minimum target")
	ErrReceivedTooLarge = errors.New("received amount exceeds representable range")
)

// Swapper converts one asset into another on behalf of an account.
// A successful call has already moved both legs through the currency
// ledger; on error the account is untouched.
type Swapper interface {
	Exchange(who uuid.UUID, supplyAsset currency.Asset, supplyAmount uint64,
		targetAsset currency.Asset, minTargetAmount uint64) (uint64, error)
}
