package exchange

import (
	"fmt"
	"math/big"

	"StableTreasury/internal/currency"

	"github.com/google/uuid"
)

// Rate prices a supply asset in units of a target asset as Num/Den.
type Rate struct {
	Num uint64
	Den uint64
}

type pair struct {
	Supply currency.Asset
	Target currency.Asset
}

// FixedRateVenue is a rate-table Swapper backed by the currency ledger.
// It burns the supply leg and mints the target leg at the configured
// rate, both through the ledger, so issuance stays consistent.
type FixedRateVenue struct {
	ledger currency.Ledger
	rates  map[pair]Rate
}

func NewFixedRateVenue(ledger currency.Ledger) *FixedRateVenue {
	return &FixedRateVenue{
		ledger: ledger,
		rates:  make(map[pair]Rate),
	}
}

// SetRate installs or replaces the rate for a pair. A zero denominator
// is rejected up front rather than discovered mid-swap.
func (v *FixedRateVenue) SetRate(supply, target currency.Asset, rate Rate) error {
	if rate.Den == 0 {
		return fmt.Errorf("rate for %s/%s has zero denominator", supply, target)
	}
	v.rates[pair{Supply: supply, Target: target}] = rate
	return nil
}

func (v *FixedRateVenue) Exchange(who uuid.UUID, supplyAsset currency.Asset, supplyAmount uint64,
	targetAsset currency.Asset, minTargetAmount uint64) (uint64, error) {

	rate, ok := v.rates[pair{Supply: supplyAsset, Target: targetAsset}]
	if !ok {
		return 0, fmt.Errorf("%w: %s -> %s", ErrNoMarket, supplyAsset, targetAsset)
	}

	received, err := applyRate(supplyAmount, rate)
	if err != nil {
		return 0, err
	}
	if received < minTargetAmount {
		return 0, fmt.Errorf("%w: received %d, want at least %d", ErrBelowMinimum, received, minTargetAmount)
	}

	if err := v.ledger.Withdraw(supplyAsset, who, supplyAmount); err != nil {
		return 0, fmt.Errorf("withdraw supply leg: %w", err)
	}
	if err := v.ledger.Deposit(targetAsset, who, received); err != nil {
		// Put the supply leg back so the caller sees no partial swap.
		if depErr := v.ledger.Deposit(supplyAsset, who, supplyAmount); depErr != nil {
			panic(fmt.Sprintf("FATAL: failed to restore supply leg after deposit error: %v", depErr))
		}
		return 0, fmt.Errorf("deposit target leg: %w", err)
	}

	return received, nil
}

// applyRate computes supplyAmount * Num / Den in 128-bit space.
func applyRate(supplyAmount uint64, rate Rate) (uint64, error) {
	n := new(big.Int).SetUint64(supplyAmount)
	n.Mul(n, new(big.Int).SetUint64(rate.Num))
	n.Div(n, new(big.Int).SetUint64(rate.Den))

	if !n.IsUint64() {
		return 0, ErrReceivedTooLarge
	}
	return n.Uint64(), nil
}
