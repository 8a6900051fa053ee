package treasury

import (
	"StableTreasury/internal/currency"
	"StableTreasury/internal/event"
)

// SwapCollateralToStable converts supplyAmount of asset held by the
// treasury into stable currency on the exchange, an auction-free
// liquidation path independent of the per-cycle scheduler. The received
// amount joins the surplus pool and the collateral total shrinks by the
// supplied amount.
func (t *Treasury) SwapCollateralToStable(asset currency.Asset, supplyAmount, minTargetAmount uint64) (uint64, error) {
	if t.totalCollaterals[asset] < supplyAmount {
		return 0, ErrCollateralNotEnough
	}
	if err := t.currency.EnsureCanWithdraw(asset, moduleAccount, supplyAmount); err != nil {
		return 0, err
	}

	received, err := t.swapper.Exchange(moduleAccount, asset, supplyAmount, t.stable, minTargetAmount)
	if err != nil {
		return 0, err
	}

	newPool, ok := checkedAdd(t.surplusPool, received)
	if !ok {
		// Unreachable with a ledger-backed swapper: minting `received`
		// would have overflowed total issuance inside Exchange first.
		return 0, ErrSurplusPoolOverflow
	}
	t.surplusPool = newPool
	// The precondition ensured sufficient collateral.
	t.totalCollaterals[asset] = mustSub(t.totalCollaterals[asset], supplyAmount, "swap collateral total")

	t.syncPoolMetrics()
	t.syncCollateralMetric(asset)
	if t.metrics != nil {
		t.metrics.SwapsTotal.Inc()
		t.metrics.SwapReceived.Add(float64(received))
	}
	t.events.Emit(event.Event{
		Type:   event.TypeCollateralSwappedToStable,
		Asset:  asset,
		Amount: supplyAmount,
		Aux:    received,
	})

	return received, nil
}
