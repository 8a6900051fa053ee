package treasury

import (
	"StableTreasury/internal/currency"

	"github.com/google/uuid"
)

// CreateCollateralAuctions splits a seized-collateral amount into bounded
// lots and requests one collateral auction per lot. The call is a no-op,
// not an error, when amount is zero or the treasury does not hold enough
// of the asset beyond what is already committed to open auctions.
//
// No treasury mutation happens here: collateral accounting is adjusted by
// auction settlement, not by this routine.
func (t *Treasury) CreateCollateralAuctions(asset currency.Asset, amount, target uint64, refundReceiver uuid.UUID) {
	if amount == 0 {
		return
	}
	committed, ok := checkedAdd(amount, t.auctions.TotalCollateralInAuction(asset))
	if !ok || t.totalCollaterals[asset] < committed {
		return
	}

	maxLotSize := t.params.CollateralAuctionMaximumSize(asset)
	maxAuctions := uint64(t.params.MaxAuctionsCount())

	// One lot unless the cap and a maximum lot size are both configured
	// and the amount actually exceeds one lot.
	lots := uint64(1)
	if maxAuctions != 0 && maxLotSize != 0 && amount > maxLotSize {
		lots = amount / maxLotSize
		if amount%maxLotSize != 0 {
			lots++
		}
		if lots > maxAuctions {
			lots = maxAuctions
		}
	}

	avgAmount := amount / lots
	avgTarget := target / lots

	unhandledAmount := amount
	unhandledTarget := target

	for createdLots := uint64(1); unhandledAmount != 0; createdLots++ {
		lotAmount, lotTarget := avgAmount, avgTarget
		if createdLots == lots {
			// The last lot absorbs the rounding remainder.
			lotAmount, lotTarget = unhandledAmount, unhandledTarget
		}

		t.auctions.NewCollateralAuction(refundReceiver, asset, lotAmount, lotTarget)
		if t.metrics != nil {
			t.metrics.AuctionsCreated.WithLabelValues("collateral").Inc()
		}

		unhandledAmount = mustSub(unhandledAmount, lotAmount, "collateral lot amount")
		unhandledTarget = mustSub(unhandledTarget, lotTarget, "collateral lot target")
	}
}
