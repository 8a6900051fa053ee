package treasury

import (
	"time"

	"StableTreasury/internal/event"
)

// EndCycle handles excessive surplus or debit at the end of one discrete
// cycle: first the offset pass nets the two pools against each other, then
// (unless shut down) the scheduler opens surplus and debit auctions while
// funding conditions hold. The caller invokes this exactly once per cycle.
func (t *Treasury) EndCycle() {
	start := time.Now()

	t.offsetSurplusAndDebit()

	var created uint32
	if !t.shutdown {
		maxAuctions := t.params.MaxAuctionsCount()
		created = t.scheduleSurplusAuctions(maxAuctions, created)
		created = t.scheduleDebitAuctions(maxAuctions, created)
	}

	if t.metrics != nil {
		t.metrics.CyclesTotal.Inc()
		t.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	}
	t.events.Emit(event.Event{Type: event.TypeCycleCompleted, Amount: uint64(created)})
}

// offsetSurplusAndDebit nets the debit pool against the surplus pool by
// burning the overlapping amount of stable currency from the treasury
// account. A failing burn leaves both pools unchanged and is not surfaced:
// offset is best-effort and runs again next cycle.
func (t *Treasury) offsetSurplusAndDebit() {
	offset := min(t.debitPool, t.surplusPool)
	if offset == 0 {
		return
	}

	if err := t.currency.Withdraw(t.stable, moduleAccount, offset); err != nil {
		t.log.Debug().Err(err).Uint64("offset", offset).Msg("offset burn failed, pools unchanged")
		if t.metrics != nil {
			t.metrics.OffsetSkipped.Inc()
		}
		return
	}

	// offset = min(debit, surplus), so both subtractions are in range.
	t.debitPool = mustSub(t.debitPool, offset, "offset debit pool")
	t.surplusPool = mustSub(t.surplusPool, offset, "offset surplus pool")
	t.syncPoolMetrics()

	if t.metrics != nil {
		t.metrics.OffsetApplied.Inc()
		t.metrics.OffsetAmount.Add(float64(offset))
	}
	t.events.Emit(event.Event{Type: event.TypeSurplusAndDebitOffset, Amount: offset})
}

// scheduleSurplusAuctions opens fixed-size surplus auctions while the
// surplus pool covers the in-flight surplus, the buffer, and one more
// auction. The in-flight total is read once and held constant; the local
// remaining counter is never written back to the pool: fund movement is
// the auction manager's concern at settlement.
func (t *Treasury) scheduleSurplusAuctions(maxAuctions, created uint32) uint32 {
	fixedSize := t.params.SurplusAuctionFixedSize()
	if fixedSize == 0 {
		return created
	}

	remaining := t.surplusPool
	threshold, ok := checkedAdd3(t.auctions.TotalSurplusInAuction(), t.params.SurplusBufferSize(), fixedSize)
	if !ok {
		return created
	}

	for remaining >= threshold {
		if maxAuctions != 0 && created >= maxAuctions {
			break
		}
		t.auctions.NewSurplusAuction(fixedSize)
		created++
		remaining = mustSub(remaining, fixedSize, "surplus scheduling")
		if t.metrics != nil {
			t.metrics.AuctionsCreated.WithLabelValues("surplus").Inc()
		}
	}

	return created
}

// scheduleDebitAuctions is the debit-side mirror: while the debit pool
// covers the in-flight debit and target totals plus one more auction,
// open auctions selling the configured initial amount of native token
// for the fixed size of stable currency.
func (t *Treasury) scheduleDebitAuctions(maxAuctions, created uint32) uint32 {
	fixedSize := t.params.DebitAuctionFixedSize()
	initialAmount := t.params.InitialAmountPerDebitAuction()
	if fixedSize == 0 || initialAmount == 0 {
		return created
	}

	remaining := t.debitPool
	threshold, ok := checkedAdd3(t.auctions.TotalDebitInAuction(), t.auctions.TotalTargetInAuction(), fixedSize)
	if !ok {
		return created
	}

	for remaining >= threshold {
		if maxAuctions != 0 && created >= maxAuctions {
			break
		}
		t.auctions.NewDebitAuction(initialAmount, fixedSize)
		created++
		remaining = mustSub(remaining, fixedSize, "debit scheduling")
		if t.metrics != nil {
			t.metrics.AuctionsCreated.WithLabelValues("debit").Inc()
		}
	}

	return created
}
