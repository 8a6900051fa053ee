package treasury

import (
	"StableTreasury/internal/auction"
	"StableTreasury/internal/currency"
	"StableTreasury/internal/event"
	"StableTreasury/internal/exchange"
	"StableTreasury/internal/observability"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// moduleAccount is the treasury's own account. Derived from a fixed
// namespace so every process computes the same id.
var moduleAccount = uuid.NewSHA1(uuid.NameSpaceOID, []byte("stable-treasury/module-account"))

// Account returns the treasury's own account, which holds the surplus
// pool's stable currency and all seized collateral.
func Account() uuid.UUID { return moduleAccount }

// Deps wires the treasury to its collaborators.
type Deps struct {
	Currency currency.Ledger
	Auctions auction.Manager
	Exchange exchange.Swapper
	Params   *Params

	// StableAsset is the stablecoin the treasury issues and burns.
	StableAsset currency.Asset

	Events  event.Sink
	Metrics *observability.Metrics
	Logger  zerolog.Logger
}

// Treasury tracks the system's bad debt pool, surplus pool and seized
// collateral, and decides when and how to liquidate imbalances through
// auctions. All mutation happens on a single logical thread; the host
// serializes cycle execution against administrative calls.
type Treasury struct {
	currency currency.Ledger
	auctions auction.Manager
	swapper  exchange.Swapper
	params   *Params
	stable   currency.Asset

	debitPool        uint64
	surplusPool      uint64
	totalCollaterals map[currency.Asset]uint64
	shutdown         bool

	events  event.Sink
	metrics *observability.Metrics
	log     zerolog.Logger
}

func New(deps Deps) *Treasury {
	return &Treasury{
		currency:         deps.Currency,
		auctions:         deps.Auctions,
		swapper:          deps.Exchange,
		params:           deps.Params,
		stable:           deps.StableAsset,
		totalCollaterals: make(map[currency.Asset]uint64),
		events:           deps.Events,
		metrics:          deps.Metrics,
		log:              deps.Logger,
	}
}

func (t *Treasury) DebitPool() uint64   { return t.debitPool }
func (t *Treasury) SurplusPool() uint64 { return t.surplusPool }
func (t *Treasury) IsShutdown() bool    { return t.shutdown }
func (t *Treasury) Params() *Params     { return t.params }

// TotalCollateral returns the tracked collateral amount for an asset.
func (t *Treasury) TotalCollateral(asset currency.Asset) uint64 {
	return t.totalCollaterals[asset]
}

// CollateralTotals returns a copy of the tracked collateral totals.
func (t *Treasury) CollateralTotals() map[currency.Asset]uint64 {
	out := make(map[currency.Asset]uint64, len(t.totalCollaterals))
	for asset, amount := range t.totalCollaterals {
		out[asset] = amount
	}
	return out
}

// Restore loads pool state from a snapshot. Only the runtime calls this,
// at startup before the first cycle runs.
func (t *Treasury) Restore(debitPool, surplusPool uint64, collaterals map[currency.Asset]uint64, shutdown bool) {
	t.debitPool = debitPool
	t.surplusPool = surplusPool
	t.totalCollaterals = make(map[currency.Asset]uint64, len(collaterals))
	for asset, amount := range collaterals {
		t.totalCollaterals[asset] = amount
		t.syncCollateralMetric(asset)
	}
	t.shutdown = shutdown
	t.syncPoolMetrics()
}

// OnSystemDebit grows the bad debt pool by amount. Called when debt is
// confiscated elsewhere in the system without backing assets arriving here.
func (t *Treasury) OnSystemDebit(amount uint64) error {
	newPool, ok := checkedAdd(t.debitPool, amount)
	if !ok {
		return ErrDebitPoolOverflow
	}
	t.debitPool = newPool
	t.syncPoolMetrics()
	return nil
}

// OnSystemSurplus mints amount of stable currency into the treasury
// account and grows the surplus pool. The pool is written only after the
// mint succeeded, so a currency failure leaves no partial state.
func (t *Treasury) OnSystemSurplus(amount uint64) error {
	newPool, ok := checkedAdd(t.surplusPool, amount)
	if !ok {
		return ErrSurplusPoolOverflow
	}
	if err := t.currency.Deposit(t.stable, moduleAccount, amount); err != nil {
		return err
	}
	t.surplusPool = newPool
	t.syncPoolMetrics()
	return nil
}

// IssueDebit deposits amount of stable currency to the recipient. Unbacked
// issuance additionally grows the debit pool by the same amount; backed
// issuance leaves it untouched, the backing being tracked elsewhere.
func (t *Treasury) IssueDebit(to uuid.UUID, amount uint64, backed bool) error {
	if backed {
		return t.currency.Deposit(t.stable, to, amount)
	}

	newPool, ok := checkedAdd(t.debitPool, amount)
	if !ok {
		return ErrDebitPoolOverflow
	}
	if err := t.currency.Deposit(t.stable, to, amount); err != nil {
		return err
	}
	t.debitPool = newPool
	t.syncPoolMetrics()
	return nil
}

// BurnDebit withdraws amount of stable currency from the account. Pool
// state is untouched; currency errors pass through.
func (t *Treasury) BurnDebit(from uuid.UUID, amount uint64) error {
	return t.currency.Withdraw(t.stable, from, amount)
}

// DepositSurplus transfers amount of stable currency from the account
// into the treasury and grows the surplus pool.
func (t *Treasury) DepositSurplus(from uuid.UUID, amount uint64) error {
	newPool, ok := checkedAdd(t.surplusPool, amount)
	if !ok {
		return ErrSurplusPoolOverflow
	}
	if err := t.currency.Transfer(t.stable, from, moduleAccount, amount); err != nil {
		return err
	}
	t.surplusPool = newPool
	t.syncPoolMetrics()
	return nil
}

// DepositCollateral transfers amount of asset from the account into the
// treasury and grows the tracked collateral total.
func (t *Treasury) DepositCollateral(from uuid.UUID, asset currency.Asset, amount uint64) error {
	newTotal, ok := checkedAdd(t.totalCollaterals[asset], amount)
	if !ok {
		return ErrCollateralOverflow
	}
	if err := t.currency.Transfer(asset, from, moduleAccount, amount); err != nil {
		return err
	}
	t.totalCollaterals[asset] = newTotal
	t.syncCollateralMetric(asset)
	return nil
}

// WithdrawCollateral transfers amount of asset from the treasury to the
// account and shrinks the tracked collateral total.
func (t *Treasury) WithdrawCollateral(to uuid.UUID, asset currency.Asset, amount uint64) error {
	if t.totalCollaterals[asset] < amount {
		return ErrCollateralNotEnough
	}
	if err := t.currency.Transfer(asset, moduleAccount, to, amount); err != nil {
		return err
	}
	t.totalCollaterals[asset] -= amount
	t.syncCollateralMetric(asset)
	return nil
}

// DebitProportion returns amount as a fraction of total stablecoin
// issuance, zero when nothing is issued.
func (t *Treasury) DebitProportion(amount uint64) Ratio {
	return ratioFromRational(amount, t.currency.TotalIssuance(t.stable))
}

// EmergencyShutdown trips the one-way latch that stops the scheduler from
// creating surplus and debit auctions. Idempotent; never resettable.
// Offset and ledger operations keep working after shutdown.
func (t *Treasury) EmergencyShutdown() {
	if t.shutdown {
		return
	}
	t.shutdown = true
	t.log.Warn().Msg("emergency shutdown: auction scheduling disabled")
	t.events.Emit(event.Event{Type: event.TypeEmergencyShutdown})
}

func (t *Treasury) syncPoolMetrics() {
	if t.metrics == nil {
		return
	}
	t.metrics.DebitPool.Set(float64(t.debitPool))
	t.metrics.SurplusPool.Set(float64(t.surplusPool))
}

func (t *Treasury) syncCollateralMetric(asset currency.Asset) {
	if t.metrics == nil {
		return
	}
	t.metrics.CollateralBalance.WithLabelValues(string(asset)).Set(float64(t.totalCollaterals[asset]))
}
