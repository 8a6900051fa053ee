package treasury

import (
	"StableTreasury/internal/currency"
	"StableTreasury/internal/event"
	"StableTreasury/internal/observability"
)

// Authorizer gates administrative parameter updates. Updates apply only
// when Authorize returns nil for the calling origin.
type Authorizer interface {
	Authorize(origin string) error
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(origin string) error

func (f AuthorizerFunc) Authorize(origin string) error { return f(origin) }

// AllowOrigins returns an Authorizer accepting exactly the given origins.
func AllowOrigins(origins ...string) Authorizer {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return AuthorizerFunc(func(origin string) error {
		if !allowed[origin] {
			return ErrNotAuthorized
		}
		return nil
	})
}

// ParamsGenesis seeds the parameter store at startup.
type ParamsGenesis struct {
	SurplusAuctionFixedSize      uint64
	SurplusBufferSize            uint64
	InitialAmountPerDebitAuction uint64
	DebitAuctionFixedSize        uint64

	// MaxAuctionsCount caps auctions created per cycle and lots per
	// collateral split. 0 disables the cap.
	MaxAuctionsCount uint32

	CollateralAuctionMaximumSize map[currency.Asset]uint64
}

// Params holds the auction sizing configuration. The scheduler and the
// lot splitter only read it; mutation goes through the authorization-gated
// setters, each applied change emitting a notification event.
type Params struct {
	surplusAuctionFixedSize      uint64
	surplusBufferSize            uint64
	initialAmountPerDebitAuction uint64
	debitAuctionFixedSize        uint64
	maxAuctionsCount             uint32
	collateralAuctionMaximumSize map[currency.Asset]uint64

	auth    Authorizer
	events  event.Sink
	metrics *observability.Metrics
}

func NewParams(auth Authorizer, events event.Sink, metrics *observability.Metrics, genesis ParamsGenesis) *Params {
	maxSizes := make(map[currency.Asset]uint64, len(genesis.CollateralAuctionMaximumSize))
	for asset, size := range genesis.CollateralAuctionMaximumSize {
		maxSizes[asset] = size
	}

	return &Params{
		surplusAuctionFixedSize:      genesis.SurplusAuctionFixedSize,
		surplusBufferSize:            genesis.SurplusBufferSize,
		initialAmountPerDebitAuction: genesis.InitialAmountPerDebitAuction,
		debitAuctionFixedSize:        genesis.DebitAuctionFixedSize,
		maxAuctionsCount:             genesis.MaxAuctionsCount,
		collateralAuctionMaximumSize: maxSizes,
		auth:                         auth,
		events:                       events,
		metrics:                      metrics,
	}
}

func (p *Params) SurplusAuctionFixedSize() uint64      { return p.surplusAuctionFixedSize }
func (p *Params) SurplusBufferSize() uint64            { return p.surplusBufferSize }
func (p *Params) InitialAmountPerDebitAuction() uint64 { return p.initialAmountPerDebitAuction }
func (p *Params) DebitAuctionFixedSize() uint64        { return p.debitAuctionFixedSize }
func (p *Params) MaxAuctionsCount() uint32             { return p.maxAuctionsCount }

func (p *Params) CollateralAuctionMaximumSize(asset currency.Asset) uint64 {
	return p.collateralAuctionMaximumSize[asset]
}

// AuctionParamsUpdate carries optional new values for the four auction
// sizing scalars; a nil field means do not update.
type AuctionParamsUpdate struct {
	SurplusAuctionFixedSize      *uint64
	SurplusBufferSize            *uint64
	InitialAmountPerDebitAuction *uint64
	DebitAuctionFixedSize        *uint64
}

// SetAuctionParams updates the surplus/debit auction sizing scalars.
func (p *Params) SetAuctionParams(origin string, upd AuctionParamsUpdate) error {
	if err := p.auth.Authorize(origin); err != nil {
		return err
	}

	if upd.SurplusAuctionFixedSize != nil {
		p.surplusAuctionFixedSize = *upd.SurplusAuctionFixedSize
		p.noteUpdate("surplus_auction_fixed_size", event.TypeSurplusAuctionFixedSizeUpdated, "", p.surplusAuctionFixedSize)
	}
	if upd.SurplusBufferSize != nil {
		p.surplusBufferSize = *upd.SurplusBufferSize
		p.noteUpdate("surplus_buffer_size", event.TypeSurplusBufferSizeUpdated, "", p.surplusBufferSize)
	}
	if upd.InitialAmountPerDebitAuction != nil {
		p.initialAmountPerDebitAuction = *upd.InitialAmountPerDebitAuction
		p.noteUpdate("initial_amount_per_debit_auction", event.TypeInitialAmountPerDebitAuctionUpdated, "", p.initialAmountPerDebitAuction)
	}
	if upd.DebitAuctionFixedSize != nil {
		p.debitAuctionFixedSize = *upd.DebitAuctionFixedSize
		p.noteUpdate("debit_auction_fixed_size", event.TypeDebitAuctionFixedSizeUpdated, "", p.debitAuctionFixedSize)
	}

	return nil
}

// SetCollateralAuctionMaximumSize updates the per-asset maximum lot size.
func (p *Params) SetCollateralAuctionMaximumSize(origin string, asset currency.Asset, size uint64) error {
	if err := p.auth.Authorize(origin); err != nil {
		return err
	}

	p.collateralAuctionMaximumSize[asset] = size
	p.noteUpdate("collateral_auction_maximum_size", event.TypeCollateralAuctionMaximumSizeUpdated, asset, size)
	return nil
}

func (p *Params) noteUpdate(param string, evtType event.Type, asset currency.Asset, value uint64) {
	p.events.Emit(event.Event{Type: evtType, Asset: asset, Amount: value})
	if p.metrics != nil {
		p.metrics.ParamUpdates.WithLabelValues(param).Inc()
	}
}
