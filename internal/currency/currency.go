package currency

import (
	"errors"

	"github.com/google/uuid"
)

// Asset identifies a currency managed by the ledger, e.g. "AUSD" (the
// stablecoin), "ACA" (native token), "DOT", "XBTC" (collateral assets).
type Asset string

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrIssuanceOverflow    = errors.New("total issuance overflow")
	ErrBalanceOverflow     = errors.New("account balance overflow")
)

// Ledger is the multi-currency system the treasury settles against.
// Every mutation either fully succeeds or leaves the ledger unchanged.
type Ledger interface {
	// Deposit mints amount of asset into the account.
	Deposit(asset Asset, to uuid.UUID, amount uint64) error

	// Withdraw burns amount of asset from the account.
	Withdraw(asset Asset, from uuid.UUID, amount uint64) error

	// Transfer moves amount of asset between accounts without changing
	// total issuance.
	Transfer(asset Asset, from, to uuid.UUID, amount uint64) error

	// EnsureCanWithdraw reports whether a Withdraw of amount would
	// succeed, without performing it.
	EnsureCanWithdraw(asset Asset, from uuid.UUID, amount uint64) error

	// TotalIssuance returns the outstanding supply of asset.
	TotalIssuance(asset Asset) uint64
}
