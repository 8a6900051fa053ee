package currency

import (
	"math"

	"github.com/google/uuid"
)

type balanceKey struct {
	Account uuid.UUID
	Asset   Asset
}

// Book is the in-memory Ledger implementation. Balances and per-asset
// issuance are tracked as unsigned amounts; any operation that would
// underflow or overflow fails without partial writes.
type Book struct {
	balances map[balanceKey]uint64
	issuance map[Asset]uint64
}

func NewBook() *Book {
	return &Book{
		balances: make(map[balanceKey]uint64),
		issuance: make(map[Asset]uint64),
	}
}

func (b *Book) Deposit(asset Asset, to uuid.UUID, amount uint64) error {
	key := balanceKey{Account: to, Asset: asset}

	newIssuance := b.issuance[asset] + amount
	if newIssuance < b.issuance[asset] {
		return ErrIssuanceOverflow
	}
	newBalance := b.balances[key] + amount
	if newBalance < b.balances[key] {
		return ErrBalanceOverflow
	}

	b.issuance[asset] = newIssuance
	b.balances[key] = newBalance
	return nil
}

func (b *Book) Withdraw(asset Asset, from uuid.UUID, amount uint64) error {
	key := balanceKey{Account: from, Asset: asset}
	if b.balances[key] < amount {
		return ErrInsufficientBalance
	}

	b.balances[key] -= amount
	b.issuance[asset] -= amount
	return nil
}

func (b *Book) Transfer(asset Asset, from, to uuid.UUID, amount uint64) error {
	if from == to {
		return nil
	}

	fromKey := balanceKey{Account: from, Asset: asset}
	toKey := balanceKey{Account: to, Asset: asset}

	if b.balances[fromKey] < amount {
		return ErrInsufficientBalance
	}
	if b.balances[toKey]+amount < b.balances[toKey] {
		return ErrBalanceOverflow
	}

	b.balances[fromKey] -= amount
	b.balances[toKey] += amount
	return nil
}

func (b *Book) EnsureCanWithdraw(asset Asset, from uuid.UUID, amount uint64) error {
	if b.balances[balanceKey{Account: from, Asset: asset}] < amount {
		return ErrInsufficientBalance
	}
	return nil
}

func (b *Book) TotalIssuance(asset Asset) uint64 {
	return b.issuance[asset]
}

// Balance returns the current balance of an account for an asset.
func (b *Book) Balance(asset Asset, account uuid.UUID) uint64 {
	return b.balances[balanceKey{Account: account, Asset: asset}]
}

// Snapshot returns a copy of all balances keyed by account path strings,
// for persistence and diagnostics.
func (b *Book) Snapshot() map[Asset]map[uuid.UUID]uint64 {
	out := make(map[Asset]map[uuid.UUID]uint64)
	for key, bal := range b.balances {
		perAsset, ok := out[key.Asset]
		if !ok {
			perAsset = make(map[uuid.UUID]uint64)
			out[key.Asset] = perAsset
		}
		perAsset[key.Account] = bal
	}
	return out
}

// MaxBalance is the largest representable amount.
const MaxBalance = uint64(math.MaxUint64)
