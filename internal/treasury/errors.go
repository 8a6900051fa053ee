package treasury

import "errors"

var (
	// ErrCollateralNotEnough: a withdrawal or swap asks for more collateral
	// than the treasury tracks for that asset.
	ErrCollateralNotEnough = errors.New("collateral amount of treasury is not enough")

	// ErrCollateralOverflow: a collateral deposit would overflow the tracked total.
	ErrCollateralOverflow = errors.New("collateral amount overflow")

	ErrSurplusPoolOverflow = errors.New("surplus pool overflow")
	ErrDebitPoolOverflow   = errors.New("debit pool overflow")

	// ErrNotAuthorized: the origin is not allowed to update parameters.
	ErrNotAuthorized = errors.New("origin not authorized to update treasury parameters")
)
