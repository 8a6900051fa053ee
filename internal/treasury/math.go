package treasury

import (
	"fmt"
	"math/big"
)

// Ratio is a fixed-point fraction with 18 decimal places.
type Ratio uint64

// RatioScale is the fixed-point scale of Ratio: Ratio(RatioScale) == 1.0.
const RatioScale uint64 = 1_000_000_000_000_000_000

// ratioFromRational computes n/d as a Ratio. Returns zero when the
// denominator is zero or the result does not fit, matching a checked
// construction that defaults on failure.
func ratioFromRational(n, d uint64) Ratio {
	if d == 0 {
		return 0
	}

	v := new(big.Int).SetUint64(n)
	v.Mul(v, new(big.Int).SetUint64(RatioScale))
	v.Div(v, new(big.Int).SetUint64(d))

	if !v.IsUint64() {
		return 0
	}
	return Ratio(v.Uint64())
}

// Float64 returns the ratio as a float, for logging and metrics only.
func (r Ratio) Float64() float64 {
	return float64(r) / float64(RatioScale)
}

// checkedAdd returns a+b and whether it stayed in range.
func checkedAdd(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}

// checkedAdd3 returns a+b+c and whether it stayed in range.
func checkedAdd3(a, b, c uint64) (uint64, bool) {
	sum, ok := checkedAdd(a, b)
	if !ok {
		return 0, false
	}
	return checkedAdd(sum, c)
}

// mustSub subtracts b from a. Callers establish a >= b through their
// loop or branch conditions before reaching this; a violation is a
// programming error, never a recoverable state.
func mustSub(a, b uint64, what string) uint64 {
	if b > a {
		panic(fmt.Sprintf("FATAL: %s: unsigned underflow (%d - %d)", what, a, b))
	}
	return a - b
}
