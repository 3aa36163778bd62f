// Package money provides integer-cents arithmetic shared by the pricing
// pipeline. All amounts are minor currency units; percentages are fixed-point
// basis points. No floating point is used anywhere.
package money

// Money represents a monetary value stored in integer minor units.
type Money = int64

// BpsDenom is the fixed-point denominator for basis points (1 bps = 0.01%).
const BpsDenom int64 = 10_000

// RoundHalfUpDiv divides a by b rounding half-up. Non-positive inputs
// collapse to zero since negative amounts never survive the pipeline.
func RoundHalfUpDiv(a, b Money) Money {
	if a <= 0 || b <= 0 {
		return 0
	}
	return (2*a + b) / (2 * b)
}

// ApplyBps returns amount scaled by bps/10000, rounded half-up.
func ApplyBps(amount Money, bps int32) Money {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return RoundHalfUpDiv(amount*Money(bps), BpsDenom)
}

// ClampBps bounds a basis-point value to [0, 10000], i.e. 0–100%.
func ClampBps(bps int32) int32 {
	if bps < 0 {
		return 0
	}
	if bps > int32(BpsDenom) {
		return int32(BpsDenom)
	}
	return bps
}

// NonNegative floors an amount at zero.
func NonNegative(v Money) Money {
	if v < 0 {
		return 0
	}
	return v
}
