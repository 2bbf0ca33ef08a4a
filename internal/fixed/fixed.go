// Package fixed converts between float64 values and scaled int64
// fixed-point values at a caller-specified number of decimal digits.
//
// A fixed value is round(f * 10^precision) stored as int64. Storing
// prices and quantities this way avoids the rounding drift of float
// arithmetic while keeping float views cheap for display and JSON.
// Both conversions are pure functions and safe for concurrent use.
package fixed

import (
	"errors"
	"fmt"
	"math"
)

// MaxPrecision is the largest supported number of decimal digits.
// 10^9 is the scale of one nanounit, a common bound for sub-unit
// financial precision.
const MaxPrecision = 9

// Sentinel errors for conversion failures. All are deterministic:
// the same input always fails the same way.
var (
	ErrInvalidPrecision = errors.New("invalid_precision")
	ErrInvalidInput     = errors.New("invalid_input")
	ErrNumericOverflow  = errors.New("numeric_overflow")
)

// pow10 holds the exact integer scale factors 10^0 .. 10^MaxPrecision.
// Keeping them as integers avoids carrying float representation error
// into every conversion.
var pow10 = [MaxPrecision + 1]int64{
	1,
	10,
	100,
	1_000,
	10_000,
	100_000,
	1_000_000,
	10_000_000,
	100_000_000,
	1_000_000_000,
}

// float64(math.MaxInt64) rounds up to 2^63, so >= maxInt64f catches
// every magnitude whose int64 conversion would be out of range.
// float64(math.MinInt64) is exactly -2^63, which is a valid int64.
const (
	maxInt64f = float64(math.MaxInt64)
	minInt64f = float64(math.MinInt64)
)

// ToFixed converts a finite float64 to its scaled int64 representation
// at the given precision. Ties round half to even (banker's rounding)
// so repeated rounding does not accumulate directional bias.
func ToFixed(value float64, precision uint8) (int64, error) {
	if precision > MaxPrecision {
		return 0, fmt.Errorf("precision %d exceeds maximum %d: %w", precision, MaxPrecision, ErrInvalidPrecision)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("value %v is not finite: %w", value, ErrInvalidInput)
	}

	rounded := math.RoundToEven(value * float64(pow10[precision]))
	if rounded >= maxInt64f || rounded < minInt64f {
		return 0, fmt.Errorf("value %v at precision %d exceeds int64 range: %w", value, precision, ErrNumericOverflow)
	}

	return int64(rounded), nil
}

// ToFloat converts a scaled int64 back to the float64 it represents at
// the given precision. The division rounds to nearest even at the bit
// level per IEEE-754; no further rounding decision is needed, and this
// direction cannot overflow.
func ToFloat(value int64, precision uint8) (float64, error) {
	if precision > MaxPrecision {
		return 0, fmt.Errorf("precision %d exceeds maximum %d: %w", precision, MaxPrecision, ErrInvalidPrecision)
	}
	return float64(value) / float64(pow10[precision]), nil
}

// Scale returns the integer scale factor 10^precision.
func Scale(precision uint8) (int64, error) {
	if precision > MaxPrecision {
		return 0, fmt.Errorf("precision %d exceeds maximum %d: %w", precision, MaxPrecision, ErrInvalidPrecision)
	}
	return pow10[precision], nil
}
