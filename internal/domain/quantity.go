package domain

import (
	"fmt"
	"strconv"

	"github.com/efreitasn/tickfix/internal/fixed"
)

// Quantity is a fixed-point size. Unlike Price it must be
// non-negative: a negative traded size has no meaning.
type Quantity struct {
	Raw       int64
	Precision uint8
}

// NewQuantity converts a float size to fixed-point at the given
// precision, rejecting negative values.
func NewQuantity(value float64, precision uint8) (Quantity, error) {
	raw, err := fixed.ToFixed(value, precision)
	if err != nil {
		return Quantity{}, err
	}
	if raw < 0 {
		return Quantity{}, fmt.Errorf("quantity %v: %w", value, ErrNegativeQuantity)
	}
	return Quantity{Raw: raw, Precision: precision}, nil
}

// QuantityFromRaw builds a Quantity from an already-scaled integer.
func QuantityFromRaw(raw int64, precision uint8) (Quantity, error) {
	if _, err := fixed.Scale(precision); err != nil {
		return Quantity{}, err
	}
	if raw < 0 {
		return Quantity{}, fmt.Errorf("raw quantity %d: %w", raw, ErrNegativeQuantity)
	}
	return Quantity{Raw: raw, Precision: precision}, nil
}

// IsZero reports whether the quantity is zero.
func (q Quantity) IsZero() bool {
	return q.Raw == 0
}

// Float64 returns the float view of the quantity.
func (q Quantity) Float64() float64 {
	// Precision is validated at construction, so this cannot fail.
	f, _ := fixed.ToFloat(q.Raw, q.Precision)
	return f
}

// String formats the quantity with exactly Precision decimal digits.
func (q Quantity) String() string {
	return strconv.FormatFloat(q.Float64(), 'f', int(q.Precision), 64)
}
