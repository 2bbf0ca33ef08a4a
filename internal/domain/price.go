package domain

import (
	"strconv"

	"github.com/efreitasn/tickfix/internal/fixed"
)

// Price is a fixed-point price: a raw scaled integer plus the number
// of decimal digits it preserves. All comparison and arithmetic in the
// rest of the system happens on Raw; floats exist only at the edges.
type Price struct {
	Raw       int64
	Precision uint8
}

// NewPrice converts a float price to fixed-point at the given
// precision. It fails for out-of-range precision, non-finite input, or
// a magnitude that does not fit in int64.
func NewPrice(value float64, precision uint8) (Price, error) {
	raw, err := fixed.ToFixed(value, precision)
	if err != nil {
		return Price{}, err
	}
	return Price{Raw: raw, Precision: precision}, nil
}

// PriceFromRaw builds a Price from an already-scaled integer.
func PriceFromRaw(raw int64, precision uint8) (Price, error) {
	if _, err := fixed.Scale(precision); err != nil {
		return Price{}, err
	}
	return Price{Raw: raw, Precision: precision}, nil
}

// Float64 returns the float view of the price.
func (p Price) Float64() float64 {
	// Precision is validated at construction, so this cannot fail.
	f, _ := fixed.ToFloat(p.Raw, p.Precision)
	return f
}

// String formats the price with exactly Precision decimal digits.
func (p Price) String() string {
	return strconv.FormatFloat(p.Float64(), 'f', int(p.Precision), 64)
}
