package domain

import "time"

// Side indicates which side of the book a depth level belongs to.
type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// Tick represents a normalized trade print for an instrument. Price
// and Size are stored fixed-point at the instrument's precisions.
type Tick struct {
	TickID     string
	Symbol     string
	Price      Price
	Size       Quantity
	ExecutedAt time.Time
}
