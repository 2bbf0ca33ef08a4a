package service

import (
	"fmt"
	"time"

	"github.com/efreitasn/tickfix/internal/domain"
	"github.com/efreitasn/tickfix/internal/store"
)

// PriceStats represents the response for GET /instruments/{symbol}/price.
type PriceStats struct {
	Symbol        string
	LastPrice     *domain.Price // nil when no ticks ever
	VWAP          *domain.Price // nil when no ticks ever
	Window        string        // e.g. "5m"
	TicksInWindow int
	LastTickAt    *time.Time // nil when no ticks ever
}

// DepthSnapshotLevel is a single price level in the depth response.
type DepthSnapshotLevel struct {
	Price domain.Price
	Size  domain.Quantity
}

// DepthSnapshot represents the response for GET /instruments/{symbol}/depth.
type DepthSnapshot struct {
	Symbol     string
	Bids       []DepthSnapshotLevel
	Asks       []DepthSnapshotLevel
	Spread     *domain.Price // nil if either side empty
	Mid        *float64      // nil if either side empty
	SnapshotAt time.Time
}

// MarketService handles price and depth queries.
type MarketService struct {
	instruments *domain.InstrumentRegistry
	tickStore   *store.TickStore
	depth       *store.DepthManager
	vwapWindow  time.Duration
}

// NewMarketService creates a new MarketService with the given dependencies.
func NewMarketService(
	instruments *domain.InstrumentRegistry,
	tickStore *store.TickStore,
	depth *store.DepthManager,
	vwapWindow time.Duration,
) *MarketService {
	return &MarketService{
		instruments: instruments,
		tickStore:   tickStore,
		depth:       depth,
		vwapWindow:  vwapWindow,
	}
}

// GetPrice returns the last traded price and the VWAP over the
// configured window, computed on raw fixed values. VWAP falls back to
// the last tick's price if no ticks exist in the window. Returns nil
// prices when the symbol has never traded.
func (s *MarketService) GetPrice(symbol string) (*PriceStats, error) {
	inst, err := s.instruments.Get(symbol)
	if err != nil {
		return nil, err
	}

	ticks := s.tickStore.GetBySymbol(symbol)
	now := time.Now()
	windowStart := now.Add(-s.vwapWindow)

	resp := &PriceStats{
		Symbol: symbol,
		Window: formatDuration(s.vwapWindow),
	}

	if len(ticks) == 0 {
		// No ticks ever — null prices.
		return resp, nil
	}

	lastTick := ticks[len(ticks)-1]
	resp.LastTickAt = &lastTick.ExecutedAt
	resp.LastPrice = &lastTick.Price

	// VWAP = sum(price * size) / sum(size), on raw integers. Iterate
	// backwards from the tail until executed_at falls outside the window.
	var sumPriceSize int64
	var sumSize int64
	var ticksInWindow int

	for i := len(ticks) - 1; i >= 0; i-- {
		tk := ticks[i]
		if tk.ExecutedAt.Before(windowStart) {
			break
		}
		sumPriceSize += tk.Price.Raw * tk.Size.Raw
		sumSize += tk.Size.Raw
		ticksInWindow++
	}

	resp.TicksInWindow = ticksInWindow

	vwapRaw := lastTick.Price.Raw
	if sumSize > 0 {
		vwapRaw = sumPriceSize / sumSize
	}
	vwap, err := domain.PriceFromRaw(vwapRaw, inst.PricePrecision)
	if err != nil {
		return nil, err
	}
	resp.VWAP = &vwap

	return resp, nil
}

// GetDepth returns the top N levels of the published depth for a
// symbol, with the spread and mid when both sides are populated.
func (s *MarketService) GetDepth(symbol string, depth int) (*DepthSnapshot, error) {
	inst, err := s.instruments.Get(symbol)
	if err != nil {
		return nil, err
	}

	if depth < 1 || depth > 50 {
		return nil, &domain.ValidationError{
			Message: "depth must be between 1 and 50",
		}
	}

	book := s.depth.GetOrCreate(symbol)
	rawBids, rawAsks := book.Snapshot(depth)

	bids, err := toSnapshotLevels(rawBids, inst)
	if err != nil {
		return nil, err
	}
	asks, err := toSnapshotLevels(rawAsks, inst)
	if err != nil {
		return nil, err
	}

	resp := &DepthSnapshot{
		Symbol:     symbol,
		Bids:       bids,
		Asks:       asks,
		SnapshotAt: time.Now(),
	}

	if len(rawBids) > 0 && len(rawAsks) > 0 {
		spread, err := domain.PriceFromRaw(rawAsks[0].Price-rawBids[0].Price, inst.PricePrecision)
		if err != nil {
			return nil, err
		}
		resp.Spread = &spread
		mid := (bids[0].Price.Float64() + asks[0].Price.Float64()) / 2
		resp.Mid = &mid
	}

	return resp, nil
}

// toSnapshotLevels attaches the instrument's precisions to raw depth
// levels.
func toSnapshotLevels(levels []store.DepthLevel, inst domain.Instrument) ([]DepthSnapshotLevel, error) {
	out := make([]DepthSnapshotLevel, len(levels))
	for i, level := range levels {
		price, err := domain.PriceFromRaw(level.Price, inst.PricePrecision)
		if err != nil {
			return nil, err
		}
		size, err := domain.QuantityFromRaw(level.Size, inst.SizePrecision)
		if err != nil {
			return nil, err
		}
		out[i] = DepthSnapshotLevel{Price: price, Size: size}
	}
	return out, nil
}

// formatDuration converts a time.Duration to a human-readable string
// like "5m" for the window field.
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	minutes := int(d.Minutes())
	if d == time.Duration(minutes)*time.Minute && minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return d.String()
}
