package service

import (
	"time"

	"github.com/efreitasn/tickfix/internal/domain"
	"github.com/efreitasn/tickfix/internal/store"
	"github.com/google/uuid"
)

// IngestTickRequest represents an incoming float-valued trade print.
type IngestTickRequest struct {
	Symbol string
	Price  float64
	Size   float64
}

// DepthUpdateRequest represents one published depth level.
type DepthUpdateRequest struct {
	Symbol string
	Side   domain.Side
	Price  float64
	Size   float64
}

// TickService normalizes incoming float-valued market data into
// fixed-point values at the instrument's registered precisions and
// stores the result.
type TickService struct {
	instruments *domain.InstrumentRegistry
	tickStore   *store.TickStore
	depth       *store.DepthManager
}

// NewTickService creates a new TickService with the given dependencies.
func NewTickService(
	instruments *domain.InstrumentRegistry,
	tickStore *store.TickStore,
	depth *store.DepthManager,
) *TickService {
	return &TickService{
		instruments: instruments,
		tickStore:   tickStore,
		depth:       depth,
	}
}

// Ingest converts and records a trade print. Conversion failures
// (bad precision can't happen here, but non-finite or overflowing
// floats can) propagate to the caller instead of being clamped.
func (s *TickService) Ingest(req IngestTickRequest) (*domain.Tick, error) {
	inst, err := s.instruments.Get(req.Symbol)
	if err != nil {
		return nil, err
	}

	price, err := domain.NewPrice(req.Price, inst.PricePrecision)
	if err != nil {
		return nil, err
	}
	size, err := domain.NewQuantity(req.Size, inst.SizePrecision)
	if err != nil {
		return nil, err
	}
	if size.IsZero() {
		return nil, &domain.ValidationError{
			Message: "size must be greater than zero",
		}
	}

	tick := &domain.Tick{
		TickID:     uuid.New().String(),
		Symbol:     inst.Symbol,
		Price:      price,
		Size:       size,
		ExecutedAt: time.Now(),
	}
	s.tickStore.Append(inst.Symbol, tick)
	return tick, nil
}

// ApplyDepth converts and publishes one depth level. A zero size
// removes the level at that price.
func (s *TickService) ApplyDepth(req DepthUpdateRequest) error {
	inst, err := s.instruments.Get(req.Symbol)
	if err != nil {
		return err
	}

	if req.Side != domain.SideBid && req.Side != domain.SideAsk {
		return &domain.ValidationError{
			Message: "side must be 'bid' or 'ask'",
		}
	}

	price, err := domain.NewPrice(req.Price, inst.PricePrecision)
	if err != nil {
		return err
	}
	size, err := domain.NewQuantity(req.Size, inst.SizePrecision)
	if err != nil {
		return err
	}

	s.depth.GetOrCreate(inst.Symbol).Apply(req.Side, price.Raw, size.Raw)
	return nil
}
