package service

import (
	"fmt"
	"regexp"

	"github.com/efreitasn/tickfix/internal/domain"
	"github.com/efreitasn/tickfix/internal/fixed"
)

var instrumentSymbolRegex = regexp.MustCompile(`^[A-Z]{1,10}$`)

// RegisterInstrumentRequest represents the input for instrument
// registration.
type RegisterInstrumentRequest struct {
	Symbol         string
	PricePrecision uint8
	SizePrecision  uint8
}

// InstrumentService handles instrument registration and lookup.
type InstrumentService struct {
	instruments *domain.InstrumentRegistry
}

// NewInstrumentService creates a new InstrumentService.
func NewInstrumentService(instruments *domain.InstrumentRegistry) *InstrumentService {
	return &InstrumentService{instruments: instruments}
}

// Register validates and registers a new instrument. Precisions are
// bounds-checked here so every later conversion for the symbol can
// rely on them being valid.
func (s *InstrumentService) Register(req RegisterInstrumentRequest) (domain.Instrument, error) {
	if !instrumentSymbolRegex.MatchString(req.Symbol) {
		return domain.Instrument{}, &domain.ValidationError{
			Message: "symbol must be 1-10 uppercase letters",
		}
	}
	if req.PricePrecision > fixed.MaxPrecision {
		return domain.Instrument{}, &domain.ValidationError{
			Message: fmt.Sprintf("price_precision must be <= %d", fixed.MaxPrecision),
		}
	}
	if req.SizePrecision > fixed.MaxPrecision {
		return domain.Instrument{}, &domain.ValidationError{
			Message: fmt.Sprintf("size_precision must be <= %d", fixed.MaxPrecision),
		}
	}

	inst := domain.Instrument{
		Symbol:         req.Symbol,
		PricePrecision: req.PricePrecision,
		SizePrecision:  req.SizePrecision,
	}
	if err := s.instruments.Register(inst); err != nil {
		return domain.Instrument{}, err
	}
	return inst, nil
}

// Get retrieves an instrument by symbol.
func (s *InstrumentService) Get(symbol string) (domain.Instrument, error) {
	return s.instruments.Get(symbol)
}

// List returns all registered instruments ordered by symbol.
func (s *InstrumentService) List() []domain.Instrument {
	return s.instruments.List()
}
