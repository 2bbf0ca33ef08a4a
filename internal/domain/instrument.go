package domain

import (
	"sort"
	"sync"
)

// Instrument describes how values for a symbol are scaled. Every
// conversion for the symbol uses these precisions, so a raw fixed
// value is never stored without its scale being recoverable.
type Instrument struct {
	Symbol         string
	PricePrecision uint8
	SizePrecision  uint8
}

// InstrumentRegistry tracks registered instruments in a thread-safe
// manner. Ticks and depth updates are only accepted for registered
// symbols.
type InstrumentRegistry struct {
	mu          sync.RWMutex
	instruments map[string]Instrument
}

// NewInstrumentRegistry creates an empty InstrumentRegistry.
func NewInstrumentRegistry() *InstrumentRegistry {
	return &InstrumentRegistry{
		instruments: make(map[string]Instrument),
	}
}

// Register adds an instrument. It returns ErrInstrumentAlreadyExists
// if the symbol is already registered. Safe for concurrent use.
func (r *InstrumentRegistry) Register(inst Instrument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instruments[inst.Symbol]; ok {
		return ErrInstrumentAlreadyExists
	}
	r.instruments[inst.Symbol] = inst
	return nil
}

// Get retrieves an instrument by symbol. It returns
// ErrInstrumentNotFound if the symbol is not registered.
func (r *InstrumentRegistry) Get(symbol string) (Instrument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instruments[symbol]
	if !ok {
		return Instrument{}, ErrInstrumentNotFound
	}
	return inst, nil
}

// List returns all registered instruments ordered by symbol.
func (r *InstrumentRegistry) List() []Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Instrument, 0, len(r.instruments))
	for _, inst := range r.instruments {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
