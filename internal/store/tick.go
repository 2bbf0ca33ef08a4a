package store

import (
	"sync"

	"github.com/efreitasn/tickfix/internal/domain"
)

// TickStore is a thread-safe in-memory store for normalized ticks,
// keyed by symbol. Ticks are append-only and chronological.
type TickStore struct {
	mu    sync.RWMutex
	ticks map[string][]*domain.Tick // symbol → ticks (chronological)
}

// NewTickStore creates an empty TickStore.
func NewTickStore() *TickStore {
	return &TickStore{
		ticks: make(map[string][]*domain.Tick),
	}
}

// Append adds a tick to the symbol's chronological list.
func (s *TickStore) Append(symbol string, t *domain.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks[symbol] = append(s.ticks[symbol], t)
}

// GetBySymbol returns all ticks for a symbol in chronological order.
// Returns an empty slice if no ticks exist for the symbol.
func (s *TickStore) GetBySymbol(symbol string) []*domain.Tick {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticks := s.ticks[symbol]
	if ticks == nil {
		return []*domain.Tick{}
	}

	// Return a copy to avoid callers mutating the internal slice.
	result := make([]*domain.Tick, len(ticks))
	copy(result, ticks)
	return result
}

// Last returns the most recent tick for a symbol, or false if the
// symbol has never traded.
func (s *TickStore) Last(symbol string) (*domain.Tick, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticks := s.ticks[symbol]
	if len(ticks) == 0 {
		return nil, false
	}
	return ticks[len(ticks)-1], true
}
