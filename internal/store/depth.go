package store

import (
	"sync"

	"github.com/efreitasn/tickfix/internal/domain"
	"github.com/google/btree"
)

// DepthLevel is one aggregated price level of a depth snapshot. Price
// and Size are raw fixed values at the instrument's precisions.
type DepthLevel struct {
	Price int64
	Size  int64
}

// bidLevelLess orders the bid side by price descending, so Min()
// returns the best bid.
func bidLevelLess(a, b DepthLevel) bool {
	return a.Price > b.Price
}

// askLevelLess orders the ask side by price ascending, so Min()
// returns the best ask.
func askLevelLess(a, b DepthLevel) bool {
	return a.Price < b.Price
}

// DepthBook maintains the published bid and ask levels for a single
// symbol using B-trees keyed by raw fixed price. There is at most one
// level per price; publishing a level replaces the previous size, and
// publishing size zero removes the level.
type DepthBook struct {
	symbol string
	mu     sync.RWMutex
	bids   *btree.BTreeG[DepthLevel]
	asks   *btree.BTreeG[DepthLevel]
}

// NewDepthBook creates a depth book for the given symbol.
func NewDepthBook(symbol string) *DepthBook {
	const degree = 32
	return &DepthBook{
		symbol: symbol,
		bids:   btree.NewG[DepthLevel](degree, bidLevelLess),
		asks:   btree.NewG[DepthLevel](degree, askLevelLess),
	}
}

// Apply publishes a level on one side of the book. A zero size deletes
// the level at that price; the less functions compare price only, so
// deletion matches whatever size is resting there.
func (db *DepthBook) Apply(side domain.Side, price, size int64) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tree := db.bids
	if side == domain.SideAsk {
		tree = db.asks
	}

	level := DepthLevel{Price: price, Size: size}
	if size == 0 {
		tree.Delete(level)
		return
	}
	tree.ReplaceOrInsert(level)
}

// BestBid returns the highest-priced bid level.
func (db *DepthBook) BestBid() (DepthLevel, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.bids.Min()
}

// BestAsk returns the lowest-priced ask level.
func (db *DepthBook) BestAsk() (DepthLevel, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.asks.Min()
}

// Snapshot returns up to n levels from each side under a single read
// lock, so bids and asks are consistent with each other.
func (db *DepthBook) Snapshot(n int) (bids, asks []DepthLevel) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return topLevels(db.bids, n), topLevels(db.asks, n)
}

// BidCount returns the number of bid levels on the book.
func (db *DepthBook) BidCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.bids.Len()
}

// AskCount returns the number of ask levels on the book.
func (db *DepthBook) AskCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.asks.Len()
}

// topLevels walks the B-tree in order and collects at most n levels.
func topLevels(tree *btree.BTreeG[DepthLevel], n int) []DepthLevel {
	if n <= 0 {
		return nil
	}
	levels := make([]DepthLevel, 0, n)
	tree.Ascend(func(level DepthLevel) bool {
		if len(levels) >= n {
			return false
		}
		levels = append(levels, level)
		return true
	})
	return levels
}

// DepthManager is a thread-safe map of symbol → DepthBook.
type DepthManager struct {
	mu    sync.RWMutex
	books map[string]*DepthBook
}

// NewDepthManager creates a new DepthManager.
func NewDepthManager() *DepthManager {
	return &DepthManager{
		books: make(map[string]*DepthBook),
	}
}

// GetOrCreate returns the depth book for the given symbol, creating
// one if it doesn't already exist.
func (dm *DepthManager) GetOrCreate(symbol string) *DepthBook {
	dm.mu.RLock()
	book, ok := dm.books[symbol]
	dm.mu.RUnlock()
	if ok {
		return book
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()
	// Double-check after acquiring write lock.
	if book, ok = dm.books[symbol]; ok {
		return book
	}
	book = NewDepthBook(symbol)
	dm.books[symbol] = book
	return book
}
