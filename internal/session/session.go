// Package session tracks which multi-step dialogue each user is inside.
//
// A user has at most one active context at a time; beginning a new
// dialogue replaces any prior context rather than stacking on it.
package session

import (
	"sync"

	"github.com/couplehq/couplet/internal/order"
)

// Kind identifies which dialogue a context belongs to.
type Kind int

const (
	// KindNone indicates no active dialogue.
	KindNone Kind = iota
	// KindAuthoringCatalog indicates the user is adding catalog items
	// until they send the done sentinel.
	KindAuthoringCatalog
	// KindEditingItem indicates the next text renames ItemID.
	KindEditingItem
	// KindAwaitingCurrency indicates the user picked ItemID from the
	// partner catalog and must choose a currency.
	KindAwaitingCurrency
	// KindAwaitingDeadline indicates the next text is the deadline for
	// an order of ItemID paid in Currency.
	KindAwaitingDeadline
	// KindAwaitingMessage indicates the next text is attached to the
	// completed message-currency order OrderID.
	KindAwaitingMessage
)

// Context is the tagged per-user dialogue marker. Only the fields
// relevant to Kind are set.
type Context struct {
	Kind     Kind
	ItemID   string
	Currency order.Currency
	OrderID  string
}

// None reports whether the context carries no active dialogue.
func (c Context) None() bool {
	return c.Kind == KindNone
}

// AuthoringCatalog returns a catalog-authoring context.
func AuthoringCatalog() Context {
	return Context{Kind: KindAuthoringCatalog}
}

// EditingItem returns a catalog-edit context for itemID.
func EditingItem(itemID string) Context {
	return Context{Kind: KindEditingItem, ItemID: itemID}
}

// AwaitingCurrency returns an order context waiting for a currency choice.
func AwaitingCurrency(itemID string) Context {
	return Context{Kind: KindAwaitingCurrency, ItemID: itemID}
}

// AwaitingDeadline returns an order context waiting for a deadline string.
func AwaitingDeadline(itemID string, currency order.Currency) Context {
	return Context{Kind: KindAwaitingDeadline, ItemID: itemID, Currency: currency}
}

// AwaitingMessage returns a post-completion context waiting for the
// requester's message text.
func AwaitingMessage(orderID string) Context {
	return Context{Kind: KindAwaitingMessage, OrderID: orderID}
}

// Store holds the in-process session contexts, keyed by user ID. Safe
// for concurrent use. Contexts are ephemeral: a restart clears them.
type Store struct {
	mu       sync.Mutex
	contexts map[string]Context
	locks    map[string]*sync.Mutex
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		contexts: make(map[string]Context),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Get returns the active context for userID, or the zero (none) context.
func (s *Store) Get(userID string) Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contexts[userID]
}

// Put replaces the active context for userID.
func (s *Store) Put(userID string, ctx Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.None() {
		delete(s.contexts, userID)
		return
	}
	s.contexts[userID] = ctx
}

// Clear removes any active context for userID.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, userID)
}

// Lock acquires the per-user serialization lock and returns its
// release function. Event handling for one user never interleaves;
// distinct users proceed in parallel.
func (s *Store) Lock(userID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
