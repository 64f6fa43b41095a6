// Package storage defines persistence contracts for couplet state.
package storage

import (
	"context"
	"errors"

	"github.com/couplehq/couplet/internal/catalog"
	"github.com/couplehq/couplet/internal/directory"
	"github.com/couplehq/couplet/internal/invite"
	"github.com/couplehq/couplet/internal/order"
)

var (
	// ErrNotFound indicates a requested record is missing, or a
	// conditional write matched no row in the expected state.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a write conflicts with existing state.
	ErrConflict = errors.New("record conflict")
)

// UserStore persists user records and their balances.
type UserStore interface {
	PutUser(ctx context.Context, user directory.User) error
	GetUser(ctx context.Context, userID string) (directory.User, error)
	GetUserByChatID(ctx context.Context, chatID string) (directory.User, error)
	// AddBalances atomically adjusts the user's kiss and hug balances.
	AddBalances(ctx context.Context, userID string, kissDelta, hugDelta int) error
}

// PairStore persists pair records. CreatePair and DeletePair apply the
// pair row and both members' pair references as one transaction; a
// partial application is a consistency fault the store must not allow.
type PairStore interface {
	// CreatePair inserts the pair and sets both members' pair
	// references. Returns ErrConflict when either member is already
	// paired.
	CreatePair(ctx context.Context, pair directory.Pair) error
	GetPair(ctx context.Context, pairID string) (directory.Pair, error)
	// DeletePair clears both members' pair references and removes the
	// pair row.
	DeletePair(ctx context.Context, pairID string) error
}

// InviteStore persists single-use invitation tokens.
type InviteStore interface {
	PutInvite(ctx context.Context, inv invite.Invite) error
	GetInvite(ctx context.Context, token string) (invite.Invite, error)
	// MarkInviteUsed flips the used flag exactly once. Returns
	// ErrNotFound when the token does not exist or was already used, so
	// concurrent redemptions admit a single winner.
	MarkInviteUsed(ctx context.Context, token string) error
}

// CatalogStore persists per-owner catalog items in insertion order.
type CatalogStore interface {
	PutItem(ctx context.Context, item catalog.Item) error
	GetItem(ctx context.Context, itemID string) (catalog.Item, error)
	RenameItem(ctx context.Context, itemID string, title string) error
	DeleteItem(ctx context.Context, itemID string) error
	ListItemsByOwner(ctx context.Context, ownerID string) ([]catalog.Item, error)
}

// OrderStore persists order records and their status lifecycle.
type OrderStore interface {
	PutOrder(ctx context.Context, o order.Order) error
	GetOrder(ctx context.Context, orderID string) (order.Order, error)
	// UpdateOrderStatus moves the order from the expected source status
	// to target as a compare-and-set. Returns ErrNotFound when the
	// order is missing or no longer in the source status, which lets
	// concurrent button taps resolve to exactly one applied transition.
	UpdateOrderStatus(ctx context.Context, orderID string, from, to order.Status) error
	// AttachOrderMessage sets the message field exactly once on a
	// completed message-currency order. Returns ErrConflict when the
	// message was already set, ErrNotFound when no eligible row exists.
	AttachOrderMessage(ctx context.Context, orderID string, text string) error
	// ListOrdersByParticipant returns the most recent orders where the
	// user is requester or fulfiller, newest first, capped at limit.
	ListOrdersByParticipant(ctx context.Context, userID string, limit int) ([]order.Order, error)
}
