// Package directory models users and the pair relationship between them.
package directory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couplehq/couplet/internal/platform/id"
)

var (
	// ErrEmptyChatID indicates a missing external chat ID.
	ErrEmptyChatID = errors.New("chat id is required")
	// ErrAlreadyPaired indicates a user already belongs to a pair.
	ErrAlreadyPaired = errors.New("user is already paired")
	// ErrSamePairMembers indicates an attempt to pair a user with themselves.
	ErrSamePairMembers = errors.New("pair members must be distinct")
	// ErrNoPair indicates a user has no pair to operate on.
	ErrNoPair = errors.New("user has no pair")
)

// User is one end-user of the exchange, keyed by a stable external
// chat identifier. Balances mutate only when orders complete.
type User struct {
	ID          string
	ChatID      string
	DisplayName string
	PairID      string // empty when unpaired
	KissBalance int
	HugBalance  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Paired reports whether the user currently belongs to a pair.
func (u User) Paired() bool {
	return u.PairID != ""
}

// Pair is the unordered relation between exactly two distinct users.
type Pair struct {
	ID        string
	UserAID   string
	UserBID   string
	CreatedAt time.Time
}

// OtherMember returns the pair member that is not userID, or false when
// userID is not a member of the pair.
func (p Pair) OtherMember(userID string) (string, bool) {
	switch userID {
	case p.UserAID:
		return p.UserBID, true
	case p.UserBID:
		return p.UserAID, true
	default:
		return "", false
	}
}

// CreateUserInput describes the metadata needed to create a user.
type CreateUserInput struct {
	ChatID      string
	DisplayName string
}

const fallbackDisplayName = "Anonymous"

// CreateUser creates a user record with a generated ID and timestamps.
// A blank display name falls back to a placeholder.
func CreateUser(input CreateUserInput, now func() time.Time, idGenerator func() (string, error)) (User, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.ChatID = strings.TrimSpace(input.ChatID)
	if input.ChatID == "" {
		return User{}, ErrEmptyChatID
	}
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.DisplayName == "" {
		input.DisplayName = fallbackDisplayName
	}

	userID, err := idGenerator()
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}

	createdAt := now().UTC()
	return User{
		ID:          userID,
		ChatID:      input.ChatID,
		DisplayName: input.DisplayName,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// CreatePair creates a pair record between two unpaired, distinct users.
func CreatePair(userA, userB User, now func() time.Time, idGenerator func() (string, error)) (Pair, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if userA.ID == userB.ID {
		return Pair{}, ErrSamePairMembers
	}
	if userA.Paired() || userB.Paired() {
		return Pair{}, ErrAlreadyPaired
	}

	pairID, err := idGenerator()
	if err != nil {
		return Pair{}, fmt.Errorf("generate pair id: %w", err)
	}

	return Pair{
		ID:        pairID,
		UserAID:   userA.ID,
		UserBID:   userB.ID,
		CreatedAt: now().UTC(),
	}, nil
}
