// Package invite manages single-use pairing invitation tokens.
package invite

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyCreatorID indicates a missing creator user ID.
	ErrEmptyCreatorID = errors.New("creator user id is required")
	// ErrInvalidOrUsed indicates a token that does not exist or was
	// already redeemed.
	ErrInvalidOrUsed = errors.New("invite token is invalid or already used")
	// ErrSelfRedemption indicates a creator redeeming their own token.
	ErrSelfRedemption = errors.New("invite cannot be redeemed by its creator")
)

// Invite is a single-use credential binding a future pair to its
// creator. Tokens never expire; a creator may hold several unused
// tokens at once.
type Invite struct {
	Token     string
	CreatorID string
	Used      bool
	CreatedAt time.Time
}

// CreateInviteInput describes the metadata needed to create an invite.
type CreateInviteInput struct {
	CreatorID string
}

// CreateInvite creates an unused invite with a generated token.
func CreateInvite(input CreateInviteInput, now func() time.Time, tokenGenerator func() string) (Invite, error) {
	if now == nil {
		now = time.Now
	}
	if tokenGenerator == nil {
		tokenGenerator = NewToken
	}

	input.CreatorID = strings.TrimSpace(input.CreatorID)
	if input.CreatorID == "" {
		return Invite{}, ErrEmptyCreatorID
	}

	return Invite{
		Token:     tokenGenerator(),
		CreatorID: input.CreatorID,
		Used:      false,
		CreatedAt: now().UTC(),
	}, nil
}

// NewToken returns a cryptographically random invite token.
func NewToken() string {
	return uuid.NewString()
}

// CheckRedeemer enforces the redemption policy for a resolved invite:
// the creator may not redeem their own token.
func CheckRedeemer(inv Invite, redeemerID string) error {
	if inv.CreatorID == redeemerID {
		return ErrSelfRedemption
	}
	return nil
}
