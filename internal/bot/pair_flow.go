package bot

import (
	"context"
	"errors"
	"log"

	"github.com/couplehq/couplet/internal/bot/render"
	"github.com/couplehq/couplet/internal/directory"
	"github.com/couplehq/couplet/internal/invite"
	"github.com/couplehq/couplet/internal/storage"
)

func (e *Engine) handleStart(ctx context.Context, user directory.User, payload string) ([]Effect, error) {
	if token, ok := ParseStartPayload(payload); ok {
		return e.redeemInvite(ctx, user, token)
	}
	return []Effect{e.welcome()}, nil
}

func (e *Engine) welcome() Effect {
	return reply(e.loc.Sprintf(render.KeyWelcome), mainKeyboard(e.loc))
}

// createInvite issues a fresh single-use token and replies with a
// shareable deep link. Paired users get a refusal instead.
func (e *Engine) createInvite(ctx context.Context, user directory.User) ([]Effect, error) {
	if user.Paired() {
		return []Effect{reply(e.loc.Sprintf(render.KeyInviteAlreadyPaired), nil)}, nil
	}

	inv, err := invite.CreateInvite(invite.CreateInviteInput{CreatorID: user.ID}, e.now, e.newToken)
	if err != nil {
		return nil, err
	}
	if err := e.stores.Invites.PutInvite(ctx, inv); err != nil {
		return nil, err
	}

	link := e.inviteLinkBase + "?start=" + InviteStartPayload(inv.Token)
	return []Effect{reply(e.loc.Sprintf(render.KeyInviteLink, link), nil)}, nil
}

// redeemInvite consumes a token and pairs the redeemer with its creator.
// Every rejection path answers with a plain message; the single-winner
// guarantee for concurrent redemptions lives in the invite store.
func (e *Engine) redeemInvite(ctx context.Context, user directory.User, token string) ([]Effect, error) {
	if user.Paired() {
		effects := []Effect{reply(e.loc.Sprintf(render.KeyAlreadyPaired), nil)}
		// Tell the creator their link reached someone unavailable.
		if inv, err := e.stores.Invites.GetInvite(ctx, token); err == nil && !inv.Used {
			if creator, err := e.stores.Users.GetUser(ctx, inv.CreatorID); err == nil {
				effects = append(effects, sendTo(creator.ChatID, e.loc.Sprintf(render.KeyInviteTakenNotice), nil))
			}
		}
		return effects, nil
	}

	inv, err := e.stores.Invites.GetInvite(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{reply(e.loc.Sprintf(render.KeyInviteInvalid), nil)}, nil
		}
		return nil, err
	}
	if inv.Used {
		return []Effect{reply(e.loc.Sprintf(render.KeyInviteInvalid), nil)}, nil
	}
	if err := invite.CheckRedeemer(inv, user.ID); err != nil {
		return []Effect{reply(e.loc.Sprintf(render.KeyInviteSelf), nil)}, nil
	}

	creator, err := e.stores.Users.GetUser(ctx, inv.CreatorID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Printf("bot: invite %s references missing creator %s", inv.Token, inv.CreatorID)
			return []Effect{reply(e.loc.Sprintf(render.KeyInviteInvalid), nil)}, nil
		}
		return nil, err
	}

	pair, err := directory.CreatePair(creator, user, e.now, e.newID)
	if err != nil {
		// The creator paired up since issuing the token.
		return []Effect{reply(e.loc.Sprintf(render.KeyInviteInvalid), nil)}, nil
	}

	// Burn the token before linking so a concurrent redemption of the
	// same token observes it spent.
	if err := e.stores.Invites.MarkInviteUsed(ctx, token); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{reply(e.loc.Sprintf(render.KeyInviteInvalid), nil)}, nil
		}
		return nil, err
	}
	if err := e.stores.Pairs.CreatePair(ctx, pair); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return []Effect{reply(e.loc.Sprintf(render.KeyInviteInvalid), nil)}, nil
		}
		return nil, err
	}

	return []Effect{e.welcome()}, nil
}

func (e *Engine) promptReset(user directory.User) []Effect {
	if !user.Paired() {
		return []Effect{reply(e.loc.Sprintf(render.KeyResetNone), nil)}
	}
	return []Effect{reply(e.loc.Sprintf(render.KeyResetConfirm), confirmResetKeyboard(e.loc))}
}

// confirmReset dissolves the pair and notifies the other member. The
// confirmation button may be stale, so the pair state is re-checked.
func (e *Engine) confirmReset(ctx context.Context, user directory.User) ([]Effect, error) {
	if !user.Paired() {
		return []Effect{editMessage(e.loc.Sprintf(render.KeyResetNone), nil)}, nil
	}

	partner, err := e.findPartner(ctx, user)
	if err != nil && !errors.Is(err, errPartnerMissing) {
		if errors.Is(err, directory.ErrNoPair) {
			return []Effect{editMessage(e.loc.Sprintf(render.KeyResetNone), nil)}, nil
		}
		return nil, err
	}

	if err := e.stores.Pairs.DeletePair(ctx, user.PairID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{editMessage(e.loc.Sprintf(render.KeyResetNone), nil)}, nil
		}
		return nil, err
	}

	effects := []Effect{editMessage(e.loc.Sprintf(render.KeyResetDone), nil)}
	if partner.ChatID != "" {
		effects = append(effects, sendTo(partner.ChatID, e.loc.Sprintf(render.KeyResetPartnerNotice), nil))
	}
	return effects, nil
}

func (e *Engine) cancelReset(directory.User) []Effect {
	return []Effect{editMessage(e.loc.Sprintf(render.KeyResetCancelled), nil)}
}
