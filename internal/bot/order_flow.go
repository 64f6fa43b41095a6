package bot

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/couplehq/couplet/internal/bot/render"
	"github.com/couplehq/couplet/internal/directory"
	"github.com/couplehq/couplet/internal/order"
	"github.com/couplehq/couplet/internal/session"
	"github.com/couplehq/couplet/internal/storage"
)

// startOrder begins the order dialogue for one of the partner's favors.
func (e *Engine) startOrder(ctx context.Context, user directory.User, itemID string) ([]Effect, error) {
	partner, err := e.findPartner(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrNoPair):
			return []Effect{reply(e.loc.Sprintf(render.KeyPartnerNone), nil)}, nil
		case errors.Is(err, errPartnerMissing):
			return []Effect{reply(e.loc.Sprintf(render.KeyPartnerMissing), nil)}, nil
		default:
			return nil, err
		}
	}

	item, err := e.stores.Catalog.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{reply(e.loc.Sprintf(render.KeyCatalogItemMissing), nil)}, nil
		}
		return nil, err
	}
	// Orders target the partner's offering only.
	if item.OwnerID != partner.ID {
		return nil, nil
	}

	e.sessions.Put(user.ID, session.AwaitingCurrency(itemID))
	return []Effect{reply(e.loc.Sprintf(render.KeyOrderCurrencyAsk), currencyKeyboard(e.loc))}, nil
}

// pickCurrency records the chosen currency when, and only when, the user
// is inside the order dialogue. Stale currency buttons are ignored.
func (e *Engine) pickCurrency(user directory.User, raw string) []Effect {
	sess := e.sessions.Get(user.ID)
	if sess.Kind != session.KindAwaitingCurrency {
		return nil
	}
	currency, err := order.ParseCurrency(raw)
	if err != nil {
		log.Printf("bot: dropping unknown currency %q from chat %s", raw, user.ChatID)
		return nil
	}

	e.sessions.Put(user.ID, session.AwaitingDeadline(sess.ItemID, currency))
	return []Effect{reply(e.loc.Sprintf(render.KeyOrderDeadlineAsk), nil)}
}

// placeOrder creates the pending order once the deadline arrives and
// hands the fulfiller the accept/reject decision.
func (e *Engine) placeOrder(ctx context.Context, user directory.User, sess session.Context, deadline string) ([]Effect, error) {
	e.sessions.Clear(user.ID)

	partner, err := e.findPartner(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrNoPair):
			return []Effect{reply(e.loc.Sprintf(render.KeyPartnerNone), nil)}, nil
		case errors.Is(err, errPartnerMissing):
			return []Effect{reply(e.loc.Sprintf(render.KeyPartnerMissing), nil)}, nil
		default:
			return nil, err
		}
	}

	item, err := e.stores.Catalog.GetItem(ctx, sess.ItemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{reply(e.loc.Sprintf(render.KeyCatalogItemMissing), nil)}, nil
		}
		return nil, err
	}
	if item.OwnerID != partner.ID {
		return []Effect{reply(e.loc.Sprintf(render.KeyCatalogItemMissing), nil)}, nil
	}

	o, err := order.CreateOrder(order.CreateOrderInput{
		RequesterID: user.ID,
		FulfillerID: partner.ID,
		ItemID:      item.ID,
		Currency:    sess.Currency,
		Deadline:    deadline,
	}, e.now, e.newID)
	if err != nil {
		return nil, nil
	}
	if err := e.stores.Orders.PutOrder(ctx, o); err != nil {
		return nil, err
	}

	prompt := e.loc.Sprintf(render.KeyOrderIncoming, item.Title, e.currencyLabel(o.Currency), o.Deadline)
	return []Effect{
		reply(e.loc.Sprintf(render.KeyOrderSent), nil),
		sendTo(partner.ChatID, prompt, decisionKeyboard(e.loc, o.ID)),
	}, nil
}

// acceptOrder moves a pending order to accepted. The compare-and-set in
// the store makes a second tap on the same button a no-op.
func (e *Engine) acceptOrder(ctx context.Context, user directory.User, orderID string) ([]Effect, error) {
	o, err := e.stores.Orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{editMessage(e.loc.Sprintf(render.KeyOrderNotFound), nil)}, nil
		}
		return nil, err
	}
	if o.FulfillerID != user.ID {
		return nil, nil
	}

	if err := e.stores.Orders.UpdateOrderStatus(ctx, orderID, order.StatusPending, order.StatusAccepted); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{editMessage(e.loc.Sprintf(render.KeyOrderNotFound), nil)}, nil
		}
		return nil, err
	}

	effects := []Effect{editMessage(e.loc.Sprintf(render.KeyOrderAcceptedEdit), completeKeyboard(e.loc, orderID))}
	if requester, err := e.stores.Users.GetUser(ctx, o.RequesterID); err == nil {
		notice := e.loc.Sprintf(render.KeyOrderAcceptedNotice, e.itemTitle(ctx, o.ItemID))
		effects = append(effects, sendTo(requester.ChatID, notice, nil))
	}
	return effects, nil
}

func (e *Engine) rejectOrder(ctx context.Context, user directory.User, orderID string) ([]Effect, error) {
	o, err := e.stores.Orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{editMessage(e.loc.Sprintf(render.KeyOrderNotFound), nil)}, nil
		}
		return nil, err
	}
	if o.FulfillerID != user.ID {
		return nil, nil
	}

	if err := e.stores.Orders.UpdateOrderStatus(ctx, orderID, order.StatusPending, order.StatusRejected); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{editMessage(e.loc.Sprintf(render.KeyOrderNotFound), nil)}, nil
		}
		return nil, err
	}

	effects := []Effect{editMessage(e.loc.Sprintf(render.KeyOrderRejectedEdit), nil)}
	if requester, err := e.stores.Users.GetUser(ctx, o.RequesterID); err == nil {
		notice := e.loc.Sprintf(render.KeyOrderRejectedNotice, e.itemTitle(ctx, o.ItemID))
		effects = append(effects, sendTo(requester.ChatID, notice, nil))
	}
	return effects, nil
}

// completeOrder finishes an accepted order. Kiss and hug orders credit
// the fulfiller exactly once; message orders put the requester into the
// message dialogue instead.
func (e *Engine) completeOrder(ctx context.Context, user directory.User, orderID string) ([]Effect, error) {
	o, err := e.stores.Orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{editMessage(e.loc.Sprintf(render.KeyOrderNotFound), nil)}, nil
		}
		return nil, err
	}
	if o.FulfillerID != user.ID {
		return nil, nil
	}

	if err := e.stores.Orders.UpdateOrderStatus(ctx, orderID, order.StatusAccepted, order.StatusCompleted); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{editMessage(e.loc.Sprintf(render.KeyOrderNotFound), nil)}, nil
		}
		return nil, err
	}

	effects := []Effect{editMessage(e.loc.Sprintf(render.KeyOrderCompletedEdit), nil)}

	requester, err := e.stores.Users.GetUser(ctx, o.RequesterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Printf("bot: order %s references missing requester %s", o.ID, o.RequesterID)
			requester = directory.User{}
		} else {
			return nil, err
		}
	}

	switch o.Currency {
	case order.CurrencyKiss, order.CurrencyHug:
		kissDelta, hugDelta := 0, 1
		if o.Currency == order.CurrencyKiss {
			kissDelta, hugDelta = 1, 0
		}
		if err := e.stores.Users.AddBalances(ctx, user.ID, kissDelta, hugDelta); err != nil {
			return nil, err
		}
		if requester.ChatID != "" {
			notice := e.loc.Sprintf(render.KeyOrderCreditedNotice, e.itemTitle(ctx, o.ItemID), e.currencyLabel(o.Currency))
			effects = append(effects, sendTo(requester.ChatID, notice, nil))
		}
	case order.CurrencyMessage:
		if requester.ChatID != "" {
			e.sessions.Put(requester.ID, session.AwaitingMessage(o.ID))
			effects = append(effects, sendTo(requester.ChatID, e.loc.Sprintf(render.KeyOrderMessageAsk), nil))
		}
	}
	return effects, nil
}

// attachOrderMessage records the requester's payment message exactly
// once and forwards it to the fulfiller.
func (e *Engine) attachOrderMessage(ctx context.Context, user directory.User, orderID, text string) ([]Effect, error) {
	e.sessions.Clear(user.ID)

	o, err := e.stores.Orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{reply(e.loc.Sprintf(render.KeyOrderNotFound), nil)}, nil
		}
		return nil, err
	}
	if o.RequesterID != user.ID {
		return nil, nil
	}

	if err := e.stores.Orders.AttachOrderMessage(ctx, orderID, text); err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrConflict) {
			return []Effect{reply(e.loc.Sprintf(render.KeyOrderNotFound), nil)}, nil
		}
		return nil, err
	}

	effects := []Effect{reply(e.loc.Sprintf(render.KeyOrderMessageSent), nil)}
	if fulfiller, err := e.stores.Users.GetUser(ctx, o.FulfillerID); err == nil {
		effects = append(effects, sendTo(fulfiller.ChatID, e.loc.Sprintf(render.KeyOrderMessageForward, text), nil))
	}
	return effects, nil
}

func (e *Engine) showBalance(user directory.User) []Effect {
	return []Effect{reply(e.loc.Sprintf(render.KeyBalance, user.KissBalance, user.HugBalance), nil)}
}

// showHistory lists the user's most recent orders in either role.
func (e *Engine) showHistory(ctx context.Context, user directory.User) ([]Effect, error) {
	orders, err := e.stores.Orders.ListOrdersByParticipant(ctx, user.ID, historyLimit)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []Effect{reply(e.loc.Sprintf(render.KeyHistoryEmpty), nil)}, nil
	}

	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		role := e.loc.Sprintf(render.KeyHistoryFromYou)
		if o.RequesterID == user.ID {
			role = e.loc.Sprintf(render.KeyHistoryByYou)
		}
		lines = append(lines, e.loc.Sprintf(render.KeyHistoryLine,
			role, e.itemTitle(ctx, o.ItemID), e.currencyLabel(o.Currency), o.Deadline, e.statusText(o.Status)))
	}
	return []Effect{reply(e.loc.Sprintf(render.KeyHistoryHeader, strings.Join(lines, "\n")), nil)}, nil
}

// itemTitle resolves an item title for display, tolerating deletion.
func (e *Engine) itemTitle(ctx context.Context, itemID string) string {
	item, err := e.stores.Catalog.GetItem(ctx, itemID)
	if err != nil {
		return e.loc.Sprintf(render.KeyHistoryLostItem)
	}
	return item.Title
}

func (e *Engine) currencyLabel(c order.Currency) string {
	switch c {
	case order.CurrencyKiss:
		return e.loc.Sprintf(render.KeyCurrencyKiss)
	case order.CurrencyHug:
		return e.loc.Sprintf(render.KeyCurrencyHug)
	case order.CurrencyMessage:
		return e.loc.Sprintf(render.KeyCurrencyMessage)
	default:
		return string(c)
	}
}

func (e *Engine) statusText(s order.Status) string {
	switch s {
	case order.StatusPending:
		return e.loc.Sprintf(render.KeyHistoryPending)
	case order.StatusAccepted:
		return e.loc.Sprintf(render.KeyHistoryAccepted)
	case order.StatusCompleted:
		return e.loc.Sprintf(render.KeyHistoryCompleted)
	case order.StatusRejected:
		return e.loc.Sprintf(render.KeyHistoryRejected)
	default:
		return order.StatusLabel(s)
	}
}
