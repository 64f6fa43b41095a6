// Package bot turns inbound conversation events into outbound effects.
//
// The engine owns the dialogue logic: it resolves the acting user,
// serializes their events, consults the session context, and emits
// delivery instructions without talking to any chat transport itself.
package bot

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/couplehq/couplet/internal/bot/render"
	"github.com/couplehq/couplet/internal/directory"
	"github.com/couplehq/couplet/internal/invite"
	"github.com/couplehq/couplet/internal/platform/id"
	"github.com/couplehq/couplet/internal/session"
	"github.com/couplehq/couplet/internal/storage"
)

// historyLimit caps how many orders the history view shows.
const historyLimit = 10

// errPartnerMissing reports a paired user whose partner record could not
// be resolved, which is a data anomaly rather than a normal unpaired state.
var errPartnerMissing = errors.New("partner record missing")

// Stores bundles the persistence contracts the engine depends on.
type Stores struct {
	Users   storage.UserStore
	Pairs   storage.PairStore
	Invites storage.InviteStore
	Catalog storage.CatalogStore
	Orders  storage.OrderStore
}

// Config carries the engine dependencies. Zero fields other than Stores
// and Localizer fall back to production defaults.
type Config struct {
	Stores    Stores
	Localizer render.Localizer
	Sessions  *session.Store
	// InviteLinkBase is the public bot URL invite links are built on,
	// e.g. "https://t.me/couplet_bot".
	InviteLinkBase string
	Now            func() time.Time
	IDGenerator    func() (string, error)
	TokenGenerator func() string
}

// Engine is the conversation state machine.
type Engine struct {
	stores         Stores
	loc            render.Localizer
	sessions       *session.Store
	inviteLinkBase string
	now            func() time.Time
	newID          func() (string, error)
	newToken       func() string
	tracer         trace.Tracer
}

// NewEngine creates an engine from cfg.
func NewEngine(cfg Config) *Engine {
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewStore()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = id.NewID
	}
	if cfg.TokenGenerator == nil {
		cfg.TokenGenerator = invite.NewToken
	}
	return &Engine{
		stores:         cfg.Stores,
		loc:            cfg.Localizer,
		sessions:       cfg.Sessions,
		inviteLinkBase: strings.TrimRight(cfg.InviteLinkBase, "/"),
		now:            cfg.Now,
		newID:          cfg.IDGenerator,
		newToken:       cfg.TokenGenerator,
		tracer:         otel.Tracer("couplet/bot"),
	}
}

// HandleEvent processes one inbound event and returns the effects to
// deliver. Events from the same chat never interleave. The error return
// reports infrastructure failures only; user mistakes surface as effects.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) ([]Effect, error) {
	if e == nil || ev.ChatID == "" {
		return nil, nil
	}

	ctx, span := e.tracer.Start(ctx, "bot.HandleEvent", trace.WithAttributes(
		attribute.Int("event.kind", int(ev.Kind)),
		attribute.String("event.chat_id", ev.ChatID),
	))
	defer span.End()

	unlock := e.sessions.Lock(ev.ChatID)
	defer unlock()

	user, err := e.ensureUser(ctx, ev)
	if err != nil {
		return nil, err
	}

	switch ev.Kind {
	case EventStart:
		return e.handleStart(ctx, user, ev.Payload)
	case EventCommand:
		return e.handleCommand(ctx, user, ev.Payload)
	case EventText:
		return e.handleText(ctx, user, ev.Payload)
	case EventAction:
		return e.handleAction(ctx, user, ev.Payload)
	default:
		return nil, nil
	}
}

func (e *Engine) handleCommand(ctx context.Context, user directory.User, command string) ([]Effect, error) {
	switch command {
	case "start":
		return e.handleStart(ctx, user, "")
	case "reset":
		return e.promptReset(user), nil
	case "balance":
		return e.showBalance(user), nil
	case "history":
		return e.showHistory(ctx, user)
	default:
		return nil, nil
	}
}

func (e *Engine) handleText(ctx context.Context, user directory.User, text string) ([]Effect, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	// Keyboard labels win over any in-flight dialogue, so a user can
	// always navigate away without finishing a flow.
	switch text {
	case e.loc.Sprintf(render.KeyButtonCreateCatalog):
		return e.startCatalogAuthoring(user), nil
	case e.loc.Sprintf(render.KeyButtonMyCatalog):
		return e.showOwnCatalog(ctx, user)
	case e.loc.Sprintf(render.KeyButtonPartnerCatalog):
		return e.showPartnerCatalog(ctx, user)
	case e.loc.Sprintf(render.KeyButtonInvitePartner):
		return e.createInvite(ctx, user)
	case e.loc.Sprintf(render.KeyButtonBalance):
		return e.showBalance(user), nil
	case e.loc.Sprintf(render.KeyButtonHistory):
		return e.showHistory(ctx, user)
	}

	sess := e.sessions.Get(user.ID)
	switch sess.Kind {
	case session.KindAuthoringCatalog:
		if text == e.loc.Sprintf(render.KeyButtonDone) {
			return e.finishCatalogAuthoring(ctx, user)
		}
		return e.addCatalogItem(ctx, user, text)
	case session.KindEditingItem:
		return e.renameCatalogItem(ctx, user, sess.ItemID, text)
	case session.KindAwaitingDeadline:
		return e.placeOrder(ctx, user, sess, text)
	case session.KindAwaitingMessage:
		return e.attachOrderMessage(ctx, user, sess.OrderID, text)
	default:
		// Free text outside any dialogue is ignored.
		return nil, nil
	}
}

func (e *Engine) handleAction(ctx context.Context, user directory.User, raw string) ([]Effect, error) {
	action, ok := ParseAction(raw)
	if !ok {
		log.Printf("bot: dropping malformed action %q from chat %s", raw, user.ChatID)
		return nil, nil
	}

	switch action.Kind {
	case ActionDeleteItem:
		return e.deleteCatalogItem(ctx, user, action.ID)
	case ActionEditItem:
		return e.startItemRename(ctx, user, action.ID)
	case ActionOrderItem:
		return e.startOrder(ctx, user, action.ID)
	case ActionPickCurrency:
		return e.pickCurrency(user, action.ID), nil
	case ActionAcceptOrder:
		return e.acceptOrder(ctx, user, action.ID)
	case ActionRejectOrder:
		return e.rejectOrder(ctx, user, action.ID)
	case ActionCompleteOrder:
		return e.completeOrder(ctx, user, action.ID)
	case ActionConfirmReset:
		return e.confirmReset(ctx, user)
	case ActionCancelReset:
		return e.cancelReset(user), nil
	default:
		return nil, nil
	}
}

// ensureUser resolves the acting user, registering them on first contact.
func (e *Engine) ensureUser(ctx context.Context, ev Event) (directory.User, error) {
	user, err := e.stores.Users.GetUserByChatID(ctx, ev.ChatID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return directory.User{}, err
	}

	user, err = directory.CreateUser(directory.CreateUserInput{
		ChatID:      ev.ChatID,
		DisplayName: ev.DisplayName,
	}, e.now, e.newID)
	if err != nil {
		return directory.User{}, err
	}
	if err := e.stores.Users.PutUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return e.stores.Users.GetUserByChatID(ctx, ev.ChatID)
		}
		return directory.User{}, err
	}
	return user, nil
}

// findPartner resolves the other member of the user's pair. It returns
// directory.ErrNoPair for unpaired users and errPartnerMissing when the
// pair reference points at records that no longer resolve.
func (e *Engine) findPartner(ctx context.Context, user directory.User) (directory.User, error) {
	if !user.Paired() {
		return directory.User{}, directory.ErrNoPair
	}

	pair, err := e.stores.Pairs.GetPair(ctx, user.PairID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Printf("bot: pair %s referenced by user %s is missing", user.PairID, user.ID)
			return directory.User{}, errPartnerMissing
		}
		return directory.User{}, err
	}

	partnerID, ok := pair.OtherMember(user.ID)
	if !ok {
		log.Printf("bot: user %s is not a member of pair %s", user.ID, pair.ID)
		return directory.User{}, errPartnerMissing
	}

	partner, err := e.stores.Users.GetUser(ctx, partnerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Printf("bot: partner %s of user %s is missing", partnerID, user.ID)
			return directory.User{}, errPartnerMissing
		}
		return directory.User{}, err
	}
	return partner, nil
}
