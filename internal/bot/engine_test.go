package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/couplehq/couplet/internal/bot/render"
	"github.com/couplehq/couplet/internal/catalog"
	"github.com/couplehq/couplet/internal/directory"
	"github.com/couplehq/couplet/internal/invite"
	"github.com/couplehq/couplet/internal/order"
	"github.com/couplehq/couplet/internal/session"
	"github.com/couplehq/couplet/internal/storage"
)

// memStores is an in-memory implementation of every store contract,
// mirroring the conditional-write semantics of the sqlite store.
type memStores struct {
	mu      sync.Mutex
	users   map[string]directory.User
	pairs   map[string]directory.Pair
	invites map[string]invite.Invite
	items   []catalog.Item
	orders  []order.Order
}

func newMemStores() *memStores {
	return &memStores{
		users:   make(map[string]directory.User),
		pairs:   make(map[string]directory.Pair),
		invites: make(map[string]invite.Invite),
	}
}

func (m *memStores) PutUser(_ context.Context, user directory.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.ChatID == user.ChatID || existing.ID == user.ID {
			return storage.ErrConflict
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memStores) GetUser(_ context.Context, userID string) (directory.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return directory.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (m *memStores) GetUserByChatID(_ context.Context, chatID string) (directory.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ChatID == chatID {
			return user, nil
		}
	}
	return directory.User{}, storage.ErrNotFound
}

func (m *memStores) AddBalances(_ context.Context, userID string, kissDelta, hugDelta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	user.KissBalance += kissDelta
	user.HugBalance += hugDelta
	m.users[userID] = user
	return nil
}

func (m *memStores) CreatePair(_ context.Context, pair directory.Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	userA, okA := m.users[pair.UserAID]
	userB, okB := m.users[pair.UserBID]
	if !okA || !okB {
		return storage.ErrNotFound
	}
	if userA.Paired() || userB.Paired() {
		return storage.ErrConflict
	}
	userA.PairID = pair.ID
	userB.PairID = pair.ID
	m.users[userA.ID] = userA
	m.users[userB.ID] = userB
	m.pairs[pair.ID] = pair
	return nil
}

func (m *memStores) GetPair(_ context.Context, pairID string) (directory.Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pair, ok := m.pairs[pairID]
	if !ok {
		return directory.Pair{}, storage.ErrNotFound
	}
	return pair, nil
}

func (m *memStores) DeletePair(_ context.Context, pairID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pair, ok := m.pairs[pairID]
	if !ok {
		return storage.ErrNotFound
	}
	for _, memberID := range []string{pair.UserAID, pair.UserBID} {
		if user, ok := m.users[memberID]; ok {
			user.PairID = ""
			m.users[memberID] = user
		}
	}
	delete(m.pairs, pairID)
	return nil
}

func (m *memStores) PutInvite(_ context.Context, inv invite.Invite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invites[inv.Token]; ok {
		return storage.ErrConflict
	}
	m.invites[inv.Token] = inv
	return nil
}

func (m *memStores) GetInvite(_ context.Context, token string) (invite.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[token]
	if !ok {
		return invite.Invite{}, storage.ErrNotFound
	}
	return inv, nil
}

func (m *memStores) MarkInviteUsed(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[token]
	if !ok || inv.Used {
		return storage.ErrNotFound
	}
	inv.Used = true
	m.invites[token] = inv
	return nil
}

func (m *memStores) PutItem(_ context.Context, item catalog.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return nil
}

func (m *memStores) GetItem(_ context.Context, itemID string) (catalog.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return catalog.Item{}, storage.ErrNotFound
}

func (m *memStores) RenameItem(_ context.Context, itemID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.items {
		if item.ID == itemID {
			m.items[i].Title = title
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStores) DeleteItem(_ context.Context, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.items {
		if item.ID == itemID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStores) ListItemsByOwner(_ context.Context, ownerID string) ([]catalog.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []catalog.Item
	for _, item := range m.items {
		if item.OwnerID == ownerID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *memStores) PutOrder(_ context.Context, o order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, o)
	return nil
}

func (m *memStores) GetOrder(_ context.Context, orderID string) (order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return order.Order{}, storage.ErrNotFound
}

func (m *memStores) UpdateOrderStatus(_ context.Context, orderID string, from, to order.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.orders {
		if o.ID == orderID {
			if o.Status != from {
				return storage.ErrNotFound
			}
			m.orders[i].Status = to
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStores) AttachOrderMessage(_ context.Context, orderID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.orders {
		if o.ID == orderID {
			if o.Currency != order.CurrencyMessage || o.Status != order.StatusCompleted || o.Message != "" {
				return storage.ErrConflict
			}
			m.orders[i].Message = text
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStores) ListOrdersByParticipant(_ context.Context, userID string, limit int) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []order.Order
	for i := len(m.orders) - 1; i >= 0 && len(orders) < limit; i-- {
		o := m.orders[i]
		if o.RequesterID == userID || o.FulfillerID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func newTestEngine(t *testing.T) (*Engine, *memStores, *session.Store) {
	t.Helper()

	stores := newMemStores()
	sessions := session.NewStore()

	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	ids := 0
	tokens := 0

	engine := NewEngine(Config{
		Stores: Stores{
			Users:   stores,
			Pairs:   stores,
			Invites: stores,
			Catalog: stores,
			Orders:  stores,
		},
		Localizer:      render.NewPrinter("en"),
		Sessions:       sessions,
		InviteLinkBase: "https://t.me/couplet_test_bot",
		Now:            func() time.Time { return base },
		IDGenerator: func() (string, error) {
			ids++
			return fmt.Sprintf("id-%02d", ids), nil
		},
		TokenGenerator: func() string {
			tokens++
			return fmt.Sprintf("token-%02d", tokens)
		},
	})
	return engine, stores, sessions
}

func handle(t *testing.T, e *Engine, ev Event) []Effect {
	t.Helper()
	effects, err := e.HandleEvent(context.Background(), ev)
	if err != nil {
		t.Fatalf("HandleEvent(%v): %v", ev, err)
	}
	return effects
}

func label(key string) string {
	return render.NewPrinter("en").Sprintf(key)
}

// pairUp registers two users and links them through an invite.
func pairUp(t *testing.T, e *Engine, chatA, chatB string) (directory.User, directory.User) {
	t.Helper()

	handle(t, e, Event{Kind: EventStart, ChatID: chatA, DisplayName: "Alice"})
	effects := handle(t, e, Event{Kind: EventText, ChatID: chatA, Payload: label(render.KeyButtonInvitePartner)})
	if len(effects) != 1 {
		t.Fatalf("expected 1 invite effect, got %d", len(effects))
	}
	token := extractToken(t, effects[0].Text)

	handle(t, e, Event{Kind: EventStart, ChatID: chatB, DisplayName: "Bob", Payload: InviteStartPayload(token)})

	userA, err := e.stores.Users.GetUserByChatID(context.Background(), chatA)
	if err != nil {
		t.Fatalf("GetUserByChatID(%s): %v", chatA, err)
	}
	userB, err := e.stores.Users.GetUserByChatID(context.Background(), chatB)
	if err != nil {
		t.Fatalf("GetUserByChatID(%s): %v", chatB, err)
	}
	if !userA.Paired() || userA.PairID != userB.PairID {
		t.Fatalf("expected users paired together, got %q and %q", userA.PairID, userB.PairID)
	}
	return userA, userB
}

func extractToken(t *testing.T, inviteText string) string {
	t.Helper()
	idx := strings.Index(inviteText, "?start=invite_")
	if idx < 0 {
		t.Fatalf("no invite link in %q", inviteText)
	}
	return inviteText[idx+len("?start=invite_"):]
}

// findEffect returns the first effect of the given kind.
func findEffect(t *testing.T, effects []Effect, kind EffectKind) Effect {
	t.Helper()
	for _, effect := range effects {
		if effect.Kind == kind {
			return effect
		}
	}
	t.Fatalf("no effect of kind %d in %v", kind, effects)
	return Effect{}
}

// firstAction returns the action id of the first inline button whose
// label contains substr.
func firstAction(t *testing.T, effects []Effect, substr string) string {
	t.Helper()
	for _, effect := range effects {
		if effect.Keyboard == nil {
			continue
		}
		for _, row := range effect.Keyboard.Rows {
			for _, button := range row {
				if button.Action != "" && strings.Contains(button.Label, substr) {
					return button.Action
				}
			}
		}
	}
	t.Fatalf("no inline button labelled %q in %v", substr, effects)
	return ""
}

func TestStartRegistersUserAndShowsWelcome(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)

	effects := handle(t, engine, Event{Kind: EventStart, ChatID: "chat-a", DisplayName: "Alice"})
	if len(effects) != 1 || effects[0].Kind != EffectReply {
		t.Fatalf("expected a single reply, got %v", effects)
	}
	if effects[0].Keyboard == nil || len(effects[0].Keyboard.Rows) == 0 {
		t.Fatal("expected the main keyboard on the welcome message")
	}

	user, err := stores.GetUserByChatID(context.Background(), "chat-a")
	if err != nil {
		t.Fatalf("user was not registered: %v", err)
	}
	if user.DisplayName != "Alice" {
		t.Fatalf("expected display name Alice, got %q", user.DisplayName)
	}
}

func TestStartIsIdempotentPerChat(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)

	handle(t, engine, Event{Kind: EventStart, ChatID: "chat-a", DisplayName: "Alice"})
	handle(t, engine, Event{Kind: EventStart, ChatID: "chat-a", DisplayName: "Alice"})

	if got := len(stores.users); got != 1 {
		t.Fatalf("expected 1 user, got %d", got)
	}
}

func TestInvitePairsCreatorAndRedeemer(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)
	pairUp(t, engine, "chat-a", "chat-b")

	inv, err := stores.GetInvite(context.Background(), "token-01")
	if err != nil {
		t.Fatalf("GetInvite: %v", err)
	}
	if !inv.Used {
		t.Fatal("expected invite marked used after redemption")
	}
}

func TestInviteSelfRedemptionRejected(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)

	handle(t, engine, Event{Kind: EventStart, ChatID: "chat-a", DisplayName: "Alice"})
	effects := handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: label(render.KeyButtonInvitePartner)})
	token := extractToken(t, effects[0].Text)

	effects = handle(t, engine, Event{Kind: EventStart, ChatID: "chat-a", Payload: InviteStartPayload(token)})
	if got := findEffect(t, effects, EffectReply).Text; got != label(render.KeyInviteSelf) {
		t.Fatalf("expected self-redemption refusal, got %q", got)
	}

	user, _ := stores.GetUserByChatID(context.Background(), "chat-a")
	if user.Paired() {
		t.Fatal("self redemption must not create a pair")
	}
	inv, _ := stores.GetInvite(context.Background(), token)
	if inv.Used {
		t.Fatal("self redemption must not burn the token")
	}
}

func TestInviteSecondRedemptionRejected(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)
	pairUp(t, engine, "chat-a", "chat-b")

	effects := handle(t, engine, Event{Kind: EventStart, ChatID: "chat-c", DisplayName: "Cara", Payload: InviteStartPayload("token-01")})
	if got := findEffect(t, effects, EffectReply).Text; got != label(render.KeyInviteInvalid) {
		t.Fatalf("expected invalid-invite message, got %q", got)
	}

	userC, _ := stores.GetUserByChatID(context.Background(), "chat-c")
	if userC.Paired() {
		t.Fatal("used token must not pair a third user")
	}
}

func TestInviteRedeemerAlreadyPairedNotifiesCreator(t *testing.T) {
	t.Parallel()

	engine, _, _ := newTestEngine(t)
	pairUp(t, engine, "chat-a", "chat-b")

	// A third user issues a token, and the already-paired Bob opens it.
	handle(t, engine, Event{Kind: EventStart, ChatID: "chat-c", DisplayName: "Cara"})
	effects := handle(t, engine, Event{Kind: EventText, ChatID: "chat-c", Payload: label(render.KeyButtonInvitePartner)})
	token := extractToken(t, effects[0].Text)

	effects = handle(t, engine, Event{Kind: EventStart, ChatID: "chat-b", Payload: InviteStartPayload(token)})
	if got := findEffect(t, effects, EffectReply).Text; got != label(render.KeyAlreadyPaired) {
		t.Fatalf("expected already-paired refusal, got %q", got)
	}
	if notice := findEffect(t, effects, EffectSend); notice.ChatID != "chat-c" {
		t.Fatalf("expected creator notice to chat-c, got %q", notice.ChatID)
	}
}

func TestCatalogAuthoringNotifiesPartner(t *testing.T) {
	t.Parallel()

	engine, stores, sessions := newTestEngine(t)
	userA, _ := pairUp(t, engine, "chat-a", "chat-b")

	handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: label(render.KeyButtonCreateCatalog)})
	if sessions.Get(userA.ID).Kind != session.KindAuthoringCatalog {
		t.Fatal("expected authoring context after create-catalog")
	}

	handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: "back massage"})
	handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: "breakfast in bed"})
	effects := handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: label(render.KeyButtonDone)})

	list := findEffect(t, effects, EffectReply)
	if !strings.Contains(list.Text, "back massage") || !strings.Contains(list.Text, "breakfast in bed") {
		t.Fatalf("expected both titles in the list, got %q", list.Text)
	}
	notice := findEffect(t, effects, EffectSend)
	if notice.ChatID != "chat-b" || !strings.Contains(notice.Text, "back massage") {
		t.Fatalf("expected partner notice with titles, got %v", notice)
	}

	if !sessions.Get(userA.ID).None() {
		t.Fatal("expected authoring context cleared after done")
	}
	items, _ := stores.ListItemsByOwner(context.Background(), userA.ID)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestKeyboardLabelsInterruptDialogue(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)
	userA, _ := pairUp(t, engine, "chat-a", "chat-b")

	handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: label(render.KeyButtonCreateCatalog)})
	effects := handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: label(render.KeyButtonBalance)})

	if got := findEffect(t, effects, EffectReply).Text; !strings.Contains(got, "0") {
		t.Fatalf("expected balance reply, got %q", got)
	}
	items, _ := stores.ListItemsByOwner(context.Background(), userA.ID)
	if len(items) != 0 {
		t.Fatal("a keyboard label must not be stored as a catalog item")
	}
}

func TestRenameAndDeleteCatalogItem(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)
	userA, _ := pairUp(t, engine, "chat-a", "chat-b")

	handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: label(render.KeyButtonCreateCatalog)})
	handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: "back massage"})
	handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: label(render.KeyButtonDone)})

	effects := handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: label(render.KeyButtonMyCatalog)})
	editAction := firstAction(t, effects, "back massage")

	handle(t, engine, Event{Kind: EventAction, ChatID: "chat-a", Payload: editAction})
	handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: "long back massage"})

	items, _ := stores.ListItemsByOwner(context.Background(), userA.ID)
	if len(items) != 1 || items[0].Title != "long back massage" {
		t.Fatalf("expected renamed item, got %v", items)
	}

	effects = handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: label(render.KeyButtonMyCatalog)})
	deleteAction := firstAction(t, effects, label(render.KeyButtonDeleteItem))
	handle(t, engine, Event{Kind: EventAction, ChatID: "chat-a", Payload: deleteAction})

	items, _ = stores.ListItemsByOwner(context.Background(), userA.ID)
	if len(items) != 0 {
		t.Fatalf("expected empty catalog after delete, got %v", items)
	}
}

func TestForeignItemActionsIgnored(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)
	_, userB := pairUp(t, engine, "chat-a", "chat-b")

	handle(t, engine, Event{Kind: EventText, ChatID: "chat-b", Payload: label(render.KeyButtonCreateCatalog)})
	handle(t, engine, Event{Kind: EventText, ChatID: "chat-b", Payload: "slow dance"})
	handle(t, engine, Event{Kind: EventText, ChatID: "chat-b", Payload: label(render.KeyButtonDone)})

	items, _ := stores.ListItemsByOwner(context.Background(), userB.ID)
	effects := handle(t, engine, Event{Kind: EventAction, ChatID: "chat-a", Payload: actionID(verbDelete, items[0].ID)})
	if len(effects) != 0 {
		t.Fatalf("expected silent drop of foreign delete, got %v", effects)
	}

	items, _ = stores.ListItemsByOwner(context.Background(), userB.ID)
	if len(items) != 1 {
		t.Fatal("foreign delete must not remove the item")
	}
}

// seedOrderFlow walks Alice through ordering Bob's only favor and
// returns the created order id.
func seedOrderFlow(t *testing.T, engine *Engine, currency order.Currency) string {
	t.Helper()

	pairUp(t, engine, "chat-a", "chat-b")

	handle(t, engine, Event{Kind: EventText, ChatID: "chat-b", Payload: label(render.KeyButtonCreateCatalog)})
	handle(t, engine, Event{Kind: EventText, ChatID: "chat-b", Payload: "slow dance"})
	handle(t, engine, Event{Kind: EventText, ChatID: "chat-b", Payload: label(render.KeyButtonDone)})

	effects := handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: label(render.KeyButtonPartnerCatalog)})
	orderAction := firstAction(t, effects, "slow dance")

	handle(t, engine, Event{Kind: EventAction, ChatID: "chat-a", Payload: orderAction})
	handle(t, engine, Event{Kind: EventAction, ChatID: "chat-a", Payload: actionID(verbCurrency, string(currency))})
	effects = handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: "tonight"})

	prompt := findEffect(t, effects, EffectSend)
	if prompt.ChatID != "chat-b" {
		t.Fatalf("expected fulfiller prompt to chat-b, got %q", prompt.ChatID)
	}
	accept := ""
	for _, row := range prompt.Keyboard.Rows {
		for _, button := range row {
			if strings.HasPrefix(button.Action, verbAccept+"_") {
				accept = strings.TrimPrefix(button.Action, verbAccept+"_")
			}
		}
	}
	if accept == "" {
		t.Fatalf("no accept button on fulfiller prompt: %v", prompt.Keyboard)
	}
	return accept
}

func TestOrderFlowCreatesPendingOrder(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)
	orderID := seedOrderFlow(t, engine, order.CurrencyKiss)

	o, err := stores.GetOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if o.Status != order.StatusPending || o.Currency != order.CurrencyKiss || o.Deadline != "tonight" {
		t.Fatalf("unexpected order %+v", o)
	}
}

func TestAcceptOrderIsIdempotent(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)
	orderID := seedOrderFlow(t, engine, order.CurrencyKiss)

	effects := handle(t, engine, Event{Kind: EventAction, ChatID: "chat-b", Payload: actionID(verbAccept, orderID)})
	findEffect(t, effects, EffectEditMessage)
	if notice := findEffect(t, effects, EffectSend); notice.ChatID != "chat-a" {
		t.Fatalf("expected requester notice, got %v", notice)
	}

	// Second tap: the order already left pending, so only a refusal edit.
	effects = handle(t, engine, Event{Kind: EventAction, ChatID: "chat-b", Payload: actionID(verbAccept, orderID)})
	if len(effects) != 1 || effects[0].Text != label(render.KeyOrderNotFound) {
		t.Fatalf("expected single not-found edit, got %v", effects)
	}

	o, _ := stores.GetOrder(context.Background(), orderID)
	if o.Status != order.StatusAccepted {
		t.Fatalf("expected accepted, got %v", o.Status)
	}
}

func TestRejectOrderNotifiesRequester(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)
	orderID := seedOrderFlow(t, engine, order.CurrencyHug)

	effects := handle(t, engine, Event{Kind: EventAction, ChatID: "chat-b", Payload: actionID(verbReject, orderID)})
	if notice := findEffect(t, effects, EffectSend); notice.ChatID != "chat-a" {
		t.Fatalf("expected requester notice, got %v", notice)
	}

	o, _ := stores.GetOrder(context.Background(), orderID)
	if o.Status != order.StatusRejected {
		t.Fatalf("expected rejected, got %v", o.Status)
	}
}

func TestCompleteCreditsFulfillerExactlyOnce(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)
	orderID := seedOrderFlow(t, engine, order.CurrencyKiss)

	handle(t, engine, Event{Kind: EventAction, ChatID: "chat-b", Payload: actionID(verbAccept, orderID)})
	handle(t, engine, Event{Kind: EventAction, ChatID: "chat-b", Payload: actionID(verbComplete, orderID)})
	// Replayed tap must not credit twice.
	handle(t, engine, Event{Kind: EventAction, ChatID: "chat-b", Payload: actionID(verbComplete, orderID)})

	fulfiller, _ := stores.GetUserByChatID(context.Background(), "chat-b")
	if fulfiller.KissBalance != 1 || fulfiller.HugBalance != 0 {
		t.Fatalf("expected exactly one kiss credit, got %d/%d", fulfiller.KissBalance, fulfiller.HugBalance)
	}
}

func TestCompleteRequiresAcceptedOrder(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)
	orderID := seedOrderFlow(t, engine, order.CurrencyKiss)

	effects := handle(t, engine, Event{Kind: EventAction, ChatID: "chat-b", Payload: actionID(verbComplete, orderID)})
	if len(effects) != 1 || effects[0].Text != label(render.KeyOrderNotFound) {
		t.Fatalf("expected refusal for pending order, got %v", effects)
	}

	o, _ := stores.GetOrder(context.Background(), orderID)
	if o.Status != order.StatusPending {
		t.Fatalf("expected order left pending, got %v", o.Status)
	}
}

func TestMessageCurrencyFlow(t *testing.T) {
	t.Parallel()

	engine, stores, sessions := newTestEngine(t)
	orderID := seedOrderFlow(t, engine, order.CurrencyMessage)

	handle(t, engine, Event{Kind: EventAction, ChatID: "chat-b", Payload: actionID(verbAccept, orderID)})
	effects := handle(t, engine, Event{Kind: EventAction, ChatID: "chat-b", Payload: actionID(verbComplete, orderID)})

	ask := findEffect(t, effects, EffectSend)
	if ask.ChatID != "chat-a" || ask.Text != label(render.KeyOrderMessageAsk) {
		t.Fatalf("expected message prompt to requester, got %v", ask)
	}

	userA, _ := stores.GetUserByChatID(context.Background(), "chat-a")
	if sessions.Get(userA.ID).Kind != session.KindAwaitingMessage {
		t.Fatal("expected requester in awaiting-message context")
	}

	effects = handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: "you are the best"})
	forward := findEffect(t, effects, EffectSend)
	if forward.ChatID != "chat-b" || !strings.Contains(forward.Text, "you are the best") {
		t.Fatalf("expected message forwarded to fulfiller, got %v", forward)
	}

	o, _ := stores.GetOrder(context.Background(), orderID)
	if o.Message != "you are the best" {
		t.Fatalf("expected message persisted, got %q", o.Message)
	}

	// No currency credit for message orders.
	fulfiller, _ := stores.GetUserByChatID(context.Background(), "chat-b")
	if fulfiller.KissBalance != 0 || fulfiller.HugBalance != 0 {
		t.Fatal("message orders must not touch balances")
	}

	// The dialogue closed; further text is not forwarded again.
	effects = handle(t, engine, Event{Kind: EventText, ChatID: "chat-a", Payload: "one more thing"})
	if len(effects) != 0 {
		t.Fatalf("expected no effects after message delivered, got %v", effects)
	}
}

func TestResetDissolvesPairAndNotifiesPartner(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)
	userA, userB := pairUp(t, engine, "chat-a", "chat-b")

	effects := handle(t, engine, Event{Kind: EventCommand, ChatID: "chat-a", Payload: "reset"})
	if findEffect(t, effects, EffectReply).Keyboard == nil {
		t.Fatal("expected confirmation keyboard")
	}

	effects = handle(t, engine, Event{Kind: EventAction, ChatID: "chat-a", Payload: actionConfirmReset})
	if got := findEffect(t, effects, EffectEditMessage).Text; got != label(render.KeyResetDone) {
		t.Fatalf("expected reset confirmation, got %q", got)
	}
	if notice := findEffect(t, effects, EffectSend); notice.ChatID != "chat-b" {
		t.Fatalf("expected partner notice to chat-b, got %q", notice.ChatID)
	}

	userA, _ = stores.GetUser(context.Background(), userA.ID)
	userB, _ = stores.GetUser(context.Background(), userB.ID)
	if userA.Paired() || userB.Paired() {
		t.Fatal("expected both users unpaired after reset")
	}

	// A stale confirm tap after the pair is gone.
	effects = handle(t, engine, Event{Kind: EventAction, ChatID: "chat-a", Payload: actionConfirmReset})
	if got := findEffect(t, effects, EffectEditMessage).Text; got != label(render.KeyResetNone) {
		t.Fatalf("expected no-pair message, got %q", got)
	}
}

func TestResetCancelKeepsPair(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)
	userA, _ := pairUp(t, engine, "chat-a", "chat-b")

	handle(t, engine, Event{Kind: EventCommand, ChatID: "chat-a", Payload: "reset"})
	effects := handle(t, engine, Event{Kind: EventAction, ChatID: "chat-a", Payload: actionCancelReset})
	if got := findEffect(t, effects, EffectEditMessage).Text; got != label(render.KeyResetCancelled) {
		t.Fatalf("expected cancel confirmation, got %q", got)
	}

	userA, _ = stores.GetUser(context.Background(), userA.ID)
	if !userA.Paired() {
		t.Fatal("cancel must keep the pair")
	}
}

func TestHistoryShowsRecentOrders(t *testing.T) {
	t.Parallel()

	engine, _, _ := newTestEngine(t)
	orderID := seedOrderFlow(t, engine, order.CurrencyKiss)
	handle(t, engine, Event{Kind: EventAction, ChatID: "chat-b", Payload: actionID(verbAccept, orderID)})

	effects := handle(t, engine, Event{Kind: EventCommand, ChatID: "chat-a", Payload: "history"})
	text := findEffect(t, effects, EffectReply).Text
	if !strings.Contains(text, "slow dance") || !strings.Contains(text, "tonight") {
		t.Fatalf("expected item and deadline in history, got %q", text)
	}

	effects = handle(t, engine, Event{Kind: EventCommand, ChatID: "chat-c", Payload: "history"})
	if got := findEffect(t, effects, EffectReply).Text; got != label(render.KeyHistoryEmpty) {
		t.Fatalf("expected empty history, got %q", got)
	}
}

func TestMalformedActionsAreDropped(t *testing.T) {
	t.Parallel()

	engine, _, _ := newTestEngine(t)
	handle(t, engine, Event{Kind: EventStart, ChatID: "chat-a", DisplayName: "Alice"})

	for _, raw := range []string{"", "nonsense", "delete_", "zap_123"} {
		if effects := handle(t, engine, Event{Kind: EventAction, ChatID: "chat-a", Payload: raw}); len(effects) != 0 {
			t.Fatalf("expected %q dropped, got %v", raw, effects)
		}
	}
}

func TestStaleCurrencyButtonIgnored(t *testing.T) {
	t.Parallel()

	engine, stores, _ := newTestEngine(t)
	pairUp(t, engine, "chat-a", "chat-b")

	effects := handle(t, engine, Event{Kind: EventAction, ChatID: "chat-a", Payload: actionID(verbCurrency, "kiss")})
	if len(effects) != 0 {
		t.Fatalf("expected stale currency tap dropped, got %v", effects)
	}
	if len(stores.orders) != 0 {
		t.Fatal("stale currency tap must not create orders")
	}
}
