package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/couplehq/couplet/internal/bot/render"
	"github.com/couplehq/couplet/internal/catalog"
	"github.com/couplehq/couplet/internal/directory"
	"github.com/couplehq/couplet/internal/session"
	"github.com/couplehq/couplet/internal/storage"
)

func (e *Engine) startCatalogAuthoring(user directory.User) []Effect {
	e.sessions.Put(user.ID, session.AuthoringCatalog())
	return []Effect{reply(e.loc.Sprintf(render.KeyCatalogAuthorStart), doneKeyboard(e.loc))}
}

// addCatalogItem appends one favor and keeps the authoring dialogue open.
func (e *Engine) addCatalogItem(ctx context.Context, user directory.User, title string) ([]Effect, error) {
	item, err := catalog.CreateItem(catalog.CreateItemInput{OwnerID: user.ID, Title: title}, e.now, e.newID)
	if err != nil {
		return nil, nil
	}
	if err := e.stores.Catalog.PutItem(ctx, item); err != nil {
		return nil, err
	}
	return []Effect{reply(e.loc.Sprintf(render.KeyCatalogItemAdded, item.Title), doneKeyboard(e.loc))}, nil
}

// finishCatalogAuthoring closes the dialogue, shows the result, and lets
// the partner know the offering changed.
func (e *Engine) finishCatalogAuthoring(ctx context.Context, user directory.User) ([]Effect, error) {
	e.sessions.Clear(user.ID)

	items, err := e.stores.Catalog.ListItemsByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	var effects []Effect
	if len(items) == 0 {
		effects = append(effects, reply(e.loc.Sprintf(render.KeyCatalogEmpty), mainKeyboard(e.loc)))
	} else {
		effects = append(effects, reply(e.loc.Sprintf(render.KeyCatalogList, itemLines(items)), mainKeyboard(e.loc)))
	}

	partner, err := e.findPartner(ctx, user)
	switch {
	case err == nil && len(items) > 0:
		effects = append(effects, sendTo(partner.ChatID, e.loc.Sprintf(render.KeyCatalogChanged, itemLines(items)), nil))
	case err != nil && !errors.Is(err, directory.ErrNoPair) && !errors.Is(err, errPartnerMissing):
		return nil, err
	}
	return effects, nil
}

func (e *Engine) showOwnCatalog(ctx context.Context, user directory.User) ([]Effect, error) {
	items, err := e.stores.Catalog.ListItemsByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []Effect{reply(e.loc.Sprintf(render.KeyCatalogEmpty), nil)}, nil
	}
	return []Effect{reply(e.loc.Sprintf(render.KeyCatalogManageHint), manageKeyboard(e.loc, items))}, nil
}

// deleteCatalogItem removes an owned favor and refreshes the manage view
// in place. Foreign or vanished items are ignored.
func (e *Engine) deleteCatalogItem(ctx context.Context, user directory.User, itemID string) ([]Effect, error) {
	item, err := e.stores.Catalog.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if item.OwnerID != user.ID {
		return nil, nil
	}

	if err := e.stores.Catalog.DeleteItem(ctx, itemID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	items, err := e.stores.Catalog.ListItemsByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []Effect{editMessage(e.loc.Sprintf(render.KeyCatalogEmpty), nil)}, nil
	}
	return []Effect{editMessage(e.loc.Sprintf(render.KeyCatalogManageHint), manageKeyboard(e.loc, items))}, nil
}

func (e *Engine) startItemRename(ctx context.Context, user directory.User, itemID string) ([]Effect, error) {
	item, err := e.stores.Catalog.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{reply(e.loc.Sprintf(render.KeyCatalogItemMissing), nil)}, nil
		}
		return nil, err
	}
	if item.OwnerID != user.ID {
		return nil, nil
	}

	e.sessions.Put(user.ID, session.EditingItem(itemID))
	return []Effect{reply(e.loc.Sprintf(render.KeyCatalogRenameAsk, item.Title), nil)}, nil
}

func (e *Engine) renameCatalogItem(ctx context.Context, user directory.User, itemID, raw string) ([]Effect, error) {
	e.sessions.Clear(user.ID)

	title, err := catalog.NormalizeTitle(raw)
	if err != nil {
		return nil, nil
	}
	if err := e.stores.Catalog.RenameItem(ctx, itemID, title); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Effect{reply(e.loc.Sprintf(render.KeyCatalogItemMissing), nil)}, nil
		}
		return nil, err
	}
	return []Effect{reply(e.loc.Sprintf(render.KeyCatalogRenamed, title), nil)}, nil
}

// showPartnerCatalog lists the partner's favors with order buttons.
func (e *Engine) showPartnerCatalog(ctx context.Context, user directory.User) ([]Effect, error) {
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

	items, err := e.stores.Catalog.ListItemsByOwner(ctx, partner.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []Effect{reply(e.loc.Sprintf(render.KeyPartnerCatalogEmpty), nil)}, nil
	}
	return []Effect{reply(e.loc.Sprintf(render.KeyPartnerCatalogHeader), orderKeyboard(e.loc, items))}, nil
}

func itemLines(items []catalog.Item) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "• "+item.Title)
	}
	return strings.Join(lines, "\n")
}
