package bot

import (
	"github.com/couplehq/couplet/internal/bot/render"
	"github.com/couplehq/couplet/internal/catalog"
	"github.com/couplehq/couplet/internal/order"
)

func mainKeyboard(loc render.Localizer) *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: loc.Sprintf(render.KeyButtonCreateCatalog)}},
		{
			{Label: loc.Sprintf(render.KeyButtonMyCatalog)},
			{Label: loc.Sprintf(render.KeyButtonPartnerCatalog)},
		},
		{{Label: loc.Sprintf(render.KeyButtonInvitePartner)}},
		{
			{Label: loc.Sprintf(render.KeyButtonBalance)},
			{Label: loc.Sprintf(render.KeyButtonHistory)},
		},
	}}
}

func doneKeyboard(loc render.Localizer) *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Label: loc.Sprintf(render.KeyButtonDone)}},
	}}
}

// manageKeyboard lists the owner's favors with rename and delete buttons.
func manageKeyboard(loc render.Localizer, items []catalog.Item) *Keyboard {
	kb := &Keyboard{Inline: true}
	for _, item := range items {
		kb.Rows = append(kb.Rows, []Button{
			{
				Label:  loc.Sprintf(render.KeyButtonEditItem, item.Title),
				Action: actionID(verbEdit, item.ID),
			},
			{
				Label:  loc.Sprintf(render.KeyButtonDeleteItem),
				Action: actionID(verbDelete, item.ID),
			},
		})
	}
	return kb
}

// orderKeyboard lists the partner's favors with order buttons.
func orderKeyboard(loc render.Localizer, items []catalog.Item) *Keyboard {
	kb := &Keyboard{Inline: true}
	for _, item := range items {
		kb.Rows = append(kb.Rows, []Button{{
			Label:  loc.Sprintf(render.KeyButtonOrderItem, item.Title),
			Action: actionID(verbOrder, item.ID),
		}})
	}
	return kb
}

func currencyKeyboard(loc render.Localizer) *Keyboard {
	return &Keyboard{Inline: true, Rows: [][]Button{
		{
			{
				Label:  loc.Sprintf(render.KeyButtonCurrencyKiss),
				Action: actionID(verbCurrency, string(order.CurrencyKiss)),
			},
			{
				Label:  loc.Sprintf(render.KeyButtonCurrencyHug),
				Action: actionID(verbCurrency, string(order.CurrencyHug)),
			},
		},
		{{
			Label:  loc.Sprintf(render.KeyButtonCurrencyMsg),
			Action: actionID(verbCurrency, string(order.CurrencyMessage)),
		}},
	}}
}

func decisionKeyboard(loc render.Localizer, orderID string) *Keyboard {
	return &Keyboard{Inline: true, Rows: [][]Button{{
		{
			Label:  loc.Sprintf(render.KeyButtonAccept),
			Action: actionID(verbAccept, orderID),
		},
		{
			Label:  loc.Sprintf(render.KeyButtonReject),
			Action: actionID(verbReject, orderID),
		},
	}}}
}

func completeKeyboard(loc render.Localizer, orderID string) *Keyboard {
	return &Keyboard{Inline: true, Rows: [][]Button{{
		{
			Label:  loc.Sprintf(render.KeyButtonComplete),
			Action: actionID(verbComplete, orderID),
		},
	}}}
}

func confirmResetKeyboard(loc render.Localizer) *Keyboard {
	return &Keyboard{Inline: true, Rows: [][]Button{{
		{Label: loc.Sprintf(render.KeyButtonResetYes), Action: actionConfirmReset},
		{Label: loc.Sprintf(render.KeyButtonResetNo), Action: actionCancelReset},
	}}}
}
