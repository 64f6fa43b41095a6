// Package render provides localized user-facing copy for the bot.
package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys shared by all language catalogs.
const (
	KeyWelcome = "bot.welcome"

	KeyButtonCreateCatalog  = "bot.button.create_catalog"
	KeyButtonMyCatalog      = "bot.button.my_catalog"
	KeyButtonPartnerCatalog = "bot.button.partner_catalog"
	KeyButtonInvitePartner  = "bot.button.invite_partner"
	KeyButtonBalance        = "bot.button.balance"
	KeyButtonHistory        = "bot.button.history"
	KeyButtonDone           = "bot.button.done"
	KeyButtonAccept         = "bot.button.accept"
	KeyButtonReject         = "bot.button.reject"
	KeyButtonComplete       = "bot.button.complete"
	KeyButtonEditItem       = "bot.button.edit_item"
	KeyButtonDeleteItem     = "bot.button.delete_item"
	KeyButtonOrderItem      = "bot.button.order_item"
	KeyButtonCurrencyKiss   = "bot.button.currency_kiss"
	KeyButtonCurrencyHug    = "bot.button.currency_hug"
	KeyButtonCurrencyMsg    = "bot.button.currency_message"
	KeyButtonResetYes       = "bot.button.reset_yes"
	KeyButtonResetNo        = "bot.button.reset_no"

	KeyCatalogAuthorStart = "bot.catalog.author_start"
	KeyCatalogItemAdded   = "bot.catalog.item_added"
	KeyCatalogList        = "bot.catalog.list"
	KeyCatalogManageHint  = "bot.catalog.manage_hint"
	KeyCatalogEmpty       = "bot.catalog.empty"
	KeyCatalogRenameAsk   = "bot.catalog.rename_ask"
	KeyCatalogRenamed     = "bot.catalog.renamed"
	KeyCatalogItemMissing = "bot.catalog.item_missing"
	KeyCatalogChanged     = "bot.catalog.changed"

	KeyPartnerCatalogHeader = "bot.partner.catalog_header"
	KeyPartnerCatalogEmpty  = "bot.partner.catalog_empty"
	KeyPartnerNone          = "bot.partner.none"
	KeyPartnerMissing       = "bot.partner.missing"

	KeyOrderCurrencyAsk    = "bot.order.currency_ask"
	KeyOrderDeadlineAsk    = "bot.order.deadline_ask"
	KeyOrderSent           = "bot.order.sent"
	KeyOrderIncoming       = "bot.order.incoming"
	KeyOrderAcceptedEdit   = "bot.order.accepted_edit"
	KeyOrderAcceptedNotice = "bot.order.accepted_notice"
	KeyOrderRejectedEdit   = "bot.order.rejected_edit"
	KeyOrderRejectedNotice = "bot.order.rejected_notice"
	KeyOrderCompletedEdit  = "bot.order.completed_edit"
	KeyOrderCreditedNotice = "bot.order.credited_notice"
	KeyOrderMessageAsk     = "bot.order.message_ask"
	KeyOrderMessageForward = "bot.order.message_forward"
	KeyOrderMessageSent    = "bot.order.message_sent"
	KeyOrderNotFound       = "bot.order.not_found"

	KeyInviteLink          = "bot.invite.link"
	KeyInviteAlreadyPaired = "bot.invite.already_paired"
	KeyInviteInvalid       = "bot.invite.invalid"
	KeyInviteSelf          = "bot.invite.self"
	KeyInviteTakenNotice   = "bot.invite.taken_notice"
	KeyAlreadyPaired       = "bot.pair.already_paired"

	KeyResetConfirm       = "bot.reset.confirm"
	KeyResetDone          = "bot.reset.done"
	KeyResetNone          = "bot.reset.none"
	KeyResetCancelled     = "bot.reset.cancelled"
	KeyResetPartnerNotice = "bot.reset.partner_notice"

	KeyBalance          = "bot.balance"
	KeyHistoryHeader    = "bot.history.header"
	KeyHistoryEmpty     = "bot.history.empty"
	KeyHistoryLine      = "bot.history.line"
	KeyHistoryByYou     = "bot.history.by_you"
	KeyHistoryFromYou   = "bot.history.from_you"
	KeyHistoryPending   = "bot.history.pending"
	KeyHistoryAccepted  = "bot.history.accepted"
	KeyHistoryCompleted = "bot.history.completed"
	KeyHistoryRejected  = "bot.history.rejected"
	KeyHistoryLostItem  = "bot.history.lost_item"

	KeyCurrencyKiss    = "bot.currency.kiss"
	KeyCurrencyHug     = "bot.currency.hug"
	KeyCurrencyMessage = "bot.currency.message"
)

// Localizer is the minimal message-printer contract the bot needs.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// NewPrinter returns a message printer for the given BCP 47 locale,
// falling back to English for unknown values.
func NewPrinter(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}
