package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	entries := []struct {
		key string
		msg string
	}{
		{KeyWelcome, "Hi! This bot helps the two of you trade little favors.\n\nPut together a catalog of things you are happy to do, share an invite link with your partner, and order favors from each other paying with kisses, hugs, or a heartfelt message."},

		{KeyButtonCreateCatalog, "🌸 Create catalog"},
		{KeyButtonMyCatalog, "💌 My catalog"},
		{KeyButtonPartnerCatalog, "🎁 Partner's catalog"},
		{KeyButtonInvitePartner, "🔗 Invite partner"},
		{KeyButtonBalance, "📊 Balance"},
		{KeyButtonHistory, "🕓 Order history"},
		{KeyButtonDone, "Done"},
		{KeyButtonAccept, "Accept ✅"},
		{KeyButtonReject, "Reject ❌"},
		{KeyButtonComplete, "Completed 🎉"},
		{KeyButtonEditItem, "✏ %s"},
		{KeyButtonDeleteItem, "🗑 Delete"},
		{KeyButtonOrderItem, "Order: %s"},
		{KeyButtonCurrencyKiss, "Kiss 💋"},
		{KeyButtonCurrencyHug, "Hug 🤗"},
		{KeyButtonCurrencyMsg, "Message 💌"},
		{KeyButtonResetYes, "Yes, dissolve"},
		{KeyButtonResetNo, "No, keep it"},

		{KeyCatalogAuthorStart, "Send the first favor you are offering. One per message. Press Done when finished."},
		{KeyCatalogItemAdded, "Added: %q. Send the next one or press Done."},
		{KeyCatalogList, "Your catalog:\n%s"},
		{KeyCatalogManageHint, "Your catalog. Tap a favor to rename it or delete it."},
		{KeyCatalogEmpty, "Your catalog is empty. Press \"🌸 Create catalog\" to add favors."},
		{KeyCatalogRenameAsk, "Send a new title for %q:"},
		{KeyCatalogRenamed, "Title updated to %q."},
		{KeyCatalogItemMissing, "That favor no longer exists."},
		{KeyCatalogChanged, "Your partner updated their catalog:\n%s"},

		{KeyPartnerCatalogHeader, "Your partner's catalog. Tap a favor to order it:"},
		{KeyPartnerCatalogEmpty, "Your partner has not added any favors yet."},
		{KeyPartnerNone, "You are not paired yet. Press \"🔗 Invite partner\" to share an invite link."},
		{KeyPartnerMissing, "Could not find your partner."},

		{KeyOrderCurrencyAsk, "What are you paying with?"},
		{KeyOrderDeadlineAsk, "When should it be done? Send a deadline, e.g. \"tonight\" or \"by Sunday\"."},
		{KeyOrderSent, "Order sent to your partner! 💌"},
		{KeyOrderIncoming, "New order: %s (%s)\nDeadline: %s"},
		{KeyOrderAcceptedEdit, "Order accepted! Press the button below once it is done."},
		{KeyOrderAcceptedNotice, "Your order %q was accepted! 🎉"},
		{KeyOrderRejectedEdit, "Order rejected."},
		{KeyOrderRejectedNotice, "Your order %q was rejected. 😔"},
		{KeyOrderCompletedEdit, "Order marked as completed. 🎉"},
		{KeyOrderCreditedNotice, "Your order %q is done! Payment credited: %s."},
		{KeyOrderMessageAsk, "Order completed! Now send the message your partner will receive as payment."},
		{KeyOrderMessageForward, "A message from your partner:\n\n%s"},
		{KeyOrderMessageSent, "Message delivered! 💌"},
		{KeyOrderNotFound, "Order not found or already handled."},

		{KeyInviteLink, "Send this link to your partner:\n%s"},
		{KeyInviteAlreadyPaired, "You are already paired, no invite needed."},
		{KeyInviteInvalid, "This link is invalid or has already been used."},
		{KeyInviteSelf, "You cannot use your own invite link."},
		{KeyInviteTakenNotice, "Someone opened your invite link, but they are already in a pair."},
		{KeyAlreadyPaired, "You are already in a pair."},

		{KeyResetConfirm, "Dissolve the pair? Your shared catalogs and balances will stay, but you will no longer be linked."},
		{KeyResetDone, "Pair dissolved. You can create a new one."},
		{KeyResetNone, "You have no pair to dissolve."},
		{KeyResetCancelled, "Pair kept. Nothing changed."},
		{KeyResetPartnerNotice, "Your partner dissolved the pair."},

		{KeyBalance, "Your balance:\n\nKisses: %d 💋\nHugs: %d 🤗"},
		{KeyHistoryHeader, "Your last orders:\n\n%s"},
		{KeyHistoryEmpty, "No orders yet."},
		{KeyHistoryLine, "%s: %s (%s, %s) — %s"},
		{KeyHistoryByYou, "You ordered"},
		{KeyHistoryFromYou, "Ordered from you"},
		{KeyHistoryPending, "pending"},
		{KeyHistoryAccepted, "accepted"},
		{KeyHistoryCompleted, "completed"},
		{KeyHistoryRejected, "rejected"},
		{KeyHistoryLostItem, "deleted favor"},

		{KeyCurrencyKiss, "kiss 💋"},
		{KeyCurrencyHug, "hug 🤗"},
		{KeyCurrencyMessage, "message 💌"},
	}

	for _, e := range entries {
		message.SetString(language.English, e.key, e.msg)
	}
}
