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
		{KeyWelcome, "Привет! Этот бот помогает вам двоим обмениваться маленькими радостями.\n\nСоставь меню того, что тебе приятно делать, отправь партнёру ссылку-приглашение и заказывайте сюрпризы друг у друга за поцелуи, объятия или тёплое сообщение."},

		{KeyButtonCreateCatalog, "🌸 Создать меню"},
		{KeyButtonMyCatalog, "💌 Моё меню"},
		{KeyButtonPartnerCatalog, "🎁 Меню партнёра"},
		{KeyButtonInvitePartner, "🔗 Пригласить партнёра"},
		{KeyButtonBalance, "📊 Баланс"},
		{KeyButtonHistory, "🕓 История заказов"},
		{KeyButtonDone, "Готово"},
		{KeyButtonAccept, "Принять ✅"},
		{KeyButtonReject, "Отклонить ❌"},
		{KeyButtonComplete, "Выполнено 🎉"},
		{KeyButtonEditItem, "✏ %s"},
		{KeyButtonDeleteItem, "🗑 Удалить"},
		{KeyButtonOrderItem, "Заказать: %s"},
		{KeyButtonCurrencyKiss, "Поцелуй 💋"},
		{KeyButtonCurrencyHug, "Объятие 🤗"},
		{KeyButtonCurrencyMsg, "Сообщение 💌"},
		{KeyButtonResetYes, "Да, разорвать"},
		{KeyButtonResetNo, "Нет, оставить"},

		{KeyCatalogAuthorStart, "Напиши первый сюрприз, который ты готов(а) сделать. По одному в сообщении. Когда закончишь, нажми «Готово»."},
		{KeyCatalogItemAdded, "Добавлено: %q. Напиши следующий или нажми «Готово»."},
		{KeyCatalogList, "Твоё меню:\n%s"},
		{KeyCatalogManageHint, "Твоё меню. Нажми на пункт, чтобы переименовать или удалить его."},
		{KeyCatalogEmpty, "Твоё меню пусто. Нажми «🌸 Создать меню», чтобы добавить сюрпризы."},
		{KeyCatalogRenameAsk, "Напиши новое название для %q:"},
		{KeyCatalogRenamed, "Название обновлено на %q."},
		{KeyCatalogItemMissing, "Этого пункта больше нет."},
		{KeyCatalogChanged, "Партнёр обновил своё меню:\n%s"},

		{KeyPartnerCatalogHeader, "Меню партнёра. Нажми на пункт, чтобы заказать:"},
		{KeyPartnerCatalogEmpty, "Партнёр ещё ничего не добавил."},
		{KeyPartnerNone, "У тебя пока нет пары. Нажми «🔗 Пригласить партнёра», чтобы отправить ссылку."},
		{KeyPartnerMissing, "Не удалось найти партнёра."},

		{KeyOrderCurrencyAsk, "Чем платишь?"},
		{KeyOrderDeadlineAsk, "К какому сроку? Напиши дедлайн, например «сегодня вечером» или «до воскресенья»."},
		{KeyOrderSent, "Заказ отправлен партнёру! 💌"},
		{KeyOrderIncoming, "Новый заказ: %s (%s)\nСрок: %s"},
		{KeyOrderAcceptedEdit, "Заказ принят! Когда выполнишь, нажми кнопку ниже."},
		{KeyOrderAcceptedNotice, "Твой заказ %q принят! 🎉"},
		{KeyOrderRejectedEdit, "Заказ отклонён."},
		{KeyOrderRejectedNotice, "Твой заказ %q отклонён. 😔"},
		{KeyOrderCompletedEdit, "Заказ отмечен выполненным. 🎉"},
		{KeyOrderCreditedNotice, "Твой заказ %q выполнен! Оплата зачислена: %s."},
		{KeyOrderMessageAsk, "Заказ выполнен! Теперь напиши сообщение, которое получит партнёр в качестве оплаты."},
		{KeyOrderMessageForward, "Сообщение от партнёра:\n\n%s"},
		{KeyOrderMessageSent, "Сообщение доставлено! 💌"},
		{KeyOrderNotFound, "Заказ не найден или уже обработан."},

		{KeyInviteLink, "Отправь эту ссылку партнёру:\n%s"},
		{KeyInviteAlreadyPaired, "У тебя уже есть пара, приглашение не нужно."},
		{KeyInviteInvalid, "Ссылка недействительна или уже использована."},
		{KeyInviteSelf, "Нельзя использовать свою же ссылку."},
		{KeyInviteTakenNotice, "Кто-то открыл твою ссылку-приглашение, но у него уже есть пара."},
		{KeyAlreadyPaired, "У тебя уже есть пара."},

		{KeyResetConfirm, "Разорвать пару? Меню и балансы сохранятся, но вы больше не будете связаны."},
		{KeyResetDone, "Пара разорвана. Можно создать новую."},
		{KeyResetNone, "У тебя нет пары, которую можно разорвать."},
		{KeyResetCancelled, "Пара сохранена. Ничего не изменилось."},
		{KeyResetPartnerNotice, "Партнёр разорвал пару."},

		{KeyBalance, "Твой баланс:\n\nПоцелуи: %d 💋\nОбъятия: %d 🤗"},
		{KeyHistoryHeader, "Последние заказы:\n\n%s"},
		{KeyHistoryEmpty, "Заказов пока нет."},
		{KeyHistoryLine, "%s: %s (%s, %s) — %s"},
		{KeyHistoryByYou, "Ты заказал(а)"},
		{KeyHistoryFromYou, "Заказано у тебя"},
		{KeyHistoryPending, "ожидает"},
		{KeyHistoryAccepted, "принят"},
		{KeyHistoryCompleted, "выполнен"},
		{KeyHistoryRejected, "отклонён"},
		{KeyHistoryLostItem, "удалённый пункт"},

		{KeyCurrencyKiss, "поцелуй 💋"},
		{KeyCurrencyHug, "объятие 🤗"},
		{KeyCurrencyMessage, "сообщение 💌"},
	}

	for _, e := range entries {
		message.SetString(language.Russian, e.key, e.msg)
	}
}
