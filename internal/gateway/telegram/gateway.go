package telegram

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/couplehq/couplet/internal/bot"
)

// EventHandler is the engine-side contract the gateway drives.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev bot.Event) ([]bot.Effect, error)
}

// Gateway pumps Telegram updates through an event handler and performs
// the resulting effects. Delivery failures are logged and dropped so one
// unreachable chat never wedges the loop.
type Gateway struct {
	client  *Client
	handler EventHandler
}

// New creates a gateway around client and handler.
func New(client *Client, handler EventHandler) *Gateway {
	return &Gateway{client: client, handler: handler}
}

// Run long-polls until ctx is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	var offset int64
	for {
		updates, err := g.client.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("telegram: get updates: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			g.handleUpdate(ctx, u)
		}
	}
}

// origin locates the inbound message so replies and edits can target it.
type origin struct {
	chatID     int64
	messageID  int64
	callbackID string
}

func (g *Gateway) handleUpdate(ctx context.Context, u update) {
	ev, src, ok := mapUpdate(u)
	if !ok {
		return
	}

	effects, err := g.handler.HandleEvent(ctx, ev)
	if err != nil {
		log.Printf("telegram: handle update %d: %v", u.UpdateID, err)
	}
	if src.callbackID != "" {
		if err := g.client.answerCallbackQuery(ctx, src.callbackID); err != nil {
			log.Printf("telegram: answer callback: %v", err)
		}
	}
	for _, effect := range effects {
		if err := g.deliver(ctx, src, effect); err != nil {
			log.Printf("telegram: deliver effect to chat %s: %v", effect.ChatID, err)
		}
	}
}

// mapUpdate converts one Telegram update into an engine event.
func mapUpdate(u update) (bot.Event, origin, bool) {
	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil:
		cb := u.CallbackQuery
		return bot.Event{
				Kind:        bot.EventAction,
				ChatID:      strconv.FormatInt(cb.Message.Chat.ID, 10),
				DisplayName: cb.From.FirstName,
				Payload:     cb.Data,
			}, origin{
				chatID:     cb.Message.Chat.ID,
				messageID:  cb.Message.MessageID,
				callbackID: cb.ID,
			}, true

	case u.Message != nil && u.Message.Text != "":
		msg := u.Message
		ev := bot.Event{
			ChatID: strconv.FormatInt(msg.Chat.ID, 10),
		}
		if msg.From != nil {
			ev.DisplayName = msg.From.FirstName
		}
		src := origin{chatID: msg.Chat.ID, messageID: msg.MessageID}

		if command, payload, ok := parseCommand(msg.Text); ok {
			if command == "start" {
				ev.Kind = bot.EventStart
				ev.Payload = payload
			} else {
				ev.Kind = bot.EventCommand
				ev.Payload = command
			}
			return ev, src, true
		}

		ev.Kind = bot.EventText
		ev.Payload = msg.Text
		return ev, src, true
	}
	return bot.Event{}, origin{}, false
}

// parseCommand splits "/start abc" into ("start", "abc"). The @botname
// suffix Telegram appends in some clients is stripped.
func parseCommand(text string) (command, payload string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	command, payload, _ = strings.Cut(text[1:], " ")
	command, _, _ = strings.Cut(command, "@")
	if command == "" {
		return "", "", false
	}
	return command, strings.TrimSpace(payload), true
}

func (g *Gateway) deliver(ctx context.Context, src origin, effect bot.Effect) error {
	markup := keyboardMarkup(effect.Keyboard)

	switch effect.Kind {
	case bot.EffectReply:
		return g.client.sendMessage(ctx, src.chatID, effect.Text, markup)
	case bot.EffectEditMessage:
		if src.messageID == 0 {
			return g.client.sendMessage(ctx, src.chatID, effect.Text, markup)
		}
		return g.client.editMessageText(ctx, src.chatID, src.messageID, effect.Text, markup)
	case bot.EffectSend:
		chatID, err := strconv.ParseInt(effect.ChatID, 10, 64)
		if err != nil {
			return errors.New("effect chat id is not numeric")
		}
		return g.client.sendMessage(ctx, chatID, effect.Text, markup)
	default:
		return nil
	}
}

// keyboardMarkup converts an engine keyboard to Bot API reply markup.
func keyboardMarkup(kb *bot.Keyboard) any {
	if kb == nil {
		return nil
	}

	if kb.Inline {
		rows := make([][]map[string]string, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			buttons := make([]map[string]string, 0, len(row))
			for _, button := range row {
				buttons = append(buttons, map[string]string{
					"text":          button.Label,
					"callback_data": button.Action,
				})
			}
			rows = append(rows, buttons)
		}
		return map[string]any{"inline_keyboard": rows}
	}

	rows := make([][]map[string]string, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]map[string]string, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, map[string]string{"text": button.Label})
		}
		rows = append(rows, buttons)
	}
	return map[string]any{"keyboard": rows, "resize_keyboard": true}
}
