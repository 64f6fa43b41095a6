package bot

import "strings"

// ActionKind identifies an inline button verb.
type ActionKind int

const (
	ActionUnspecified ActionKind = iota
	ActionDeleteItem
	ActionEditItem
	ActionOrderItem
	ActionPickCurrency
	ActionAcceptOrder
	ActionRejectOrder
	ActionCompleteOrder
	ActionConfirmReset
	ActionCancelReset
)

// Action is a parsed inline button press.
type Action struct {
	Kind ActionKind
	// ID is the entity id or currency label carried by the verb, empty
	// for the bare reset actions.
	ID string
}

const (
	verbDelete   = "delete"
	verbEdit     = "edit"
	verbOrder    = "order"
	verbCurrency = "currency"
	verbAccept   = "accept"
	verbReject   = "reject"
	verbComplete = "complete"

	actionConfirmReset = "confirm_reset"
	actionCancelReset  = "cancel_reset"
)

// ParseAction decodes a raw action id. Unknown or malformed ids return
// ok=false and are dropped by the engine without a user-visible error.
func ParseAction(raw string) (Action, bool) {
	switch raw {
	case actionConfirmReset:
		return Action{Kind: ActionConfirmReset}, true
	case actionCancelReset:
		return Action{Kind: ActionCancelReset}, true
	}

	verb, id, found := strings.Cut(raw, "_")
	if !found || id == "" {
		return Action{}, false
	}

	var kind ActionKind
	switch verb {
	case verbDelete:
		kind = ActionDeleteItem
	case verbEdit:
		kind = ActionEditItem
	case verbOrder:
		kind = ActionOrderItem
	case verbCurrency:
		kind = ActionPickCurrency
	case verbAccept:
		kind = ActionAcceptOrder
	case verbReject:
		kind = ActionRejectOrder
	case verbComplete:
		kind = ActionCompleteOrder
	default:
		return Action{}, false
	}
	return Action{Kind: kind, ID: id}, true
}

func actionID(verb, id string) string {
	return verb + "_" + id
}

const startPayloadPrefix = "invite_"

// InviteStartPayload builds the deep-link payload for an invite token.
func InviteStartPayload(token string) string {
	return startPayloadPrefix + token
}

// ParseStartPayload extracts an invite token from a start payload.
func ParseStartPayload(payload string) (token string, ok bool) {
	token, ok = strings.CutPrefix(payload, startPayloadPrefix)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
