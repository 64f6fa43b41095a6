// Package order models favor orders and their lifecycle.
package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couplehq/couplet/internal/platform/id"
)

var (
	// ErrEmptyRequesterID indicates a missing requester user ID.
	ErrEmptyRequesterID = errors.New("requester user id is required")
	// ErrEmptyFulfillerID indicates a missing fulfiller user ID.
	ErrEmptyFulfillerID = errors.New("fulfiller user id is required")
	// ErrEmptyItemID indicates a missing catalog item ID.
	ErrEmptyItemID = errors.New("catalog item id is required")
	// ErrEmptyDeadline indicates a missing deadline string.
	ErrEmptyDeadline = errors.New("deadline is required")
	// ErrInvalidCurrency indicates an unsupported currency value.
	ErrInvalidCurrency = errors.New("currency is invalid")
	// ErrIllegalTransition indicates a status change that the lifecycle
	// does not permit.
	ErrIllegalTransition = errors.New("illegal status transition")
)

// Currency is the symbolic unit a requester offers for a favor.
type Currency string

const (
	// CurrencyKiss credits the fulfiller one kiss on completion.
	CurrencyKiss Currency = "kiss"
	// CurrencyHug credits the fulfiller one hug on completion.
	CurrencyHug Currency = "hug"
	// CurrencyMessage delivers a free-text message on completion
	// instead of a balance credit.
	CurrencyMessage Currency = "message"
)

// IsValid reports whether the currency is one of the supported values.
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyKiss, CurrencyHug, CurrencyMessage:
		return true
	default:
		return false
	}
}

// ParseCurrency converts a wire currency token to a Currency.
func ParseCurrency(raw string) (Currency, error) {
	currency := Currency(strings.ToLower(strings.TrimSpace(raw)))
	if !currency.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, raw)
	}
	return currency, nil
}

// Status describes the lifecycle state of an order.
type Status int

const (
	// StatusUnspecified represents an invalid order status value.
	StatusUnspecified Status = iota
	// StatusPending indicates the order awaits the fulfiller's decision.
	StatusPending
	// StatusAccepted indicates the fulfiller agreed to the order.
	StatusAccepted
	// StatusRejected indicates the fulfiller declined the order. Terminal.
	StatusRejected
	// StatusCompleted indicates the accepted order was fulfilled. Terminal.
	StatusCompleted
)

// CanTransition reports whether the lifecycle permits moving from s to
// target. Transitions are monotonic: pending goes to accepted or
// rejected, accepted goes only to completed, terminal states go nowhere.
func (s Status) CanTransition(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusAccepted || target == StatusRejected
	case StatusAccepted:
		return target == StatusCompleted
	default:
		return false
	}
}

// StatusLabel returns the string label for an order status.
func StatusLabel(status Status) string {
	switch status {
	case StatusPending:
		return "PENDING"
	case StatusAccepted:
		return "ACCEPTED"
	case StatusRejected:
		return "REJECTED"
	case StatusCompleted:
		return "COMPLETED"
	default:
		return "UNSPECIFIED"
	}
}

// StatusFromLabel converts a status label to a Status value.
func StatusFromLabel(label string) Status {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "PENDING":
		return StatusPending
	case "ACCEPTED":
		return StatusAccepted
	case "REJECTED":
		return StatusRejected
	case "COMPLETED":
		return StatusCompleted
	default:
		return StatusUnspecified
	}
}

// Order records one favor request between the members of a pair.
type Order struct {
	ID          string
	RequesterID string
	FulfillerID string
	ItemID      string
	Currency    Currency
	Deadline    string // user-supplied free text, never parsed
	Status      Status
	Message     string // set at most once, message-currency orders only
	CreatedAt   time.Time
}

// CreateOrderInput describes the metadata needed to create an order.
type CreateOrderInput struct {
	RequesterID string
	FulfillerID string
	ItemID      string
	Currency    Currency
	Deadline    string
}

// CreateOrder creates a pending order with a generated ID and timestamp.
func CreateOrder(input CreateOrderInput, now func() time.Time, idGenerator func() (string, error)) (Order, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateOrderInput(input)
	if err != nil {
		return Order{}, err
	}

	orderID, err := idGenerator()
	if err != nil {
		return Order{}, fmt.Errorf("generate order id: %w", err)
	}

	return Order{
		ID:          orderID,
		RequesterID: normalized.RequesterID,
		FulfillerID: normalized.FulfillerID,
		ItemID:      normalized.ItemID,
		Currency:    normalized.Currency,
		Deadline:    normalized.Deadline,
		Status:      StatusPending,
		CreatedAt:   now().UTC(),
	}, nil
}

// NormalizeCreateOrderInput trims and validates order input metadata.
// The deadline is kept verbatim apart from surrounding whitespace.
func NormalizeCreateOrderInput(input CreateOrderInput) (CreateOrderInput, error) {
	input.RequesterID = strings.TrimSpace(input.RequesterID)
	if input.RequesterID == "" {
		return CreateOrderInput{}, ErrEmptyRequesterID
	}
	input.FulfillerID = strings.TrimSpace(input.FulfillerID)
	if input.FulfillerID == "" {
		return CreateOrderInput{}, ErrEmptyFulfillerID
	}
	input.ItemID = strings.TrimSpace(input.ItemID)
	if input.ItemID == "" {
		return CreateOrderInput{}, ErrEmptyItemID
	}
	if !input.Currency.IsValid() {
		return CreateOrderInput{}, ErrInvalidCurrency
	}
	input.Deadline = strings.TrimSpace(input.Deadline)
	if input.Deadline == "" {
		return CreateOrderInput{}, ErrEmptyDeadline
	}
	return input, nil
}
