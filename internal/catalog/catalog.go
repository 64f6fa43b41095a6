// Package catalog models the per-user list of offerable favors.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couplehq/couplet/internal/platform/id"
)

var (
	// ErrEmptyOwnerID indicates a missing owner user ID.
	ErrEmptyOwnerID = errors.New("owner user id is required")
	// ErrEmptyTitle indicates a missing item title.
	ErrEmptyTitle = errors.New("item title is required")
)

// Item is one named favor a user offers. Titles are free text and need
// not be unique; identity is the generated ID.
type Item struct {
	ID        string
	OwnerID   string
	Title     string
	CreatedAt time.Time
}

// CreateItemInput describes the metadata needed to create an item.
type CreateItemInput struct {
	OwnerID string
	Title   string
}

// CreateItem creates a catalog item with a generated ID and timestamp.
func CreateItem(input CreateItemInput, now func() time.Time, idGenerator func() (string, error)) (Item, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.OwnerID = strings.TrimSpace(input.OwnerID)
	if input.OwnerID == "" {
		return Item{}, ErrEmptyOwnerID
	}
	title, err := NormalizeTitle(input.Title)
	if err != nil {
		return Item{}, err
	}

	itemID, err := idGenerator()
	if err != nil {
		return Item{}, fmt.Errorf("generate item id: %w", err)
	}

	return Item{
		ID:        itemID,
		OwnerID:   input.OwnerID,
		Title:     title,
		CreatedAt: now().UTC(),
	}, nil
}

// NormalizeTitle trims and validates an item title.
func NormalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", ErrEmptyTitle
	}
	return title, nil
}
