package catalog

import (
	"errors"
	"testing"
	"time"
)

func TestCreateItem(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	item, err := CreateItem(CreateItemInput{OwnerID: "user-1", Title: "  massage  "},
		func() time.Time { return now },
		func() (string, error) { return "item-1", nil })
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.Title != "massage" {
		t.Fatalf("expected trimmed title, got %q", item.Title)
	}
	if item.OwnerID != "user-1" {
		t.Fatalf("expected owner user-1, got %q", item.OwnerID)
	}
}

func TestCreateItemValidation(t *testing.T) {
	t.Parallel()

	if _, err := CreateItem(CreateItemInput{Title: "massage"}, nil, nil); !errors.Is(err, ErrEmptyOwnerID) {
		t.Fatalf("expected empty owner error, got %v", err)
	}
	if _, err := CreateItem(CreateItemInput{OwnerID: "user-1", Title: " "}, nil, nil); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected empty title error, got %v", err)
	}
}

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	title, err := NormalizeTitle(" breakfast in bed ")
	if err != nil {
		t.Fatalf("normalize title: %v", err)
	}
	if title != "breakfast in bed" {
		t.Fatalf("unexpected title %q", title)
	}
}
