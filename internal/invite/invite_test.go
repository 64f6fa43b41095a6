package invite

import (
	"errors"
	"testing"
	"time"
)

func TestCreateInviteRequiresCreator(t *testing.T) {
	t.Parallel()

	if _, err := CreateInvite(CreateInviteInput{}, nil, nil); !errors.Is(err, ErrEmptyCreatorID) {
		t.Fatalf("expected empty creator error, got %v", err)
	}
}

func TestCreateInviteStartsUnused(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	inv, err := CreateInvite(CreateInviteInput{CreatorID: " user-1 "}, func() time.Time { return now }, func() string { return "token-1" })
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if inv.Token != "token-1" {
		t.Fatalf("expected token-1, got %q", inv.Token)
	}
	if inv.CreatorID != "user-1" {
		t.Fatalf("expected trimmed creator id, got %q", inv.CreatorID)
	}
	if inv.Used {
		t.Fatal("new invite must be unused")
	}
}

func TestNewTokenIsUnique(t *testing.T) {
	t.Parallel()

	if NewToken() == NewToken() {
		t.Fatal("expected distinct tokens")
	}
}

func TestCheckRedeemerRejectsCreator(t *testing.T) {
	t.Parallel()

	inv := Invite{Token: "token-1", CreatorID: "user-1"}
	if err := CheckRedeemer(inv, "user-1"); !errors.Is(err, ErrSelfRedemption) {
		t.Fatalf("expected self redemption error, got %v", err)
	}
	if err := CheckRedeemer(inv, "user-2"); err != nil {
		t.Fatalf("expected nil for counterpart, got %v", err)
	}
}
