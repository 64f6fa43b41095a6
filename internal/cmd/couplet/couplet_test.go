package couplet

import (
	"context"
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("couplet", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "couplet.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Locale != "en" {
		t.Fatalf("expected default locale en, got %q", cfg.Locale)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("COUPLET_LOCALE", "ru")

	fs := flag.NewFlagSet("couplet", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db", "/tmp/override.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "/tmp/override.db" {
		t.Fatalf("expected flag db path, got %q", cfg.DBPath)
	}
	if cfg.Locale != "ru" {
		t.Fatalf("expected env locale ru, got %q", cfg.Locale)
	}
}

func TestRunRequiresToken(t *testing.T) {
	err := Run(context.Background(), Config{DBPath: t.TempDir() + "/couplet.db"})
	if err == nil {
		t.Fatal("expected error without a bot token")
	}
}
