// Package couplet parses bot service flags and launches the service.
package couplet

import (
	"context"
	"errors"
	"flag"

	"github.com/couplehq/couplet/internal/bot"
	"github.com/couplehq/couplet/internal/bot/render"
	"github.com/couplehq/couplet/internal/gateway/telegram"
	entrypoint "github.com/couplehq/couplet/internal/platform/cmd"
	"github.com/couplehq/couplet/internal/storage/sqlite"
)

// Config holds bot command configuration.
type Config struct {
	Token          string `env:"COUPLET_TELEGRAM_TOKEN"`
	DBPath         string `env:"COUPLET_DB_PATH" envDefault:"couplet.db"`
	Locale         string `env:"COUPLET_LOCALE" envDefault:"en"`
	InviteLinkBase string `env:"COUPLET_INVITE_LINK_BASE" envDefault:"https://t.me/couplet_bot"`
	// APIBaseURL overrides the Telegram API host, empty for production.
	APIBaseURL string `env:"COUPLET_TELEGRAM_API"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The sqlite database path")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "The BCP 47 locale for bot copy")
	fs.StringVar(&cfg.InviteLinkBase, "invite-link-base", cfg.InviteLinkBase, "The public bot URL invite links are built on")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the bot service: store, engine, and Telegram long polling.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Token == "" {
		return errors.New("COUPLET_TELEGRAM_TOKEN is required")
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBot, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		engine := bot.NewEngine(bot.Config{
			Stores: bot.Stores{
				Users:   store,
				Pairs:   store,
				Invites: store,
				Catalog: store,
				Orders:  store,
			},
			Localizer:      render.NewPrinter(cfg.Locale),
			InviteLinkBase: cfg.InviteLinkBase,
		})

		gateway := telegram.New(telegram.NewClient(cfg.Token, cfg.APIBaseURL), engine)
		return gateway.Run(ctx)
	})
}
