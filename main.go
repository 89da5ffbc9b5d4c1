package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"

	"github.com/hanumendraprm/slack-submit-for-review-app/internal/config"
	"github.com/hanumendraprm/slack-submit-for-review-app/internal/db"
	"github.com/hanumendraprm/slack-submit-for-review-app/internal/ledger"
	"github.com/hanumendraprm/slack-submit-for-review-app/internal/slackbot"
	"github.com/hanumendraprm/slack-submit-for-review-app/internal/webserver"
	"github.com/hanumendraprm/slack-submit-for-review-app/internal/workflow"
)

func main() {
	// .env is a convenience for local runs; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var adapter *ledger.Adapter
	if cfg.SheetsEnabled() {
		store, err := ledger.NewSheetsStore(ctx, cfg.SheetID, cfg.SheetRange, []byte(cfg.ServiceAccountKey))
		if err != nil {
			log.Fatal("failed to initialize sheets client", zap.Error(err))
		}
		adapter = ledger.New(store, log.Named("ledger"))
		log.Info("google sheets integration enabled", zap.String("range", cfg.SheetRange))
	} else {
		adapter = ledger.NewDisabled(log.Named("ledger"))
		log.Warn("google sheets integration disabled - set GOOGLE_SHEET_ID and GOOGLE_SERVICE_ACCOUNT_KEY to enable")
	}

	// The audit trail is best effort end to end: a broken local database
	// only costs history, never a user action.
	var audit workflow.Audit
	if _, err := db.Init(cfg.DBPath); err != nil {
		log.Warn("transition audit trail disabled", zap.Error(err))
	} else {
		audit = db.NewTrail()
	}

	api := slack.New(cfg.SlackBotToken, slack.OptionAppLevelToken(cfg.SlackAppToken))
	sm := socketmode.New(api)

	chat := slackbot.NewClient(api)
	resolver := slackbot.NewChannelResolver(api, cfg.ChannelID, cfg.ChannelName, log.Named("channel"))
	engine := workflow.New(chat, adapter, resolver, audit, log.Named("workflow"))
	router := slackbot.NewRouter(sm, engine, chat, log.Named("router"))

	if err := webserver.Start(cfg.Port, log.Named("health")); err != nil {
		log.Fatal("failed to start health server", zap.Error(err))
	}

	target := cfg.ChannelName
	if target == "" {
		target = cfg.ChannelID
	}
	log.Info("review bot running", zap.Int("port", cfg.Port), zap.String("target_channel", target))

	if err := router.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("socket mode loop failed", zap.Error(err))
	}
}
