package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sheet-reader/api/internal/config"
	"sheet-reader/api/internal/httpserver"
	"sheet-reader/api/internal/logging"
	"sheet-reader/api/internal/ocr"
	"sheet-reader/api/internal/ocr/engines"
	"sheet-reader/api/internal/staging"
	"sheet-reader/api/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("config load error", "error", err)
	}
	logging.Init(cfg.Log)

	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		logging.Fatal("missing required env TELEGRAM_BOT_TOKEN")
	}
	if key := cfg.MissingCredential(); key != "" {
		logging.Warn("missing "+key+"; photos will get a failure reply until it is set", "provider", cfg.Provider)
	}

	engine, err := engines.FromConfig(cfg)
	if err != nil {
		logging.Fatal("engine init error", "error", err)
	}
	stager, err := staging.New(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		logging.Fatal("staging init error", "error", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logging.Fatal("telegram init error", "error", err)
	}
	bot.Debug = false

	r := telegram.NewRouter(bot, ocr.NewAnalyzer(engine, cfg.AnalyzeTimeout), stager)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// health server is optional for polling but the platform probes it
	go func() {
		if err := httpserver.Serve(ctx, ":"+cfg.Port, httpserver.HealthRouter()); err != nil {
			logging.Error("health server error", "error", err)
		}
	}()

	logging.Info("bot starting",
		"username", bot.Self.UserName,
		"engine", engine.Name(),
		"model", engine.GetModel(),
	)
	runPolling(ctx, bot, func(upd tgbotapi.Update) {
		r.HandleUpdate(ctx, upd)
	})
}
