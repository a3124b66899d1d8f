package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sheet-reader/api/internal/config"
	"sheet-reader/api/internal/handle"
	"sheet-reader/api/internal/httpserver"
	"sheet-reader/api/internal/logging"
	"sheet-reader/api/internal/ocr"
	"sheet-reader/api/internal/ocr/engines"
	"sheet-reader/api/internal/staging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("config load error", "error", err)
	}
	logging.Init(cfg.Log)
	if key := cfg.MissingCredential(); key != "" {
		logging.Warn("missing "+key+"; analysis requests will fail until it is set", "provider", cfg.Provider)
	}

	engine, err := engines.FromConfig(cfg)
	if err != nil {
		logging.Fatal("engine init error", "error", err)
	}

	stager, err := staging.New(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		logging.Fatal("staging init error", "error", err)
	}

	analyzer := ocr.NewAnalyzer(engine, cfg.AnalyzeTimeout)
	h := handle.New(analyzer, stager, cfg.IsDevelopment())
	router := httpserver.NewRouter(h, engine.Name(), engine.GetModel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("sheet-reader starting",
		"engine", engine.Name(),
		"model", engine.GetModel(),
		"upload_dir", stager.Dir(),
		"max_upload_bytes", stager.MaxBytes(),
		"analyze_timeout", cfg.AnalyzeTimeout.String(),
		"env", cfg.Env,
	)
	if err := httpserver.Serve(ctx, ":"+cfg.Port, router); err != nil {
		logging.Fatal("server error", "error", err)
	}
}
