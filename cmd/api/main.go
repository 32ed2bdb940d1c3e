package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/app"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/config"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	// Handle SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	slog.Info("document assistant is running", "port", cfg.Port, "grammar_backend", cfg.GrammarBackend, "pdf_backend", cfg.PDFBackend)
	if err := application.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
		return
	}
	slog.Info("shut down cleanly")
}
