package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/geniuspath/internal/api"
	"github.com/example/geniuspath/internal/config"
	"github.com/example/geniuspath/internal/content"
	"github.com/example/geniuspath/internal/database"
	"github.com/example/geniuspath/internal/excel"
	"github.com/example/geniuspath/internal/notify"
	"github.com/example/geniuspath/internal/review"
	"github.com/example/geniuspath/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system env")
	}

	flags := config.Flags()
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := database.Connect(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Lesson library; the embedded dataset is only decoded once card
	// generation first needs it
	library := content.NewLibrary()
	if cfg.Content.ImportPath != "" {
		lessons, result, err := excel.ImportLessons(excel.DefaultImportConfig(cfg.Content.ImportPath))
		if err != nil {
			slog.Error("curriculum import failed", "path", cfg.Content.ImportPath, "error", err)
			os.Exit(1)
		}
		if err := library.Add(lessons); err != nil {
			slog.Error("curriculum merge failed", "error", err)
			os.Exit(1)
		}
		slog.Info("curriculum imported", "lessons", result.Lessons, "rows", result.TotalProcessed, "skipped", result.Skipped)
	}

	store := review.NewStore(library)
	server := api.NewServer(store, cfg.Server.AllowedOrigins)

	// Due-card reminders run only when a Telegram bot is configured
	if cfg.Telegram.BotToken != "" {
		notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken)
		if err != nil {
			slog.Error("failed to create telegram notifier", "error", err)
			os.Exit(1)
		}
		sched := scheduler.New(notifier, cfg.Reminders.StartHour, cfg.Reminders.EndHour)
		sched.Start()
		defer sched.Stop()
	} else {
		slog.Info("telegram token not configured, reminders disabled")
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Handler(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()
	slog.Info("review service started", "port", cfg.Server.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
}
