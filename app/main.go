package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/utopian-io/utbot/app/api"
	"github.com/utopian-io/utbot/app/categories"
	"github.com/utopian-io/utbot/app/cfg"
	"github.com/utopian-io/utbot/app/command"
	"github.com/utopian-io/utbot/app/contrib"
	"github.com/utopian-io/utbot/app/database"
	"github.com/utopian-io/utbot/app/notify"
	"github.com/utopian-io/utbot/app/steem"
	"github.com/utopian-io/utbot/app/tasks"
	"github.com/utopian-io/utbot/app/watcher"
)

func main() {
	// Local development convenience; in production everything comes in
	// through the environment.
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if c == nil {
		// Help was shown, exit gracefully.
		return
	}

	logLevel := slog.LevelInfo
	if c.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting utbot", "version", c.Version, "account", c.Account, "call_token", c.CallToken())

	db, err := database.NewConnection(c.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", c.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", c.DBPath, "migration_version", version, "dirty", dirty)

	spec, err := categories.Load(c.CategoriesFile)
	if err != nil {
		slog.Error("Failed to load category table", "file", c.CategoriesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Category table loaded", "categories", spec.Count())

	watermarkRepo := database.NewWatermarkRepository(db)
	notificationRepo := database.NewNotificationRepository(db)

	chain := steem.NewClient(c.NodeURL, c.UserAgent, nil)
	broadcaster := steem.NewBroadcaster(c.BroadcastURL, c.BroadcastToken, c.Account, c.UserAgent, nil)

	messages := notify.NewMessages(c.CallToken(), c.BotName, c.BotRepoURL, c.UIBaseURL)
	builder := notify.NewEmbedBuilder(spec, c.UIBaseURL)
	replyNotifier := notify.NewReplyNotifier(chain, broadcaster, messages, c.BotName,
		c.ReplyRetryCount, time.Duration(c.ReplyRetryBackoff)*time.Second)

	sink, err := notify.NewWebhookSink()
	if err != nil {
		slog.Error("Failed to create webhook sink", "error", err)
		os.Exit(1)
	}

	contribClient := contrib.NewClient(c.ReviewServiceURL, c.UserAgent, nil,
		c.FetchRetryCount, time.Duration(c.FetchRetryBackoff)*time.Second)

	parser := command.NewParser(c.CallToken())

	scheduler := tasks.NewScheduler(parser, spec, messages, builder, replyNotifier, sink,
		contribClient, watermarkRepo, notificationRepo)
	slog.Info("Starting scheduler", "workers", c.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := watcher.New(chain, spec, scheduler, c.Reviewers, time.Duration(c.BlockInterval)*time.Second)
	watcherErrChan := make(chan error, 1)
	go func() {
		watcherErrChan <- w.Run(ctx)
	}()

	handler := api.NewHandler(spec, watermarkRepo, notificationRepo)
	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-watcherErrChan:
		// Supervision is external; exit and let the process manager restart us.
		slog.Error("Chain watcher terminated", "error", err)
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
