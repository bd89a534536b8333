package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/microblog/internal/app"
	"github.com/crucial707/microblog/internal/config"
	"github.com/crucial707/microblog/internal/db"
	"github.com/crucial707/microblog/internal/events"
	"github.com/crucial707/microblog/internal/mail"
	"github.com/crucial707/microblog/internal/repo"
	"github.com/crucial707/microblog/internal/scheduler"
	"github.com/crucial707/microblog/internal/tokenstore"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	setupLogger(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration", err)
	}

	// Connect to database FIRST
	conn, err := db.Connect(cfg)
	if err != nil {
		fatal("failed to connect to database", err)
	}
	defer conn.Close()
	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if cfg.AutoMigrate {
		if err := db.Run(cfg.DatabaseURL()); err != nil {
			fatal("migrations failed", err)
		}
		slog.Info("migrations applied")
	}

	ctx := context.Background()
	ledger, err := tokenstore.New(ctx, cfg.RedisURL)
	if err != nil {
		fatal("failed to connect to redis", err)
	}
	defer ledger.Close()
	if !ledger.Enabled() {
		slog.Warn("REDIS_URL not set; password reset links can be reused until they expire")
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		if publisher, err = events.Connect(cfg.NATSURL); err != nil {
			fatal("failed to connect to nats", err)
		}
	}
	defer publisher.Close()

	sender, err := mail.NewSender(cfg)
	if err != nil {
		fatal("invalid mail configuration", err)
	}
	outbox := repo.NewOutboxRepo(conn)
	queue := mail.NewQueue(sender, outbox, cfg.MailWorkers, cfg.MailQueueSize)
	slog.Info("mail queue started", "provider", sender.Name(), "workers", cfg.MailWorkers)

	retry, err := scheduler.Start(cfg.MailRetryCron, outbox, queue, cfg.MailMaxAttempts)
	if err != nil {
		fatal("invalid MAIL_RETRY_CRON", err)
	}

	a := app.New(cfg, conn, app.Deps{
		Ledger: ledger,
		Mailer: queue,
		Events: publisher,
	})
	router, err := newRouter(a)
	if err != nil {
		fatal("failed to build router", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server LAST
	go func() {
		var err error
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			slog.Info("server starting", "port", cfg.Port, "tls", true)
			err = server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			slog.Info("server starting", "port", cfg.Port, "tls", false)
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	<-retry.Stop().Done()
	if err := queue.Shutdown(shutdownCtx); err != nil {
		slog.Error("mail queue shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func setupLogger(format string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
