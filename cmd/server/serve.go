package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/taskflow-api/internal/config"
	"github.com/yukikurage/taskflow-api/internal/database"
	"github.com/yukikurage/taskflow-api/internal/events"
	"github.com/yukikurage/taskflow-api/internal/logger"
	"github.com/yukikurage/taskflow-api/internal/mailer"
	"github.com/yukikurage/taskflow-api/internal/server"
	"github.com/yukikurage/taskflow-api/internal/services"
)

const shutdownTimeout = 15 * time.Second

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run schema migrations on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if !skipMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	sessionStore, err := server.NewSessionStore(cfg)
	if err != nil {
		return err
	}

	objectStore, err := server.NewObjectStore(cfg)
	if err != nil {
		return err
	}

	sink, closeSink := deadLetterSink(cfg)
	defer closeSink()
	dispatcher := events.NewDispatcher(cfg.SideEffectTimeout, sink)

	var sender mailer.Sender = mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.EmailHost,
		Port:     cfg.EmailPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPassword,
	})
	if !sender.Configured() {
		logger.Warn("Email service not configured; assignment notifications are disabled")
	}

	var ai *services.AIService
	if services.OpenAIKeyConfigured(cfg.OpenAIAPIKey) {
		ai = services.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		logger.Warn("OpenAI API key not configured; chat replies will report the missing key")
	}

	router := server.NewRouter(server.Dependencies{
		DB:            db,
		SessionStore:  sessionStore,
		ObjectStore:   objectStore,
		Dispatcher:    dispatcher,
		Mailer:        sender,
		Chat:          services.NewChatService(ai, cfg.ChatTimeout),
		AppURL:        cfg.AppURL,
		MaxUploadSize: cfg.MaxUploadSize,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", srv.Addr, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Side effects still running at shutdown", "error", err)
	}

	logger.Info("Server stopped")
	return nil
}

// deadLetterSink logs failed side effects and, when NATS_URL is set, also
// publishes them to the dead-letter subject.
func deadLetterSink(cfg *config.Config) (events.DeadLetterSink, func()) {
	if cfg.NATSURL == "" {
		return events.LogSink{}, func() {}
	}

	nc, err := events.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Warn("NATS unavailable; dead letters are only logged", "url", cfg.NATSURL, "error", err)
		return events.LogSink{}, func() {}
	}

	logger.Info("Dead letters published to NATS", "subject", cfg.DeadLetterSubject)
	return events.MultiSink{events.LogSink{}, events.NewNATSSink(nc, cfg.DeadLetterSubject)}, nc.Close
}
