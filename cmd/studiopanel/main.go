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

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	gmailadapter "github.com/ericfisherdev/studiopanel/internal/adapter/driven/gmail"
	sqliteadapter "github.com/ericfisherdev/studiopanel/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/studiopanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/studiopanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/studiopanel/internal/application"
	"github.com/ericfisherdev/studiopanel/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Mailbox features need both the OAuth client and a key to store tokens.
	mailboxConfigured := cfg.HasMailboxCredentials() && cfg.SecretKey != nil
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"identity_header", cfg.IdentityHeader,
		"auto_provision", cfg.AutoProvision,
		"mail_timeout", cfg.MailTimeout,
		"mailbox_configured", mailboxConfigured,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer, slog.Default()); err != nil {
		return err
	}

	// 5. Wire driven adapters.
	profileStore := sqliteadapter.NewProfileRepo(db)
	projectStore := sqliteadapter.NewProjectRepo(db)
	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)

	mailClient := gmailadapter.NewClient(gmailadapter.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	if !mailboxConfigured {
		slog.Info("mailbox integration disabled: set STUDIOPANEL_GOOGLE_CLIENT_ID, STUDIOPANEL_GOOGLE_CLIENT_SECRET and STUDIOPANEL_SECRET_KEY to enable")
	}

	// 6. Create application services.
	logger := slog.Default()
	tokenSvc := application.NewTokenService(credentialStore, mailClient, cfg.MailTimeout, logger)
	filter := application.NewCorrespondenceFilter(projectStore)
	fetcher := application.NewMessageFetcher(tokenSvc, mailClient, cfg.MessageLimit, cfg.MailTimeout, logger)
	correspondenceSvc := application.NewCorrespondenceService(filter, fetcher)
	mailboxSvc := application.NewMailboxService(credentialStore, mailClient, application.NewStateStore(), cfg.MailTimeout, logger)
	projectSvc := application.NewProjectService(projectStore)
	profileSvc := application.NewProfileService(profileStore, cfg.AutoProvision, logger)
	healthSvc := application.NewHealthService(db, mailboxConfigured)

	// 7. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(projectSvc, filter, correspondenceSvc, mailboxSvc, healthSvc, logger)
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	// 8. Create web handler and register GUI routes.
	webHandler := webhandler.NewHandler(projectSvc, correspondenceSvc, mailboxSvc, mailboxConfigured, logger)
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, logger, profileSvc, cfg.IdentityHeader)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("studiopanel started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
