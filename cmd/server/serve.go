package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/welldanyogia/projecthub-backend/internal/api"
	"github.com/welldanyogia/projecthub-backend/internal/api/middleware"
	"github.com/welldanyogia/projecthub-backend/internal/config"
	"github.com/welldanyogia/projecthub-backend/internal/database"
	"github.com/welldanyogia/projecthub-backend/internal/logger"
	"github.com/welldanyogia/projecthub-backend/internal/mailer"
	"github.com/welldanyogia/projecthub-backend/internal/metrics"
	"github.com/welldanyogia/projecthub-backend/internal/repository"
	"github.com/welldanyogia/projecthub-backend/internal/services"
	"github.com/welldanyogia/projecthub-backend/internal/storage"
	"github.com/welldanyogia/projecthub-backend/internal/websocket"
	"golang.org/x/time/rate"
)

// shutdownTimeout bounds draining in-flight requests
const shutdownTimeout = 15 * time.Second

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, WebSocket hub and project start trigger",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run schema migrations on start")
}

func serve() error {
	cfg, log, db, err := setup()
	if err != nil {
		return err
	}
	defer database.Close(db)

	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to authenticate API and WebSocket clients")
	}

	if !skipMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}
	security := logger.NewSecurityLogger()
	store := repository.NewStore(db)

	hub := websocket.NewHub(log, m)
	go hub.Run()
	defer hub.Shutdown()

	wsServer := websocket.NewServer(hub, cfg.JWTSecret,
		websocket.NewSecureUpgrader(cfg.AllowedOriginList(), security), security, log)

	resolver := services.NewRecipientResolver(store.Directory)
	notifier := services.NewNotifier(store, notifierConfig(cfg, hub, hub, m, log))
	mails := services.NewMailService(store, resolver, mailServiceConfig(cfg, hub, notifier, m, log))

	files, err := storage.NewLocalStorage(cfg.AttachmentStoragePath, security)
	if err != nil {
		return err
	}

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRequests), cfg.RateLimitBurst)
	go limiter.RunSweeper(ctx)

	router := api.NewRouter(&api.RouterConfig{
		DB:             db,
		Store:          store,
		Mails:          mails,
		Notifier:       notifier,
		Resolver:       resolver,
		FileStorage:    files,
		Hub:            hub,
		WebSocket:      wsServer,
		Metrics:        m,
		Logger:         log,
		Security:       security,
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOriginList(),
		Production:     cfg.IsProduction(),
		RateLimiter:    limiter,
	})

	if cfg.SchedulerEnabled {
		scheduler, err := services.NewProjectStartScheduler(resolver, notifier, services.ProjectStartSchedulerConfig{
			Interval:   cfg.SchedulerInterval,
			Cron:       cfg.SchedulerCron,
			RunOnStart: cfg.SchedulerRunOnStart,
		}, m, log)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown incomplete", slog.Any("error", err))
	}

	log.Info("server stopped")
	return nil
}

// notifierConfig wires the e-mail relay only when one is configured
func notifierConfig(cfg *config.Config, publisher services.Publisher, presence services.Presence, m *metrics.Metrics, log *slog.Logger) services.NotifierConfig {
	nc := services.NotifierConfig{
		Publisher: publisher,
		Presence:  presence,
		Metrics:   m,
		Logger:    log,
	}
	if relay := mailer.New(mailer.Config{Addr: cfg.SMTPRelayAddr, From: cfg.SMTPRelayFrom}, log); relay != nil {
		nc.Relay = relay
	}
	return nc
}

// mailServiceConfig hands the notifier to the mail service only when mail
// notifications are switched on
func mailServiceConfig(cfg *config.Config, publisher services.Publisher, notifier services.Notifier, m *metrics.Metrics, log *slog.Logger) services.MailServiceConfig {
	mc := services.MailServiceConfig{
		Publisher: publisher,
		Metrics:   m,
		Logger:    log,
	}
	if cfg.MailNotificationsEnabled {
		mc.Notifier = notifier
	}
	return mc
}
