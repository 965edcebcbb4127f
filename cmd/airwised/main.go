package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"airwise-backend/config"
	"airwise-backend/internal/acapi"
	"airwise-backend/internal/api"
	"airwise-backend/internal/authz"
	"airwise-backend/internal/command"
	"airwise-backend/internal/db"
	"airwise-backend/internal/events"
	"airwise-backend/internal/logging"
	"airwise-backend/internal/notification"
	"airwise-backend/internal/objects"
	"airwise-backend/internal/scheduler"
	"airwise-backend/internal/security"
	"airwise-backend/internal/store"
	"airwise-backend/internal/users"
)

const roleCacheTTL = 5 * time.Minute

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath), zap.String("system_id", cfg.System.SystemID))

	if err := run(cfg, logger); err != nil {
		logger.Fatal("airwise stopped with error", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	appStore := store.NewGormStore(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewRealClock()
	gate := authz.NewGate(appStore, cfg.System, roleCacheTTL)
	gateway := acapi.NewClient(cfg.ACAPI, logger.Named("acapi"))

	push := pushOptions(cfg.Push, logger)

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, push,
		mailer(cfg.Mail, logger), events.New(cfg.Events, logger.Named("events")), logger.Named("notify"))
	pool.Start(ctx)
	notifier := notification.NewNotifier(appStore, cfg.System, clock, pool, logger.Named("notify"))

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return err
	}
	engine := command.NewEngine(appStore, cfg.System, gate, gateway, notifier, clock, logger.Named("command")).WithLocation(loc)

	tasks, err := scheduler.NewService(cfg.Scheduler, appStore, cfg.System, engine, clock, logger.Named("scheduler"))
	if err != nil {
		return err
	}
	go tasks.Run(ctx)

	monitor := security.NewMonitor(cfg.Security, appStore, cfg.System, gateway, notifier, clock, logger.Named("security"))
	go monitor.Run(ctx)

	handler := api.NewHandler(cfg.System, appStore, api.Services{
		Commands: engine,
		Objects:  objects.NewService(appStore, cfg.System, gate, clock, logger.Named("objects")),
		Users:    users.NewService(appStore, cfg.System, gate, logger.Named("users")),
		Gate:     gate,
	}, push, logger.Named("http"))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(cfg.Server, handler),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutdown signal received, stopping services", zap.String("signal", sig.String()))
	case err := <-serveErr:
		return fmt.Errorf("HTTP server: %w", err)
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}

// pushOptions returns nil when VAPID keys are missing, which disables the
// push channel.
func pushOptions(cfg config.PushConfig, logger *zap.Logger) *webpush.Options {
	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		logger.Warn("VAPID keys are not configured, web push is disabled")
		return nil
	}
	return &webpush.Options{
		VAPIDPublicKey:  cfg.PublicKey,
		VAPIDPrivateKey: cfg.PrivateKey,
		Subscriber:      cfg.Subject,
		TTL:             cfg.TTL,
	}
}

// mailer returns nil when SMTP is not configured.
func mailer(cfg config.MailConfig, logger *zap.Logger) notification.MailSender {
	sender, err := notification.NewSMTPSender(cfg)
	if err != nil {
		logger.Warn("email delivery disabled", zap.Error(err))
		return nil
	}
	if sender == nil {
		logger.Info("mail host is empty, email delivery is disabled")
		return nil
	}
	return sender
}
