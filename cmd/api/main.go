package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agendei/internal/api"
	"agendei/internal/config"
	"agendei/internal/database"
	"agendei/internal/domain"
	"agendei/internal/events"
	"agendei/internal/logging"
	"agendei/internal/metrics"
	"agendei/internal/models"
	"agendei/internal/notification"
	"agendei/internal/service"
	"agendei/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	store, storeCloser := initNotificationStore(cfg, &logger)
	if storeCloser != nil {
		defer storeCloser.Close()
	}

	eventBus := events.NewEventBus()
	subscribeEventLog(eventBus, &logger)

	appointments := service.NewAppointmentService(db, eventBus, &logger)
	users := service.NewUserService(db, &logger)
	schedule := service.NewScheduleService(db)

	httpServer := api.NewHTTPServer(cfg, users, appointments, schedule, store, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := worker.NewDispatcher(db, store, &logger)
	go dispatcher.Run(ctx)

	startMetrics(ctx, cfg, &logger)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.Component(baseLogger, "api-main")

	return cfg, logger, closer, nil
}

// initNotificationStore wires redis as the primary notification store with an
// in-memory fallback. When redis is unreachable at boot the service still
// comes up, the failover wrapper retries the primary later.
func initNotificationStore(cfg *config.Config, logger *zerolog.Logger) (domain.NotificationStore, io.Closer) {
	if cfg.Redis.Address == "" {
		logger.Warn().Msg("redis address not configured, notifications held in memory only")
		return notification.NewMemoryStore(), nil
	}

	client := notification.NewRedisClient(cfg.Redis)
	if err := notification.Ping(context.Background(), client); err != nil {
		logger.Warn().Err(err).Msg("redis ping failed, failover store will retry")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	primary := notification.NewRedisStore(client, models.NotificationsTTL)
	return notification.NewFailoverStore(primary, notification.NewMemoryStore(), logger), client
}

func subscribeEventLog(bus *events.EventBus, logger *zerolog.Logger) {
	eventLogger := logging.Component(logger, "events")
	handler := func(event *events.Event) error {
		eventLogger.Info().
			Str("event", event.Type).
			RawJSON("payload", event.Payload).
			Msg("domain event")
		return nil
	}
	bus.Subscribe(events.EventAppointmentCreated, handler)
	bus.Subscribe(events.EventAppointmentCanceled, handler)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
