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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/medpet-whatsapp-bot/cmd/mainconfig"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/api/router"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/app/bootstrap"
	appconfig "github.com/wolfman30/medpet-whatsapp-bot/internal/config"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/conversation"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/http/handlers"
	observemetrics "github.com/wolfman30/medpet-whatsapp-bot/internal/observability/metrics"
	"github.com/wolfman30/medpet-whatsapp-bot/internal/whatsapp"
	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medpet whatsapp bot",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := buildServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildServer wires every collaborator and returns the HTTP handler plus a
// cleanup func releasing pools and clients. Background work stops with ctx.
func buildServer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var awsCfg aws.Config
	if mainconfig.UsesAWS(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, cleanup, err
		}
		awsCfg = loaded
	}

	pool := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		closers = append(closers, pool.Close)
	}
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	metricsHandler, metrics := setupBotMetrics()

	ledgerImpl, err := bootstrap.BuildLedger(ctx, cfg, pool, bootstrap.BuildBookingNotifier(cfg, awsCfg, logger), logger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("build ledger: %w", err)
	}

	var assistant conversation.Assistant
	svc, err := bootstrap.BuildAssistant(ctx, cfg, awsCfg, logger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("build assistant: %w", err)
	}
	if svc != nil {
		assistant = svc
	}

	if cfg.GraphAPIToken == "" || cfg.BusinessPhone == "" {
		logger.Warn("GRAPH_API_TOKEN or BUSINESS_PHONE missing; outbound messages will fail")
	}
	gateway := whatsapp.NewClient(whatsapp.ClientConfig{
		MessagesURL: cfg.GraphMessagesURL(),
		Token:       cfg.GraphAPIToken,
		Timeout:     time.Duration(cfg.GraphTimeoutSecs) * time.Second,
	}, logger)

	sessions := conversation.NewMemorySessionStore(cfg.SessionTTL)
	metrics.RegisterSessionGauge(sessions.Len)
	go sessions.RunJanitor(ctx, cfg.SessionSweepInterval, logger)

	engine := conversation.NewEngine(conversation.EngineConfig{
		Gateway:   gateway,
		Assistant: assistant,
		Ledger:    ledgerImpl,
		Sessions:  sessions,
		Observer:  metrics,
		Logger:    logger,
	})

	if cfg.WhatsAppAppSecret == "" {
		logger.Warn("WHATSAPP_APP_SECRET not set; webhook signatures are not verified")
	}
	webhook := handlers.NewWhatsAppWebhookHandler(handlers.WhatsAppWebhookConfig{
		Engine:      engine,
		Processed:   bootstrap.BuildProcessedTracker(ctx, cfg, redisClient, pool, logger),
		VerifyToken: cfg.WebhookVerifyToken,
		AppSecret:   cfg.WhatsAppAppSecret,
		Metrics:     metrics,
		Logger:      logger,
	})

	return router.New(&router.Config{
		Logger:         logger,
		WhatsApp:       webhook,
		MetricsHandler: metricsHandler,
	}), cleanup, nil
}

func setupBotMetrics() (http.Handler, *observemetrics.BotMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), observemetrics.NewBotMetrics(reg)
}
