package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	appcommerce "github.com/sellauth-tools/stockbot/internal/application/commerce"
	apprestock "github.com/sellauth-tools/stockbot/internal/application/restock"
	"github.com/sellauth-tools/stockbot/internal/infrastructure/config"
	"github.com/sellauth-tools/stockbot/internal/infrastructure/id"
	infraobs "github.com/sellauth-tools/stockbot/internal/infrastructure/observability"
	"github.com/sellauth-tools/stockbot/internal/infrastructure/observability/oteltrace"
	"github.com/sellauth-tools/stockbot/internal/infrastructure/observability/prometrics"
	"github.com/sellauth-tools/stockbot/internal/infrastructure/observability/zaplogger"
	"github.com/sellauth-tools/stockbot/internal/infrastructure/sellauth"
	"github.com/sellauth-tools/stockbot/internal/pkg/logging"
	discordpresentation "github.com/sellauth-tools/stockbot/internal/presentation/discord"
	httppresentation "github.com/sellauth-tools/stockbot/internal/presentation/http"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootstrap := logging.MustNewLogger(logging.Options{Service: "stockbot"})
		bootstrap.Error("config_invalid", zap.Error(err))
		_ = bootstrap.Sync()
		return 1
	}

	baseLogger, err := logging.NewLogger(logging.Options{
		Service: cfg.Log.Service,
		Env:     cfg.Log.Env,
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
	})
	if err != nil {
		bootstrap := logging.MustNewLogger(logging.Options{Service: cfg.Log.Service})
		bootstrap.Error("logger_init_failed", zap.Error(err))
		_ = bootstrap.Sync()
		return 1
	}
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracing, err := oteltrace.NewTracerProvider(ctx, oteltrace.Config{
		Endpoint:      cfg.Telemetry.Endpoint,
		Insecure:      cfg.Telemetry.Insecure,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
		ServiceName:   cfg.Log.Service,
		Environment:   cfg.Log.Env,
	}, systemLogger)
	if err != nil {
		systemLogger.Error("tracing_init_failed", zap.Error(err))
		return 1
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			systemLogger.Error("tracing_shutdown_error", zap.Error(err))
		}
	}()

	logger := zaplogger.New(baseLogger)
	tel := infraobs.New(
		tracing.Tracer(cfg.Log.Service),
		logger,
		prometrics.New(prometheus.DefaultRegisterer, "", ""),
	)

	client := sellauth.NewClient(&http.Client{Timeout: cfg.SellAuth.Timeout}, cfg.SellAuth.APIKey, tel)
	shop := sellauth.NewShop(client, cfg.SellAuth.BaseURL, cfg.SellAuth.ShopID)

	commerceService := appcommerce.NewService(shop, tel)
	submitStock := apprestock.NewSubmitStockUseCase(shop, tel)

	router := discordpresentation.NewRouter(commerceService, submitStock, id.NewUUIDGenerator(), tel)
	bot, err := discordpresentation.NewBot(cfg.Discord.Token, cfg.Discord.GuildID, router, logger)
	if err != nil {
		systemLogger.Error("discord_init_failed", zap.Error(err))
		return 1
	}

	handler := httppresentation.NewHandler(logger, tel, promhttp.Handler())
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				zap.Error(err),
			)
			serverErr <- err
		}
	}()

	exitCode := 0
	if err := bot.Start(ctx); err != nil {
		systemLogger.Error("discord_start_failed", zap.Error(err))
		exitCode = 1
		stop()
	}

	select {
	case <-ctx.Done():
	case <-serverErr:
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := bot.Close(); err != nil {
		systemLogger.Error("discord_close_error", zap.Error(err))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
	return exitCode
}
