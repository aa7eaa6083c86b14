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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"posu-analytics/internal/audit"
	"posu-analytics/internal/auth"
	"posu-analytics/internal/config"
	"posu-analytics/internal/db"
	"posu-analytics/internal/export"
	"posu-analytics/internal/geo"
	httphandler "posu-analytics/internal/http"
	"posu-analytics/internal/http/middleware"
	"posu-analytics/internal/logger"
	"posu-analytics/internal/period"
	"posu-analytics/internal/repository"
	"posu-analytics/internal/secure"
	"posu-analytics/internal/service"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}
	if cfg.DB.AutoMigrate {
		if err := db.Migrate(database); err != nil {
			appLogger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	cipher, err := secure.NewCipher(cfg.Security.AppKey)
	if err != nil {
		return fmt.Errorf("failed to build cipher: %w", err)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone: %w", err)
	}
	periods := period.NewResolver(period.SystemClock{}, loc)

	namer := geo.NewNamer([]geo.Provider{
		geo.NewMapbox(cfg.Geocode.MapboxBaseURL, cfg.Geocode.MapboxToken, cfg.Geocode.Timeout, nil),
		geo.NewNominatim(cfg.Geocode.NominatimBaseURL, cfg.Geocode.UserAgent, cfg.Geocode.Timeout, nil),
	}, geocodeCache(cfg, appLogger), appLogger)

	sinks := []audit.Sink{audit.NewTableSink(database)}
	if cfg.Audit.AMQPURL != "" {
		broker, err := audit.NewBrokerSink(cfg.Audit.AMQPURL, cfg.Audit.Queue)
		if err != nil {
			appLogger.Warn().Err(err).Msg("audit broker unavailable, writing audit logs to the table only")
		} else {
			sinks = append(sinks, broker)
		}
	}
	recorder := audit.NewRecorder(appLogger, sinks...)

	pdf := export.NewPDFExporter()
	exporters := export.NewRegistry(
		export.NewExcelExporter(),
		pdf,
		export.NewWordExporter(pdf, cfg.Export.WordConverterURL, cfg.Export.WordConverterAPIKey, nil),
	)
	files := export.NewLocalStorage(cfg.Export.StorageDir, cfg.HTTP.PublicBaseURL)

	transactionRepo := repository.NewTransactionRepository(database)
	analyticsRepo := repository.NewAnalyticsRepository(database)
	actorRepo := repository.NewActorRepository(database)
	reportRepo := repository.NewReportRepository(database)

	analyticsService := service.NewAnalyticsService(analyticsRepo, periods, namer, appLogger)
	transactionService := service.NewTransactionService(transactionRepo, actorRepo, periods, namer, cipher, recorder, appLogger)
	reportService := service.NewReportService(service.ReportDeps{
		Transactions: transactionRepo,
		Analytics:    analyticsRepo,
		Reports:      reportRepo,
		Actors:       actorRepo,
		Periods:      periods,
		Cipher:       cipher,
		Exporters:    exporters,
		Files:        files,
		Audit:        recorder,
	}, appLogger)

	perms, err := auth.NewPermissions()
	if err != nil {
		return fmt.Errorf("failed to load permissions: %w", err)
	}
	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(
		analyticsService,
		transactionService,
		reportService,
		service.NewAuditService(repository.NewAuditRepository(database)),
		appLogger,
	)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), perms, httphandler.RouterConfig{
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
	}, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info().Str("addr", addr).Msg("starting posu analytics service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
		return err
	}
	if err := recorder.Close(); err != nil {
		appLogger.Warn().Err(err).Msg("failed to close audit sinks")
	}

	appLogger.Info().Msg("server exited")
	return nil
}

func geocodeCache(cfg *config.Config, log zerolog.Logger) geo.Cache {
	if cfg.Redis.Addr == "" {
		return geo.NewMemoryCache(cfg.Geocode.CacheTTL)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis geocode cache")
	return geo.NewRedisCache(client, cfg.Geocode.CacheTTL)
}
