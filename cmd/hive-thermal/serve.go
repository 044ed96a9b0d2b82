package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/hive-thermal/internal/api/http"
	"github.com/i474232898/hive-thermal/internal/catalog"
	"github.com/i474232898/hive-thermal/internal/config"
	"github.com/i474232898/hive-thermal/internal/logging"
	"github.com/i474232898/hive-thermal/internal/publish"
	"github.com/i474232898/hive-thermal/internal/scheduler"
	"github.com/i474232898/hive-thermal/internal/store"
	"github.com/i474232898/hive-thermal/internal/thermal"
	"github.com/i474232898/hive-thermal/internal/weather"
	"github.com/i474232898/hive-thermal/internal/weather/providers"
)

func runServe(parent context.Context, port string) error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port != "" {
		cfg.Port = port
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	species, err := catalog.Load(cfg.SpeciesFile)
	if err != nil {
		return fmt.Errorf("failed to load species: %w", err)
	}
	model, err := thermal.FromVariant(cfg.Model)
	if err != nil {
		return fmt.Errorf("invalid model configuration: %w", err)
	}

	snapshots, closeStore, err := newStore(parent, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker).
	var (
		provs []weather.Provider
		opts  = []weather.Option{
			weather.WithMaxAge(cfg.ConditionsMaxAge),
			weather.WithFallback(thermal.EnvironmentSample{AmbientC: cfg.DefaultAmbientC, Daytime: true}),
			weather.WithLogger(log.Named("conditions")),
		}
	)
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, log))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey, log))
	}
	if cfg.OpenMeteoEnabled {
		// Open-Meteo needs coordinates; city/country lookups go through the geocoder.
		openMeteo := providers.NewOpenMeteoProvider(httpClient, log)
		provs = append(provs, openMeteo)
		opts = append(opts, weather.WithElevation(openMeteo))
	}
	if cfg.GeocoderAPIKey != "" {
		opts = append(opts, weather.WithGeocoder(providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)))
	}
	if len(provs) == 0 {
		log.Warn("no weather providers configured; location solves will use the fallback environment")
	}

	// Core service orchestrating providers and store.
	service := weather.NewService(snapshots, provs, opts...)

	var apiaries []catalog.Apiary
	if cfg.ApiariesFile != "" {
		if apiaries, err = catalog.LoadApiaries(cfg.ApiariesFile, species); err != nil {
			return fmt.Errorf("failed to load apiaries: %w", err)
		}
	}

	var publisher publish.Publisher = publish.Nop{}
	if cfg.MQTTBroker != "" {
		mqttPub, err := publish.ConnectMQTT(publish.MQTTConfig{
			BrokerURL: cfg.MQTTBroker,
			ClientID:  cfg.MQTTClientID,
			Username:  cfg.MQTTUsername,
			Password:  cfg.MQTTPassword,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		publisher = mqttPub
	}
	defer publisher.Close()

	// Monitor that periodically refreshes conditions and re-solves apiaries.
	sched := scheduler.New(apiaries, cfg.MonitorInterval, service, model, species,
		scheduler.WithLocations(cfg.Locations),
		scheduler.WithPublisher(publisher),
		scheduler.WithLogger(log),
	)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "hive-thermal",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "hive-thermal",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Conditions: service,
		Species:    species,
		Model:      model,
		Monitor:    sched,
		Logger:     log.Named("api"),
	})

	// Start server with graceful shutdown
	go func() {
		log.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("error during shutdown", zap.Error(err))
	}
	return nil
}

// newStore returns a Redis-backed store when REDIS_ADDR is set and an
// in-memory one otherwise.
func newStore(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (weather.Store, func(), error) {
	if cfg.RedisAddr == "" {
		return store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Info("using redis conditions store", zap.String("addr", cfg.RedisAddr))
	return store.NewRedisStore(client, cfg.StoreMaxHistory, cfg.StoreMaxAge), func() { _ = client.Close() }, nil
}
