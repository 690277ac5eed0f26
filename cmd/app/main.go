package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"routeplanner/cmd"
	httpin "routeplanner/internal/adapters/in/http"
	"routeplanner/internal/metrics"
	"routeplanner/internal/observability"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

const serviceName = "routeplanner"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	configs := getConfigs()

	tracerProvider, shutdownTracing, err := observability.InitTracing(serviceName, configs.OTelTracesExporter, nil)
	if err != nil {
		log.Fatalf("Error initializing tracing: %v", err)
	}
	metrics.Register()

	app, err := cmd.NewCompositionRoot(ctx, configs, logger)
	if err != nil {
		log.Fatalf("Error building application: %v", err)
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(httpin.Metrics(), httpin.Tracing(tracerProvider.Tracer(serviceName)))

	limit, err := configs.RateLimit()
	if err != nil {
		log.Fatalf("Error reading configuration: %v", err)
	}
	if limit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(limit)))
	}
	apiDoc, err := httpin.OpenAPI(ctx)
	if err != nil {
		log.Fatalf("Error loading API description: %v", err)
	}
	validator, err := httpin.RequestValidator(apiDoc)
	if err != nil {
		log.Fatalf("Error building request validator: %v", err)
	}
	httpin.RegisterHandlers(e, app.CreateHTTPServer(), validator)
	if err = httpin.RegisterDocs(e, apiDoc); err != nil {
		log.Fatalf("Error registering API docs: %v", err)
	}

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	jobManager.StopAll()
	if err = app.Close(); err != nil {
		logger.Error("closing connections failed", "error", err)
	}
	if err = shutdownTracing(shutdownCtx); err != nil {
		logger.Error("flushing traces failed", "error", err)
	}
}

func getConfigs() cmd.Config {
	// a missing .env is fine, the environment may carry everything
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	return cmd.Config{
		HTTPPort:             port,
		DBHost:               os.Getenv("DB_HOST"),
		DBPort:               os.Getenv("DB_PORT"),
		DBUser:               os.Getenv("DB_USER"),
		DBPassword:           os.Getenv("DB_PASSWORD"),
		DBName:               os.Getenv("DB_NAME"),
		DBSslMode:            os.Getenv("DB_SSLMODE"),
		Storage:              os.Getenv("STORAGE"),
		FleetFile:            os.Getenv("FLEET_FILE"),
		DepotLat:             os.Getenv("DEPOT_LAT"),
		DepotLng:             os.Getenv("DEPOT_LNG"),
		DistanceMetric:       os.Getenv("DISTANCE_METRIC"),
		StopAllowanceMinutes: os.Getenv("STOP_ALLOWANCE_MINUTES"),
		AverageSpeedKmh:      os.Getenv("AVERAGE_SPEED_KMH"),
		TrackingSchedule:     os.Getenv("TRACKING_SCHEDULE"),
		RedisURL:             os.Getenv("REDIS_URL"),
		OTelTracesExporter:   os.Getenv("OTEL_TRACES_EXPORTER"),
		RateLimitRPS:         os.Getenv("RATE_LIMIT_RPS"),
	}
}
