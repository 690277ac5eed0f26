package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"routeplanner/internal/adapters/out/postgres"
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/domain/services"

	"golang.org/x/time/rate"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds the raw settings read from the environment. Empty values
// fall back to the defaults of the accessor methods.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// Storage is "memory" or "postgres".
	Storage   string
	FleetFile string

	DepotLat             string
	DepotLng             string
	DistanceMetric       string
	StopAllowanceMinutes string
	AverageSpeedKmh      string

	TrackingSchedule   string
	RedisURL           string
	OTelTracesExporter string
	RateLimitRPS       string
}

func (c Config) StorageKind() (string, error) {
	switch s := strings.ToLower(strings.TrimSpace(c.Storage)); s {
	case "", StorageMemory:
		return StorageMemory, nil
	case StoragePostgres:
		return StoragePostgres, nil
	default:
		return "", fmt.Errorf("STORAGE: unknown storage %q", c.Storage)
	}
}

func (c Config) DSN() string {
	return postgres.DSN(c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) FleetPath() string {
	if c.FleetFile == "" {
		return "fleet.yaml"
	}
	return c.FleetFile
}

// TravelPolicy builds the planned-time policy; either setting may be left
// empty to keep its default.
func (c Config) TravelPolicy() (route.TravelPolicy, error) {
	allowance := route.DefaultStopAllowance
	if c.StopAllowanceMinutes != "" {
		minutes, err := strconv.ParseFloat(c.StopAllowanceMinutes, 64)
		if err != nil {
			return route.TravelPolicy{}, fmt.Errorf("STOP_ALLOWANCE_MINUTES: %w", err)
		}
		allowance = time.Duration(minutes * float64(time.Minute))
	}

	speed := route.DefaultAverageSpeedKmh
	if c.AverageSpeedKmh != "" {
		var err error
		if speed, err = strconv.ParseFloat(c.AverageSpeedKmh, 64); err != nil {
			return route.TravelPolicy{}, fmt.Errorf("AVERAGE_SPEED_KMH: %w", err)
		}
	}

	return route.NewTravelPolicy(allowance, speed)
}

// Optimizer builds the route optimizer from the depot position and metric.
// The depot defaults to the origin.
func (c Config) Optimizer() (services.RouteOptimizer, error) {
	lat, err := parseFloat("DEPOT_LAT", c.DepotLat)
	if err != nil {
		return services.RouteOptimizer{}, err
	}
	lng, err := parseFloat("DEPOT_LNG", c.DepotLng)
	if err != nil {
		return services.RouteOptimizer{}, err
	}
	depot, err := kernel.NewLocation(lat, lng)
	if err != nil {
		return services.RouteOptimizer{}, fmt.Errorf("depot: %w", err)
	}

	metric, err := kernel.ParseDistanceMetric(strings.ToLower(c.DistanceMetric))
	if err != nil {
		return services.RouteOptimizer{}, fmt.Errorf("DISTANCE_METRIC: %w", err)
	}
	return services.NewRouteOptimizer(depot, metric), nil
}

// RateLimit is the allowed requests per second per client; zero disables
// limiting.
func (c Config) RateLimit() (rate.Limit, error) {
	rps, err := parseFloat("RATE_LIMIT_RPS", c.RateLimitRPS)
	if err != nil {
		return 0, err
	}
	if rps < 0 {
		return 0, fmt.Errorf("RATE_LIMIT_RPS: %v is negative", rps)
	}
	return rate.Limit(rps), nil
}

func parseFloat(key, raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
