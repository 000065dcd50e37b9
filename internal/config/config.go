package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/currency"
)

type Config struct {
	DatabaseURL    string
	HTTPAddr       string
	RedisAddr      string
	KafkaBrokers   string
	PaymentBaseURL string
	PaymentTimeout time.Duration
	Currency       currency.Unit
	Location       *time.Location
	PickupDays     []time.Weekday
	ReservationTTL time.Duration
	SweepInterval  time.Duration
	CatalogTTL     time.Duration
	MigrationsPath string
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Load reads configuration from the environment. Only DATABASE_URL is required.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		KafkaBrokers:   getEnv("KAFKA_BROKERS", ""),
		PaymentBaseURL: getEnv("PAYMENT_BASE_URL", "http://localhost:8090"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "internal/migrations"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}

	var err error

	if cfg.PaymentTimeout, err = getDuration("PAYMENT_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ReservationTTL, err = getDuration("RESERVATION_TTL", 15*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.CatalogTTL, err = getDuration("CATALOG_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}

	if cfg.Currency, err = currency.ParseISO(getEnv("STORE_CURRENCY", "USD")); err != nil {
		return Config{}, fmt.Errorf("STORE_CURRENCY: %w", err)
	}

	if cfg.Location, err = time.LoadLocation(getEnv("STORE_TIMEZONE", "UTC")); err != nil {
		return Config{}, fmt.Errorf("STORE_TIMEZONE: %w", err)
	}

	if cfg.PickupDays, err = ParsePickupDays(getEnv("PICKUP_DAYS", "wed,fri,sat")); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func ParsePickupDays(csv string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(csv, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if len(part) > 3 {
			part = part[:3]
		}

		day, ok := weekdays[part]
		if !ok {
			return nil, fmt.Errorf("PICKUP_DAYS: unknown weekday %q", part)
		}
		days = append(days, day)
	}

	if len(days) == 0 {
		return nil, errors.New("PICKUP_DAYS is empty")
	}

	return days, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive", key)
	}

	return d, nil
}
