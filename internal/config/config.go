package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatasetPath     string
	ModelPath       string
	CatalogPath     string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	CORSAllowedOrigins []string

	// Synthetic forecast configuration. A zero seed means time based.
	ForecastEnabled bool
	ForecastSeed    uint64

	// Report publishing configuration.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	forecastEnabled, err := parseBool("FORECAST_ENABLED", true)
	if err != nil {
		return nil, err
	}

	forecastSeed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("FORECAST_SEED", "0"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid FORECAST_SEED")
	}

	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatasetPath:     sharedcfg.EnvOrDefault("DATASET_PATH", "Processed_Crop_stage.csv"),
		ModelPath:       os.Getenv("MODEL_PATH"),
		CatalogPath:     os.Getenv("ADVISORY_CATALOG_PATH"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CORSAllowedOrigins: sharedcfg.ParseBrokers(os.Getenv("CORS_ALLOWED_ORIGINS")),

		ForecastEnabled: forecastEnabled,
		ForecastSeed:    forecastSeed,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "crop-stage-advisories"),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}
