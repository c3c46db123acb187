package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	APIBearerToken  string

	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string

	BatchSize          int
	BatchFlushInterval time.Duration

	// Reference data: a CSV path, a Postgres DSN, or the bundled dataset when both are empty.
	ReferenceDataPath    string
	ReferenceDatabaseURL string

	DefaultTopN             int
	RecommendationCacheSize int

	// Remote model configuration.
	MLAPIURL     string
	MLAPIEnabled bool
	MLAPITimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	mlTimeoutStr := sharedcfg.EnvOrDefault("ML_API_TIMEOUT", "5s")
	mlTimeout, err2 := time.ParseDuration(mlTimeoutStr)
	if err2 != nil || mlTimeout <= 0 {
		return nil, errors.New("invalid ML_API_TIMEOUT")
	}

	topN, err := parsePositiveInt("DEFAULT_TOP_N", 5)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseCacheSize()
	if err != nil {
		return nil, err
	}

	mlURL := os.Getenv("ML_API_URL")
	mlEnabled := mlURL != ""
	if v := os.Getenv("ML_API_ENABLED"); v != "" {
		mlEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		APIBearerToken:  os.Getenv("API_BEARER_TOKEN"),

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic: sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "soil-advisory-requests"),
		KafkaSinkTopic:   sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "crop-advisories"),
		KafkaGroupID:     sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "crop-advisory-service"),

		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ReferenceDataPath:    os.Getenv("REFERENCE_DATA_PATH"),
		ReferenceDatabaseURL: os.Getenv("REFERENCE_DATABASE_URL"),

		DefaultTopN:             topN,
		RecommendationCacheSize: cacheSize,

		MLAPIURL:     mlURL,
		MLAPIEnabled: mlEnabled,
		MLAPITimeout: mlTimeout,
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == cfg.KafkaSinkTopic {
			return nil, fmt.Errorf("KAFKA_SOURCE_TOPIC and KAFKA_SINK_TOPIC must differ, both are %q", cfg.KafkaSourceTopic)
		}
	}
	if cfg.ReferenceDataPath != "" && cfg.ReferenceDatabaseURL != "" {
		return nil, errors.New("set only one of REFERENCE_DATA_PATH and REFERENCE_DATABASE_URL")
	}
	if cfg.MLAPIEnabled {
		if cfg.MLAPIURL == "" {
			return nil, errors.New("ML_API_ENABLED is true but ML_API_URL is not set")
		}
		if u, err := url.Parse(cfg.MLAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid ML_API_URL %q", cfg.MLAPIURL)
		}
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}

// parseCacheSize allows 0, which disables the recommendation cache.
func parseCacheSize() (int, error) {
	s := os.Getenv("RECOMMENDATION_CACHE_SIZE")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid RECOMMENDATION_CACHE_SIZE %q", s)
	}
	return n, nil
}
