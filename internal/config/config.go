package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Source modes select where raw event batches come from.
const (
	SourceKafka = "kafka"
	SourceAPI   = "api"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// SourceMode is SourceKafka or SourceAPI.
	SourceMode string

	// Events search API configuration.
	NewsAPIToken         string
	NewsAPIBaseURL       string
	NewsAPITimeout       time.Duration
	NewsAPICacheTTL      time.Duration
	NewsAPICacheSize     int
	NewsAPIPollInterval  time.Duration
	NewsAPILookbackHours int

	SampleDataPath      string
	CountryCodesPath    string
	NameMatchingEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
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

	apiTimeout, err := parsePositiveDuration("NEWSAPI_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("NEWSAPI_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}
	pollInterval, err := parsePositiveDuration("NEWSAPI_POLL_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	lookback, err := parsePositiveInt("NEWSAPI_LOOKBACK_HOURS", 24)
	if err != nil {
		return nil, err
	}

	nameMatching := false
	if v := os.Getenv("NAME_MATCHING_ENABLED"); v != "" {
		nameMatching, err = strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid NAME_MATCHING_ENABLED")
		}
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-tariff-events"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "normalized-tariff-events"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "tariff-events-etl"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		SourceMode: sharedcfg.EnvOrDefault("SOURCE_MODE", SourceKafka),

		NewsAPIToken:         os.Getenv("NEWSAPI_TOKEN"),
		NewsAPIBaseURL:       sharedcfg.EnvOrDefault("NEWSAPI_BASE_URL", "https://events.newscatcherapi.xyz/api"),
		NewsAPITimeout:       apiTimeout,
		NewsAPICacheTTL:      cacheTTL,
		NewsAPICacheSize:     parseCacheSize(),
		NewsAPIPollInterval:  pollInterval,
		NewsAPILookbackHours: lookback,

		SampleDataPath:      sharedcfg.EnvOrDefault("SAMPLE_DATA_PATH", "data/sample_tariff_events.json"),
		CountryCodesPath:    os.Getenv("COUNTRY_CODES_PATH"),
		NameMatchingEnabled: nameMatching,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	switch cfg.SourceMode {
	case SourceKafka:
	case SourceAPI:
		if cfg.NewsAPIToken == "" {
			return nil, errors.New("SOURCE_MODE is api but NEWSAPI_TOKEN is not set")
		}
	default:
		return nil, fmt.Errorf("invalid SOURCE_MODE %q", cfg.SourceMode)
	}

	return cfg, nil
}

// NewsAPIEnabled reports whether a live events API is configured.
func (c *Config) NewsAPIEnabled() bool {
	return c.NewsAPIToken != ""
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseCacheSize() int {
	if s := os.Getenv("NEWSAPI_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 100
}
