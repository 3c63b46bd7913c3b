package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"namethatpage-backend/pkg/utils"
)

const (
	DefaultClickstreamBaseURL = "https://wikinav.wmcloud.org/api/v1/en"
	DefaultWikipediaBaseURL   = "https://en.wikipedia.org"
	DefaultUserAgent          = "namethatpage-backend/1.0 (Wikipedia clickstream guessing game)"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress  string        `validate:"required"`
	Environment    string        `validate:"oneof=development staging production test"`
	RequestTimeout time.Duration `validate:"gt=0"`
	IsLambda       bool

	// Upstream configuration
	ClickstreamBaseURL   string        `validate:"required,url"`
	WikipediaBaseURL     string        `validate:"required,url"`
	UserAgent            string        `validate:"required"`
	UpstreamTimeout      time.Duration `validate:"gt=0"`
	ClickstreamRetries   int           `validate:"gte=0,lte=10"`
	ClickstreamLagMonths int           `validate:"gte=0,lte=24"`
	RetryInitialDelay    time.Duration `validate:"gte=0"`
	RetryMaxDelay        time.Duration `validate:"gte=0"`
	EnableCircuitBreaker bool

	// Selection and graph building
	MaxSelectionRestarts int    `validate:"gte=0"`
	FanOutLimit          int    `validate:"gte=0"`
	PruneStrategy        string `validate:"oneof=single_pass fixed_point"`
	KeepCenter           bool
	MainPageTitle        string `validate:"required"`

	// Seed corpus
	SeedCorpusFile  string
	WatchSeedCorpus bool

	// Logging
	LogLevel string `validate:"oneof=debug info warn error"`

	// Feature flags
	EnableMetrics      bool
	EnableTracing      bool
	OTLPEndpoint       string
	EnableCORS         bool
	CORSAllowedOrigins []string

	// CloudWatch metrics, pushed where nothing scrapes /metrics
	EnableCloudWatch    bool
	CloudWatchNamespace string `validate:"required_if=EnableCloudWatch true"`
	AWSRegion           string `validate:"required_if=EnableCloudWatch true"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	isLambda := getEnv("AWS_LAMBDA_FUNCTION_NAME", "") != ""
	environment := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		ServerAddress:  getEnv("SERVER_ADDRESS", ":8080"),
		Environment:    environment,
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		IsLambda:       isLambda,

		ClickstreamBaseURL:   strings.TrimRight(getEnv("CLICKSTREAM_BASE_URL", DefaultClickstreamBaseURL), "/"),
		WikipediaBaseURL:     strings.TrimRight(getEnv("WIKIPEDIA_BASE_URL", DefaultWikipediaBaseURL), "/"),
		UserAgent:            getEnv("USER_AGENT", DefaultUserAgent),
		UpstreamTimeout:      getEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second),
		ClickstreamRetries:   getEnvInt("CLICKSTREAM_RETRIES", 3),
		ClickstreamLagMonths: getEnvInt("CLICKSTREAM_LAG_MONTHS", 2),
		RetryInitialDelay:    getEnvDuration("RETRY_INITIAL_DELAY", 500*time.Millisecond),
		RetryMaxDelay:        getEnvDuration("RETRY_MAX_DELAY", 5*time.Second),
		EnableCircuitBreaker: getEnvBool("ENABLE_CIRCUIT_BREAKER", true),

		MaxSelectionRestarts: getEnvInt("MAX_SELECTION_RESTARTS", 5),
		FanOutLimit:          getEnvInt("FANOUT_LIMIT", 0),
		PruneStrategy:        getEnv("PRUNE_STRATEGY", "single_pass"),
		KeepCenter:           getEnvBool("KEEP_CENTER", false),
		MainPageTitle:        getEnv("MAIN_PAGE_TITLE", "Main_Page"),

		SeedCorpusFile:  getEnv("SEED_CORPUS_FILE", ""),
		WatchSeedCorpus: getEnvBool("WATCH_SEED_CORPUS", false),

		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		EnableMetrics:      getEnvBool("ENABLE_METRICS", true),
		EnableTracing:      getEnvBool("ENABLE_TRACING", false),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		EnableCORS:         getEnvBool("ENABLE_CORS", true),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		EnableCloudWatch:    getEnvBool("ENABLE_CLOUDWATCH", isLambda),
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "NameThatPage/"+environment),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.RetryMaxDelay < c.RetryInitialDelay {
		return fmt.Errorf("RETRY_MAX_DELAY (%s) must not be below RETRY_INITIAL_DELAY (%s)", c.RetryMaxDelay, c.RetryInitialDelay)
	}
	if c.WatchSeedCorpus && c.SeedCorpusFile == "" {
		return fmt.Errorf("WATCH_SEED_CORPUS requires SEED_CORPUS_FILE")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("750ms") or whole milliseconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

// getEnvList splits a comma separated variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
