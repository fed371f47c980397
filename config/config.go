package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"pointsgame/database"
)

// Config holds all application configuration
type Config struct {
	// Environment is "development", "production" or "test"
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Database configuration
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DatabaseName string `envconfig:"DATABASE_NAME"`
	DBMaxConns   int32  `envconfig:"DB_MAX_CONNS" default:"20"`

	// Session configuration
	JWTSecret     string        `envconfig:"JWT_SECRET"`
	BcryptCost    int           `envconfig:"BCRYPT_COST" default:"12"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	RememberMeTTL time.Duration `envconfig:"REMEMBER_ME_TTL" default:"720h"`

	// Game configuration
	StartingBalance int64         `envconfig:"STARTING_BALANCE" default:"100"`
	ReelRateLimit   int           `envconfig:"REEL_RATE_LIMIT" default:"30"`
	GridRateLimit   int           `envconfig:"GRID_RATE_LIMIT" default:"20"`
	GameRateWindow  time.Duration `envconfig:"GAME_RATE_WINDOW" default:"1m"`
	GridClaimTTL    time.Duration `envconfig:"GRID_CLAIM_TTL" default:"10m"`

	// NATS, empty disables event forwarding
	NATSServers string `envconfig:"NATS_SERVERS"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from an optional .env file and environment variables
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks required settings outside the test environment
func (c *Config) Validate() error {
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE cannot be negative")
	}
	if c.ReelRateLimit <= 0 || c.GridRateLimit <= 0 || c.GameRateWindow <= 0 {
		return fmt.Errorf("game rate limits must be positive")
	}

	if c.Environment == "test" {
		return nil
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:     "test",
		HTTPAddr:        ":0",
		JWTSecret:       "test-secret-test-secret-test-secret",
		BcryptCost:      4,
		SessionTTL:      24 * time.Hour,
		RememberMeTTL:   30 * 24 * time.Hour,
		StartingBalance: 100,
		ReelRateLimit:   30,
		GridRateLimit:   20,
		GameRateWindow:  time.Minute,
		GridClaimTTL:    10 * time.Minute,
		LogLevel:        "debug",
		LogFormat:       "text",
	}
}
