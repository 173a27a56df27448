package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Store     StoreConfig     `mapstructure:"store"`
	Sync      SyncConfig      `mapstructure:"sync"`
	DevServer DevServerConfig `mapstructure:"devserver"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// BackendConfig holds the REST backend endpoint configuration. BaseURL is
// environment-detected: local environments talk to the local dev backend,
// everything else to the hosted API.
type BackendConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	LocalURL       string        `mapstructure:"local_url"`
	ProductionURL  string        `mapstructure:"production_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
}

// StoreConfig holds the local persisted store configuration.
type StoreConfig struct {
	Dir string `mapstructure:"dir"`
}

// SyncConfig holds dashboard sync and status sweep configuration.
type SyncConfig struct {
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// DevServerConfig holds the local development backend configuration.
type DevServerConfig struct {
	Port               int           `mapstructure:"port"`
	Host               string        `mapstructure:"host"`
	DatabasePath       string        `mapstructure:"database_path"`
	JWTSecret          string        `mapstructure:"jwt_secret"`
	JWTExpiresIn       time.Duration `mapstructure:"jwt_expires_in"`
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Resolve the backend URL from the environment when not set explicitly.
	if cfg.Backend.BaseURL == "" {
		if cfg.App.IsProduction() {
			cfg.Backend.BaseURL = cfg.Backend.ProductionURL
		} else {
			cfg.Backend.BaseURL = cfg.Backend.LocalURL
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "Astren")
	viper.SetDefault("app.version", "0.0.6")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)

	// Backend defaults
	viper.SetDefault("backend.base_url", "")
	viper.SetDefault("backend.local_url", "http://localhost:8000")
	viper.SetDefault("backend.production_url", "https://astren-backend.onrender.com")
	viper.SetDefault("backend.request_timeout", "15s")
	viper.SetDefault("backend.rate_limit", 25)
	viper.SetDefault("backend.rate_burst", 10)

	// Store defaults
	viper.SetDefault("store.dir", ".astren")

	// Sync defaults
	viper.SetDefault("sync.sweep_interval", "60s")
	viper.SetDefault("sync.refresh_interval", "3m")

	// Dev server defaults
	viper.SetDefault("devserver.port", 8000)
	viper.SetDefault("devserver.host", "0.0.0.0")
	viper.SetDefault("devserver.database_path", "astren-dev.db")
	viper.SetDefault("devserver.jwt_secret", "astren-dev-secret")
	viper.SetDefault("devserver.jwt_expires_in", "24h")
	viper.SetDefault("devserver.cors_allowed_origins", "*")
	viper.SetDefault("devserver.rate_limit_requests", 100)
	viper.SetDefault("devserver.rate_limit_window", "1m")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "json")
	viper.SetDefault("logger.output", "stdout")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
}

func bindEnvVars() {
	// App
	viper.BindEnv("app.name", "ASTREN_APP_NAME")
	viper.BindEnv("app.version", "ASTREN_APP_VERSION")
	viper.BindEnv("app.environment", "ASTREN_ENVIRONMENT")
	viper.BindEnv("app.debug", "ASTREN_DEBUG")

	// Backend
	viper.BindEnv("backend.base_url", "ASTREN_API_BASE_URL")
	viper.BindEnv("backend.local_url", "ASTREN_API_LOCAL_URL")
	viper.BindEnv("backend.production_url", "ASTREN_API_PRODUCTION_URL")
	viper.BindEnv("backend.request_timeout", "ASTREN_API_REQUEST_TIMEOUT")
	viper.BindEnv("backend.rate_limit", "ASTREN_API_RATE_LIMIT")
	viper.BindEnv("backend.rate_burst", "ASTREN_API_RATE_BURST")

	// Store
	viper.BindEnv("store.dir", "ASTREN_STORE_DIR")

	// Sync
	viper.BindEnv("sync.sweep_interval", "ASTREN_SWEEP_INTERVAL")
	viper.BindEnv("sync.refresh_interval", "ASTREN_REFRESH_INTERVAL")

	// Dev server
	viper.BindEnv("devserver.port", "ASTREN_DEVSERVER_PORT")
	viper.BindEnv("devserver.host", "ASTREN_DEVSERVER_HOST")
	viper.BindEnv("devserver.database_path", "ASTREN_DEVSERVER_DB")
	viper.BindEnv("devserver.jwt_secret", "ASTREN_JWT_SECRET")
	viper.BindEnv("devserver.jwt_expires_in", "ASTREN_JWT_EXPIRES_IN")
	viper.BindEnv("devserver.cors_allowed_origins", "ASTREN_CORS_ALLOWED_ORIGINS")
	viper.BindEnv("devserver.rate_limit_requests", "ASTREN_RATE_LIMIT_REQUESTS")
	viper.BindEnv("devserver.rate_limit_window", "ASTREN_RATE_LIMIT_WINDOW")

	// Logger
	viper.BindEnv("logger.level", "LOG_LEVEL")
	viper.BindEnv("logger.format", "LOG_FORMAT")
	viper.BindEnv("logger.output", "LOG_OUTPUT")

	// Metrics
	viper.BindEnv("metrics.enabled", "ASTREN_ENABLE_METRICS")
}

func validateConfig(cfg *Config) error {
	if cfg.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required")
	}

	if cfg.Store.Dir == "" {
		return fmt.Errorf("store directory is required")
	}

	if cfg.Sync.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}

	if cfg.DevServer.Port <= 0 || cfg.DevServer.Port > 65535 {
		return fmt.Errorf("dev server port must be between 1 and 65535")
	}

	return nil
}

// Addr returns the dev server listen address.
func (cfg *DevServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}
