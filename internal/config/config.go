package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Auth      AuthConfig      `mapstructure:"auth"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
}

type ServerConfig struct {
	Port string `mapstructure:"SERVER_PORT"`
	Host string `mapstructure:"SERVER_HOST"`
	Env  string `mapstructure:"ENV"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"DATABASE_URL"`
	MaxOpenConns int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	// Cron spec with seconds field; default fires daily at 08:00.
	CronSpec string `mapstructure:"SCHEDULER_CRON_SPEC"`
	Timezone string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type AuthConfig struct {
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	AccessTokenTTL  string `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL string `mapstructure:"REFRESH_TOKEN_TTL"`
	// TTL for the access-gate compliance cache; zero disables caching.
	GateCacheTTL string `mapstructure:"GATE_CACHE_TTL"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"SMTP_HOST"`
	Port     string `mapstructure:"SMTP_PORT"`
	Username string `mapstructure:"SMTP_USERNAME"`
	Password string `mapstructure:"SMTP_PASSWORD"`
	From     string `mapstructure:"SMTP_FROM"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	MonthlyFee          string `mapstructure:"MONTHLY_FEE"`
	PaymentMethod       string `mapstructure:"DEFAULT_PAYMENT_METHOD"`
	PreBlockDays        int    `mapstructure:"PRE_BLOCK_REMINDER_DAYS"`
	PaymentInstructions string `mapstructure:"PAYMENT_INSTRUCTIONS"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SCHEDULER_CRON_SPEC", "0 0 8 * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "UTC")
	viper.SetDefault("ACCESS_TOKEN_TTL", "15m")
	viper.SetDefault("REFRESH_TOKEN_TTL", "168h")
	viper.SetDefault("GATE_CACHE_TTL", "30s")
	viper.SetDefault("MONTHLY_FEE", "15000")
	viper.SetDefault("DEFAULT_PAYMENT_METHOD", "MOMO")
	viper.SetDefault("PRE_BLOCK_REMINDER_DAYS", 2)
	viper.SetDefault("PAYMENT_INSTRUCTIONS", "Pay via mobile money to keep your account active.")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Business.PreBlockDays <= 0 {
		return fmt.Errorf("PRE_BLOCK_REMINDER_DAYS must be greater than 0")
	}

	// Validate monthly fee
	fee, err := decimal.NewFromString(c.Business.MonthlyFee)
	if err != nil {
		return fmt.Errorf("MONTHLY_FEE must be a valid decimal: %w", err)
	}
	if fee.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("MONTHLY_FEE must be greater than 0")
	}

	// Validate durations
	for name, value := range map[string]string{
		"ACCESS_TOKEN_TTL":  c.Auth.AccessTokenTTL,
		"REFRESH_TOKEN_TTL": c.Auth.RefreshTokenTTL,
		"GATE_CACHE_TTL":    c.Auth.GateCacheTTL,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", name, err)
		}
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid timezone: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetMonthlyFee returns the standard monthly fee as decimal
func (c *Config) GetMonthlyFee() decimal.Decimal {
	fee, _ := decimal.NewFromString(c.Business.MonthlyFee)
	return fee
}

// GetAccessTokenTTL returns the access token lifetime as duration
func (c *Config) GetAccessTokenTTL() time.Duration {
	d, _ := time.ParseDuration(c.Auth.AccessTokenTTL)
	return d
}

// GetRefreshTokenTTL returns the refresh token lifetime as duration
func (c *Config) GetRefreshTokenTTL() time.Duration {
	d, _ := time.ParseDuration(c.Auth.RefreshTokenTTL)
	return d
}

// GetGateCacheTTL returns the access-gate cache TTL as duration
func (c *Config) GetGateCacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Auth.GateCacheTTL)
	return d
}
