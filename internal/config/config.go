package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/segyhp/loan-manager/pkg/loanmath"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Broker    BrokerConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
	Business  BusinessConfig
	Health    HealthConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type BrokerConfig struct {
	URL      string
	Exchange string
}

type SchedulerConfig struct {
	OverdueSchedule  string
	ReminderSchedule string
	ReminderDays     int
	Timezone         string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type BusinessConfig struct {
	DefaultInterestRate string
	DefaultTenureYears  float64
	DebtToIncomeCeiling float64
	HorizonMonths       float64
	MinAge              int
	MaxAge              int
	CurrencySymbol      string
}

type HealthConfig struct {
	Timeout time.Duration
}

// Load reads configuration from an optional .env file and environment variables
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	config := Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Host:           v.GetString("SERVER_HOST"),
			Env:            v.GetString("ENV"),
			ReadTimeout:    v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetDuration("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetString("DATABASE_PORT"),
			Name:            v.GetString("DATABASE_NAME"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: v.GetDuration("REDIS_CACHE_TTL"),
		},
		Broker: BrokerConfig{
			URL:      v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
		},
		Scheduler: SchedulerConfig{
			OverdueSchedule:  v.GetString("SCHEDULER_OVERDUE_CRON"),
			ReminderSchedule: v.GetString("SCHEDULER_REMINDER_CRON"),
			ReminderDays:     v.GetInt("SCHEDULER_REMINDER_DAYS"),
			Timezone:         v.GetString("SCHEDULER_TIMEZONE"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Business: BusinessConfig{
			DefaultInterestRate: v.GetString("DEFAULT_INTEREST_RATE"),
			DefaultTenureYears:  v.GetFloat64("DEFAULT_TENURE_YEARS"),
			DebtToIncomeCeiling: v.GetFloat64("DEBT_TO_INCOME_CEILING"),
			HorizonMonths:       v.GetFloat64("AFFORDABILITY_HORIZON_MONTHS"),
			MinAge:              v.GetInt("MIN_APPLICANT_AGE"),
			MaxAge:              v.GetInt("MAX_APPLICANT_AGE"),
			CurrencySymbol:      v.GetString("CURRENCY_SYMBOL"),
		},
		Health: HealthConfig{
			Timeout: v.GetDuration("HEALTH_CHECK_TIMEOUT"),
		},
	}

	// Colored text logs in development unless LOG_FORMAT says otherwise
	if config.Logging.Format == "" {
		config.Logging.Format = "json"
		if config.IsDevelopment() {
			config.Logging.Format = "text"
		}
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "loan_manager")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_CACHE_TTL", "10m")

	v.SetDefault("AMQP_EXCHANGE", "loan_events")

	v.SetDefault("SCHEDULER_OVERDUE_CRON", "0 0 * * *")
	v.SetDefault("SCHEDULER_REMINDER_CRON", "0 9 * * *")
	v.SetDefault("SCHEDULER_REMINDER_DAYS", 3)
	v.SetDefault("SCHEDULER_TIMEZONE", "UTC")

	v.SetDefault("LOG_LEVEL", "info")

	policy := loanmath.DefaultPolicy()
	v.SetDefault("DEFAULT_INTEREST_RATE", "12")
	v.SetDefault("DEFAULT_TENURE_YEARS", 1)
	v.SetDefault("DEBT_TO_INCOME_CEILING", policy.DebtToIncomeCeiling)
	v.SetDefault("AFFORDABILITY_HORIZON_MONTHS", policy.HorizonMonths)
	v.SetDefault("MIN_APPLICANT_AGE", policy.MinAge)
	v.SetDefault("MAX_APPLICANT_AGE", policy.MaxAge)
	v.SetDefault("CURRENCY_SYMBOL", "E")

	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.IsProduction() && slices.Contains(c.Server.AllowedOrigins, "*") {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS must list explicit origins in production")
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	// Validate interest rate
	rate, err := decimal.NewFromString(c.Business.DefaultInterestRate)
	if err != nil {
		return fmt.Errorf("DEFAULT_INTEREST_RATE must be a valid decimal: %w", err)
	}
	if !rate.IsPositive() {
		return fmt.Errorf("DEFAULT_INTEREST_RATE must be greater than 0")
	}

	if c.Business.DefaultTenureYears <= 0 {
		return fmt.Errorf("DEFAULT_TENURE_YEARS must be greater than 0")
	}

	if err := c.Business.Policy().Validate(); err != nil {
		return fmt.Errorf("eligibility policy: %w", err)
	}

	if c.Scheduler.ReminderDays < 0 {
		return fmt.Errorf("SCHEDULER_REMINDER_DAYS must not be negative")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	// Validate cron specs
	for name, spec := range map[string]string{
		"SCHEDULER_OVERDUE_CRON":  c.Scheduler.OverdueSchedule,
		"SCHEDULER_REMINDER_CRON": c.Scheduler.ReminderSchedule,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("%s must be a valid cron expression: %w", name, err)
		}
	}

	if c.Health.Timeout <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a positive duration")
	}

	return nil
}

// splitList parses a comma separated env value
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// DSN returns the Postgres connection string, preferring DATABASE_URL when set
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// Addr returns the host:port of the Redis server
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetDefaultInterestRate returns the default annual interest rate in percent
func (c *Config) GetDefaultInterestRate() float64 {
	rate, _ := decimal.NewFromString(c.Business.DefaultInterestRate)
	f, _ := rate.Float64()
	return f
}

// Policy returns the eligibility policy described by the business settings
func (c BusinessConfig) Policy() loanmath.Policy {
	return loanmath.Policy{
		MinAge:              c.MinAge,
		MaxAge:              c.MaxAge,
		DebtToIncomeCeiling: c.DebtToIncomeCeiling,
		HorizonMonths:       c.HorizonMonths,
	}
}

// Location returns the scheduler time zone
func (c SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
