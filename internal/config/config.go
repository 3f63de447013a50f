package config

import (
	"fmt"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/segyhp/emi-tracker/internal/amortization"
	"github.com/segyhp/emi-tracker/internal/notifier"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
	SMTP      SMTPConfig      `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"DATABASE_DRIVER"`
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"REDIS_URL"`
	Host     string        `mapstructure:"REDIS_HOST"`
	Port     string        `mapstructure:"REDIS_PORT"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"REDIS_DB"`
	CacheTTL time.Duration `mapstructure:"DASHBOARD_CACHE_TTL"`
}

type SchedulerConfig struct {
	OverdueSweepCron string `mapstructure:"OVERDUE_SWEEP_CRON"`
	ReminderCron     string `mapstructure:"REMINDER_CRON"`
	Timezone         string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	PenaltyRate      string  `mapstructure:"PENALTY_RATE"`
	SolverUpperBound float64 `mapstructure:"SOLVER_UPPER_BOUND"`
	SolverIterations int     `mapstructure:"SOLVER_ITERATIONS"`
	CurrencySymbol   string  `mapstructure:"CURRENCY_SYMBOL"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"SMTP_HOST"`
	Port     int    `mapstructure:"SMTP_PORT"`
	Username string `mapstructure:"SMTP_USERNAME"`
	Password string `mapstructure:"SMTP_PASSWORD"`
	From     string `mapstructure:"SMTP_FROM"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

var defaults = map[string]any{
	"SERVER_PORT":                "8080",
	"SERVER_HOST":                "0.0.0.0",
	"ENV":                        "development",
	"SERVER_READ_TIMEOUT":        "15s",
	"SERVER_WRITE_TIMEOUT":       "15s",
	"DATABASE_DRIVER":            DriverPostgres,
	"DATABASE_URL":               "",
	"DATABASE_MAX_OPEN_CONNS":    25,
	"DATABASE_MAX_IDLE_CONNS":    5,
	"DATABASE_CONN_MAX_LIFETIME": "5m",
	"REDIS_URL":                  "",
	"REDIS_HOST":                 "localhost",
	"REDIS_PORT":                 "6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"DASHBOARD_CACHE_TTL":        "5m",
	"OVERDUE_SWEEP_CRON":         "0 0 0 * * *",
	"REMINDER_CRON":              "0 0 9 * * *",
	"SCHEDULER_TIMEZONE":         "Asia/Kolkata",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "text",
	"PENALTY_RATE":               "0.02",
	"SOLVER_UPPER_BOUND":         amortization.DefaultSolverUpperBound,
	"SOLVER_ITERATIONS":          amortization.DefaultSolverIterations,
	"CURRENCY_SYMBOL":            amortization.DefaultCurrencySymbol,
	"SMTP_HOST":                  "",
	"SMTP_PORT":                  587,
	"SMTP_USERNAME":              "",
	"SMTP_PASSWORD":              "",
	"SMTP_FROM":                  "",
	"HEALTH_CHECK_TIMEOUT":       "5s",
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist; real environment variables win
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

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

	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverSQLite {
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}

	rate, err := decimal.NewFromString(c.Business.PenaltyRate)
	if err != nil {
		return fmt.Errorf("PENALTY_RATE must be a valid decimal: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("PENALTY_RATE must be in [0, 1), got %s", rate)
	}

	if c.Business.SolverUpperBound <= 0 {
		return fmt.Errorf("SOLVER_UPPER_BOUND must be greater than 0")
	}

	if c.Business.SolverIterations <= 0 {
		return fmt.Errorf("SOLVER_ITERATIONS must be greater than 0")
	}

	if c.Health.Timeout <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a positive duration")
	}

	// Validate cron specs with the same parser the scheduler uses
	for name, spec := range map[string]string{
		"OVERDUE_SWEEP_CRON": c.Scheduler.OverdueSweepCron,
		"REMINDER_CRON":      c.Scheduler.ReminderCron,
	} {
		if _, err := CronParser().Parse(spec); err != nil {
			return fmt.Errorf("%s must be a valid cron spec: %w", name, err)
		}
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid IANA zone: %w", err)
	}

	return nil
}

// CronParser accepts six field specs with a leading seconds field, plus
// descriptors such as @daily.
func CronParser() cron.Parser {
	return cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Addr is the HTTP listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// EngineOptions returns the amortization tunables
func (c *Config) EngineOptions() amortization.Options {
	rate, err := decimal.NewFromString(c.Business.PenaltyRate)
	if err != nil {
		rate = amortization.DefaultPenaltyRate
	}

	return amortization.Options{
		PenaltyRate:      rate,
		SolverUpperBound: c.Business.SolverUpperBound,
		SolverIterations: c.Business.SolverIterations,
		CurrencySymbol:   c.Business.CurrencySymbol,
	}
}

// Location returns the scheduler time zone, UTC when it cannot be loaded
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Enabled reports whether a redis server is configured
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Host != ""
}

// Addr is the host:port of the redis server
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

// Enabled reports whether reminders go out over SMTP
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// Notifier returns the SMTP settings of the reminder sender
func (s SMTPConfig) Notifier() notifier.SMTPConfig {
	return notifier.SMTPConfig{
		Host:     s.Host,
		Port:     s.Port,
		Username: s.Username,
		Password: s.Password,
		From:     s.From,
	}
}
