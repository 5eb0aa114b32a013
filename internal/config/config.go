// Package config loads runtime settings from the environment and optional .env files.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"backlog/internal/store"
)

// DefaultEnvFiles are read, when present, before the environment is parsed.
var DefaultEnvFiles = []string{".env", ".env.local"}

type DatabaseOptions struct {
	Driver   string `env:"DB_DRIVER" envDefault:"sqlite3"`
	Path     string `env:"DB_PATH" envDefault:"./data/backlog.db"`
	Name     string `env:"DB_NAME" envDefault:"backlog"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

// DSN returns the data source for the configured driver.
func (d *DatabaseOptions) DSN() string {
	if d.Driver == store.DriverPostgres {
		return fmt.Sprintf(
			"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
			d.Host, d.Port, d.User, d.Name, d.Password,
		)
	}
	return d.Path
}

type AuthOptions struct {
	Enabled  bool          `env:"AUTH_ENABLED" envDefault:"true"`
	Secret   string        `env:"AUTH_SECRET"`
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"10m"`
}

type RateLimitOptions struct {
	Enabled bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Rate    string `env:"RATE_LIMIT_RATE" envDefault:"1000-M"`
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitOptions) Validate() error {
	if !r.Enabled {
		return nil
	}
	if _, err := limiter.NewRateFromFormatted(r.Rate); err != nil {
		return fmt.Errorf("rate limit Rate must look like '<limit>-<S|M|H|D>', got '%s'", r.Rate)
	}
	return nil
}

type MetricsOptions struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

type Configuration struct {
	Database  DatabaseOptions
	Auth      AuthOptions
	RateLimit RateLimitOptions
	Metrics   MetricsOptions

	Port           int           `env:"PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"text"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
}

// Load reads the given .env files that exist, then parses the process environment.
func Load(envFiles ...string) (*Configuration, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}
	return parse(env.Options{})
}

// Parse builds a configuration from environ alone, ignoring the process environment.
func Parse(environ map[string]string) (*Configuration, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Configuration, error) {
	c := &Configuration{}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return nil, err
	}

	for i, origin := range c.CORSOrigins {
		c.CORSOrigins[i] = strings.TrimSpace(origin)
	}
	if c.Auth.Secret == "" {
		// Tokens then only survive until the process restarts.
		c.Auth.Secret = uuid.NewString()
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadEnv loads the env files that exist and returns how many were read.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}

	if len(existing) == 0 {
		return 0, nil
	}

	return len(existing), godotenv.Load(existing...)
}

// Validate checks option values that the env parser cannot.
func (c *Configuration) Validate() error {
	if c.Database.Driver != store.DriverSQLite && c.Database.Driver != store.DriverPostgres {
		return fmt.Errorf("DB_DRIVER must be '%s' or '%s', got '%s'", store.DriverSQLite, store.DriverPostgres, c.Database.Driver)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be 'text' or 'json', got '%s'", c.LogFormat)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("METRICS_PATH must start with '/', got '%s'", c.Metrics.Path)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	return nil
}

// Address is the listen address for the HTTP server.
func (c *Configuration) Address() string {
	return net.JoinHostPort("", fmt.Sprint(c.Port))
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Configuration) Logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

func parseLevel(level string) (logrus.Level, error) {
	switch level {
	case "silent":
		return logrus.PanicLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	case "warn":
		return logrus.WarnLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("LOG_LEVEL must be one of silent, error, warn, info, debug, got '%s'", level)
	}
}
