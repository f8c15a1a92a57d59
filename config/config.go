// Package config collects the runtime settings of the task manager. Values
// come from command-line flags with environment-variable fallbacks.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

// DefaultSecret is the development signing key. Validate warns about it
// through the returned warnings; production deployments set JWT_SECRET.
const DefaultSecret = "change-me-in-production"

// Config holds runtime settings.
type Config struct {
	Addr         string
	DatabasePath string

	JWTSecret  string
	JWTIssuer  string
	TokenTTL   time.Duration
	BcryptCost int

	LogLevel  string
	LogFormat string
	LogFile   string

	RedisAddr       string
	RedisPassword   string
	RateLimit       int
	RateLimitWindow time.Duration

	CORSOrigins string
}

// Default returns development defaults.
func Default() Config {
	return Config{
		Addr:            ":5000",
		DatabasePath:    "taskmanager.db",
		JWTSecret:       DefaultSecret,
		JWTIssuer:       "taskmanager",
		TokenTTL:        24 * time.Hour,
		BcryptCost:      12,
		LogLevel:        "info",
		LogFormat:       "text",
		RateLimit:       10,
		RateLimitWindow: time.Minute,
		CORSOrigins:     "*",
	}
}

// Validate checks the settings and returns non-fatal warnings.
func (c Config) Validate() ([]string, error) {
	var warnings []string
	if c.JWTSecret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if c.JWTSecret == DefaultSecret {
		warnings = append(warnings, "using the default JWT secret; set JWT_SECRET")
	}
	if c.TokenTTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	// bcrypt accepts costs in [4, 31].
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return nil, fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.RedisAddr != "" && (c.RateLimit <= 0 || c.RateLimitWindow <= 0) {
		return nil, errors.New("rate limit and window must be positive when redis is configured")
	}
	return warnings, nil
}

// Flags returns the CLI flags understood by FromContext.
func Flags() []cli.Flag {
	d := Default()
	return []cli.Flag{
		&cli.StringFlag{Name: "addr", Value: d.Addr, Usage: "HTTP listen address", EnvVars: []string{"ADDR"}},
		&cli.StringFlag{Name: "port", Usage: "HTTP port, overrides the port of --addr", EnvVars: []string{"PORT"}},
		&cli.StringFlag{Name: "database", Value: d.DatabasePath, Usage: "SQLite database file", EnvVars: []string{"DATABASE_PATH"}},
		&cli.StringFlag{Name: "jwt-secret", Value: d.JWTSecret, Usage: "HMAC key used to sign tokens", EnvVars: []string{"JWT_SECRET"}},
		&cli.StringFlag{Name: "jwt-issuer", Value: d.JWTIssuer, Usage: "token issuer claim", EnvVars: []string{"JWT_ISSUER"}},
		&cli.DurationFlag{Name: "token-ttl", Value: d.TokenTTL, Usage: "token lifetime", EnvVars: []string{"TOKEN_TTL"}},
		&cli.IntFlag{Name: "bcrypt-cost", Value: d.BcryptCost, Usage: "bcrypt work factor", EnvVars: []string{"BCRYPT_COST"}},
		&cli.StringFlag{Name: "log-level", Value: d.LogLevel, Usage: "trace, debug, info, warn or error", EnvVars: []string{"LOG_LEVEL"}},
		&cli.StringFlag{Name: "log-format", Value: d.LogFormat, Usage: "text or json", EnvVars: []string{"LOG_FORMAT"}},
		&cli.StringFlag{Name: "log-file", Usage: "append JSON logs to this file", EnvVars: []string{"LOG_FILE"}},
		&cli.StringFlag{Name: "redis-addr", Usage: "enables rate limiting of login and register", EnvVars: []string{"REDIS_ADDR"}},
		&cli.StringFlag{Name: "redis-password", EnvVars: []string{"REDIS_PASSWORD"}},
		&cli.IntFlag{Name: "rate-limit", Value: d.RateLimit, Usage: "requests per window per client", EnvVars: []string{"RATE_LIMIT"}},
		&cli.DurationFlag{Name: "rate-limit-window", Value: d.RateLimitWindow, EnvVars: []string{"RATE_LIMIT_WINDOW"}},
		&cli.StringFlag{Name: "cors-origins", Value: d.CORSOrigins, Usage: "comma separated allowed origins", EnvVars: []string{"CORS_ORIGINS"}},
	}
}

// FromContext reads the flags declared by Flags.
func FromContext(c *cli.Context) Config {
	cfg := Config{
		Addr:            c.String("addr"),
		DatabasePath:    c.String("database"),
		JWTSecret:       c.String("jwt-secret"),
		JWTIssuer:       c.String("jwt-issuer"),
		TokenTTL:        c.Duration("token-ttl"),
		BcryptCost:      c.Int("bcrypt-cost"),
		LogLevel:        c.String("log-level"),
		LogFormat:       c.String("log-format"),
		LogFile:         c.String("log-file"),
		RedisAddr:       c.String("redis-addr"),
		RedisPassword:   c.String("redis-password"),
		RateLimit:       c.Int("rate-limit"),
		RateLimitWindow: c.Duration("rate-limit-window"),
		CORSOrigins:     c.String("cors-origins"),
	}
	if port := c.String("port"); port != "" {
		cfg.Addr = ":" + port
	}
	return cfg
}
