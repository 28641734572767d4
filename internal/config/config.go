package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"dashboard-api/internal/cache"
)

type Config struct {
	ServerPort         string        `env:"SERVER_PORT" envDefault:"8080"`
	ServerReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ServerIdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	LogFormat string `env:"LOG_FORMAT" envDefault:"pretty"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret string `env:"JWT_SECRET"`

	Database Database `envPrefix:"DATABASE_"`
	Redis    Redis    `envPrefix:"REDIS_"`

	UserCacheTTL       time.Duration `env:"USER_CACHE_TTL" envDefault:"900s"`
	PermissionCacheTTL time.Duration `env:"PERMISSION_CACHE_TTL" envDefault:"300s"`

	CORSOrigins  []string `env:"CORS_ORIGINS" envSeparator:","`
	RateLimitRPM int      `env:"RATE_LIMIT_RPM" envDefault:"100"`

	// TrustedProxies lists the CIDRs whose X-Forwarded-For and X-Real-IP
	// headers are believed. Empty means the peer address is always used.
	TrustedProxies []netip.Prefix `env:"TRUSTED_PROXIES" envSeparator:","`

	PermissionRefreshMaxAttempts int           `env:"PERMISSION_REFRESH_MAX_ATTEMPTS" envDefault:"5"`
	PermissionRefreshWindow      time.Duration `env:"PERMISSION_REFRESH_WINDOW" envDefault:"15m"`
}

type Database struct {
	URL            string `env:"URL"`
	MaxConns       int32  `env:"MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"MIN_CONNS" envDefault:"1"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`
}

// Redis sits on the request path, so a command gets one quick retry and every
// cache operation is cut off after OperationTimeout.
type Redis struct {
	URL              string        `env:"URL"`
	MaxRetries       int           `env:"MAX_RETRIES" envDefault:"1"`
	MinRetryBackoff  time.Duration `env:"MIN_RETRY_BACKOFF" envDefault:"8ms"`
	MaxRetryBackoff  time.Duration `env:"MAX_RETRY_BACKOFF" envDefault:"64ms"`
	DialTimeout      time.Duration `env:"DIAL_TIMEOUT" envDefault:"500ms"`
	ReadTimeout      time.Duration `env:"READ_TIMEOUT" envDefault:"500ms"`
	WriteTimeout     time.Duration `env:"WRITE_TIMEOUT" envDefault:"500ms"`
	PoolSize         int           `env:"POOL_SIZE" envDefault:"10"`
	OperationTimeout time.Duration `env:"OPERATION_TIMEOUT" envDefault:"300ms"`
}

func (r Redis) CacheOptions() cache.Options {
	return cache.Options{
		URL:             r.URL,
		MaxRetries:      r.MaxRetries,
		MinRetryBackoff: r.MinRetryBackoff,
		MaxRetryBackoff: r.MaxRetryBackoff,
		DialTimeout:     r.DialTimeout,
		ReadTimeout:     r.ReadTimeout,
		WriteTimeout:    r.WriteTimeout,
		PoolSize:        r.PoolSize,
	}
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if strings.TrimSpace(c.Redis.URL) == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.Redis.OperationTimeout <= 0 || c.Redis.OperationTimeout >= c.RequestTimeout {
		return fmt.Errorf("REDIS_OPERATION_TIMEOUT must be positive and below REQUEST_TIMEOUT")
	}

	if c.UserCacheTTL < time.Second {
		return fmt.Errorf("USER_CACHE_TTL must be at least 1s")
	}

	if c.PermissionCacheTTL < time.Second {
		return fmt.Errorf("PERMISSION_CACHE_TTL must be at least 1s")
	}

	if c.PermissionRefreshMaxAttempts <= 0 {
		return fmt.Errorf("PERMISSION_REFRESH_MAX_ATTEMPTS must be positive")
	}

	if c.PermissionRefreshWindow < time.Second {
		return fmt.Errorf("PERMISSION_REFRESH_WINDOW must be at least 1s")
	}

	if c.Database.MaxConns <= 0 || c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DATABASE_MIN_CONNS and DATABASE_MAX_CONNS are inconsistent")
	}

	switch strings.ToLower(c.LogFormat) {
	case "pretty", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be pretty or json")
	}

	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
