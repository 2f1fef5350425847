package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Selector  SelectorConfig
	RateLimit RateLimitConfig
	Janitor   JanitorConfig
	Redirect  RedirectConfig
	Log       LogConfig
}

type ServerConfig struct {
	Address string
	// PublicBaseURL has no trailing slash.
	PublicBaseURL string
}

type DatabaseConfig struct {
	PostgresURL  string
	AutoMigrate  bool
	MaxOpenConns int
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

type AuthConfig struct {
	AdminEmail        string
	AdminPasswordHash string
	SessionTTL        time.Duration
	CookieSecure      bool
}

// SelectorConfig switches number selection to the HTTP RPC gateway when RPCURL is set.
type SelectorConfig struct {
	RPCURL    string
	RPCAPIKey string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type JanitorConfig struct {
	Interval time.Duration
}

type RedirectConfig struct {
	DefaultMessage string
}

type LogConfig struct {
	Level slog.Level
}

// LoadAll reads the whole configuration from the environment. Every problem is
// reported, each naming its variable.
func LoadAll() (*Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := &Config{}

	cfg.Server.Address = getEnv("SERVER_ADDRESS", ":8080")
	base, err := requireEnv("PUBLIC_BASE_URL")
	collect(err)
	if base != "" {
		cfg.Server.PublicBaseURL, err = parseBaseURL(base)
		collect(err)
	}

	cfg.Database.PostgresURL, err = requireEnv("POSTGRES_URL")
	collect(err)
	cfg.Database.AutoMigrate, err = getEnvBool("DB_AUTO_MIGRATE", false)
	collect(err)
	cfg.Database.MaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	collect(err)

	cfg.Redis, err = loadRedisConfig()
	collect(err)

	cfg.Auth.AdminEmail, err = requireEnv("ADMIN_EMAIL")
	collect(err)
	cfg.Auth.AdminPasswordHash, err = requireEnv("ADMIN_PASSWORD_HASH")
	collect(err)
	ttl, err := getEnvInt("SESSION_TTL_SECONDS", 86400)
	collect(err)
	cfg.Auth.SessionTTL = time.Duration(ttl) * time.Second
	cfg.Auth.CookieSecure, err = getEnvBool("COOKIE_SECURE", true)
	collect(err)

	cfg.Selector.RPCURL = strings.TrimRight(os.Getenv("RPC_URL"), "/")
	if cfg.Selector.RPCURL != "" {
		cfg.Selector.RPCAPIKey, err = requireEnv("RPC_API_KEY")
		collect(err)
	}

	cfg.RateLimit.RPS, err = getEnvFloat("RATE_LIMIT_RPS", 5)
	collect(err)
	cfg.RateLimit.Burst, err = getEnvInt("RATE_LIMIT_BURST", 10)
	collect(err)

	interval, err := getEnvInt("JANITOR_INTERVAL_SECONDS", 300)
	collect(err)
	cfg.Janitor.Interval = time.Duration(interval) * time.Second

	cfg.Redirect.DefaultMessage = os.Getenv("DEFAULT_MESSAGE")

	cfg.Log.Level, err = parseLevel(getEnv("LOG_LEVEL", "info"))
	collect(err)

	if len(errs) == 0 {
		errs = validate(cfg)
	}
	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRedisConfig() (RedisConfig, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}, nil
	}

	db, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return RedisConfig{}, err
	}

	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}, nil
}

func validate(cfg *Config) []error {
	var errs []error
	if cfg.Database.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be > 0"))
	}
	if cfg.Redis.DB < 0 {
		errs = append(errs, errors.New("REDIS_DB must be >= 0"))
	}
	if cfg.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL_SECONDS must be > 0"))
	}
	if _, err := bcrypt.Cost([]byte(cfg.Auth.AdminPasswordHash)); err != nil {
		errs = append(errs, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err))
	}
	if cfg.RateLimit.RPS < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be >= 0"))
	}
	if cfg.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be > 0"))
	}
	if cfg.Janitor.Interval <= 0 {
		errs = append(errs, errors.New("JANITOR_INTERVAL_SECONDS must be > 0"))
	}
	return errs
}

func parseBaseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("PUBLIC_BASE_URL must be an absolute http(s) URL, got %q", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return l, nil
}

func requireEnv(key string) (string, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return val, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid int for env %s: %q", key, v)
	}
	return i, nil
}

func getEnvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("invalid number for env %s: %q", key, v)
	}
	return f, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid bool for env %s: %q", key, v)
	}
	return b, nil
}

func joinErrors(errs []error) error {
	return errors.Join(errs...)
}
