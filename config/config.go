package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LimiterConfig holds throttle settings for one attempt class
type LimiterConfig struct {
	MaxAttempts   int
	Window        time.Duration
	BlockDuration time.Duration
}

// PocketBaseConfig points at the backing records API and the service
// account used to talk to it
type PocketBaseConfig struct {
	URL             string
	ServiceEmail    string
	ServicePassword string
	AuthCollection  string
}

// Config is the full runtime configuration, loaded from an optional
// .env file and the process environment. Environment variables use the
// PBTODO_ prefix with underscores as separators, e.g. PBTODO_SERVER_ADDR.
type Config struct {
	ServerAddr string
	RedisURL   string // empty means in-memory adapters

	PocketBase PocketBaseConfig

	LoginLimiter    LimiterConfig
	RegisterLimiter LimiterConfig

	SignKeyPath string // PEM-encoded ECDSA key, generated when empty
	LogLevel    string

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

const envPrefix = "PBTODO_"

// Load reads configuration from envPath (skipped when the file does not
// exist) and the environment, then validates it.
func Load(envPath string) (*Config, error) {
	k := koanf.New(".")

	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			parser := dotenv.ParserEnv(envPrefix, ".", func(s string) string {
				return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
			})
			if err := k.Load(file.Provider(envPath), parser); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{
		ServerAddr: str(k, "server.addr", ":9000"),
		RedisURL:   str(k, "redis.url", ""),
		PocketBase: PocketBaseConfig{
			URL:             str(k, "pocketbase.url", "http://localhost:8090"),
			ServiceEmail:    str(k, "pocketbase.service.email", ""),
			ServicePassword: str(k, "pocketbase.service.password", ""),
			AuthCollection:  str(k, "pocketbase.auth.collection", "_superusers"),
		},
		LoginLimiter: LimiterConfig{
			MaxAttempts:   integer(k, "login.max.attempts", 5),
			Window:        duration(k, "login.window", time.Minute),
			BlockDuration: duration(k, "login.block.duration", 5*time.Minute),
		},
		RegisterLimiter: LimiterConfig{
			MaxAttempts:   integer(k, "register.max.attempts", 10),
			Window:        duration(k, "register.window", time.Minute),
			BlockDuration: duration(k, "register.block.duration", 5*time.Minute),
		},
		SignKeyPath: str(k, "sign.key.path", ""),
		LogLevel:    str(k, "log.level", "info"),
		AccessTTL:   duration(k, "access.ttl", 15*time.Minute),
		RefreshTTL:  duration(k, "refresh.ttl", 5*24*time.Hour),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for name, lc := range map[string]LimiterConfig{
		"login":    c.LoginLimiter,
		"register": c.RegisterLimiter,
	} {
		if lc.MaxAttempts <= 0 {
			return fmt.Errorf("%s limiter: max attempts must be positive, got %d", name, lc.MaxAttempts)
		}
		if lc.Window <= 0 {
			return fmt.Errorf("%s limiter: window must be positive, got %s", name, lc.Window)
		}
		if lc.BlockDuration <= 0 {
			return fmt.Errorf("%s limiter: block duration must be positive, got %s", name, lc.BlockDuration)
		}
	}

	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.PocketBase.URL == "" {
		return fmt.Errorf("pocketbase URL must be set")
	}
	return nil
}

func str(k *koanf.Koanf, key, def string) string {
	if !k.Exists(key) {
		return def
	}
	return k.String(key)
}

func integer(k *koanf.Koanf, key string, def int) int {
	if !k.Exists(key) {
		return def
	}
	return k.Int(key)
}

func duration(k *koanf.Koanf, key string, def time.Duration) time.Duration {
	if !k.Exists(key) {
		return def
	}
	// accept both Go duration strings and raw millisecond counts
	raw := k.String(key)
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if ms := k.Int64(key); ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}
