package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type Config struct {
	Server  Server  `mapstructure:"server"`
	Storage Storage `mapstructure:"storage"`
	Session Session `mapstructure:"session"`
	Auth    Auth    `mapstructure:"auth"`
	Hub     Hub     `mapstructure:"hub"`
	Log     Log     `mapstructure:"log"`

	mu        sync.Mutex
	reloadFns []func(*Config)
}

type Server struct {
	Addr string `mapstructure:"addr"`
	Dev  bool   `mapstructure:"dev"`
}

type Storage struct {
	// Path of the on-disk database. Empty means in-memory, used by tests
	// and dev runs.
	Path string `mapstructure:"path"`
}

type Session struct {
	// Backend selects the session directory implementation: "redis" or
	// "memory". Memory is single-process only.
	Backend       string `mapstructure:"backend"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

type Auth struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type Hub struct {
	MailboxSize      int           `mapstructure:"mailbox_size"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	EvictionInterval time.Duration `mapstructure:"eviction_interval"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.dev", false)
	v.SetDefault("storage.path", "data/chat")
	v.SetDefault("session.backend", "redis")
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("auth.token_ttl", 48*time.Hour)
	v.SetDefault("hub.mailbox_size", 2048)
	v.SetDefault("hub.idle_timeout", 30*time.Minute)
	v.SetDefault("hub.eviction_interval", 15*time.Minute)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if path != "" {
		v.OnConfigChange(func(_ fsnotify.Event) {
			next := &Config{}
			if err := v.Unmarshal(next); err != nil {
				slog.Warn("config reload ignored", "err", err)
				return
			}
			cfg.mu.Lock()
			fns := cfg.reloadFns
			cfg.mu.Unlock()
			for _, fn := range fns {
				fn(next)
			}
		})
		v.WatchConfig()
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("config: auth.secret is required")
	}
	switch c.Session.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("config: unknown session backend %q", c.Session.Backend)
	}
	return nil
}

// OnReload registers a callback invoked with the re-read configuration
// whenever the config file changes on disk. Only hot-reloadable knobs
// (log level) should be consumed from the callback.
func (c *Config) OnReload(fn func(*Config)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reloadFns = append(c.reloadFns, fn)
}

func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
