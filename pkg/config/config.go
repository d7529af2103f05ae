// Package config loads the settings of the leveler API server.
//
// Settings come from three layers, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. an optional TOML file, by default $XDG_CONFIG_HOME/leveler/config.toml
//  3. LEVELER_* environment variables
//
// Example config.toml:
//
//	http_addr     = ":8080"
//	log_level     = "debug"
//	cache_backend = "redis"
//	cache_ttl     = "24h"
//	redis_addr    = "localhost:6379"
//	mongo_uri     = "mongodb://localhost:27017"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/kelseyhightower/envconfig"

	"github.com/matzehuels/leveler/pkg/cache"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LEVELER"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds the server settings.
type Config struct {
	HTTPAddr       string   `toml:"http_addr" envconfig:"HTTP_ADDR"`
	AllowedOrigins []string `toml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	LogLevel       string   `toml:"log_level" envconfig:"LOG_LEVEL"`

	CacheBackend string        `toml:"cache_backend" envconfig:"CACHE_BACKEND"`
	CacheDir     string        `toml:"cache_dir" envconfig:"CACHE_DIR"`
	CacheTTL     time.Duration `toml:"cache_ttl" envconfig:"CACHE_TTL"`

	RedisAddr     string `toml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword string `toml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db" envconfig:"REDIS_DB"`
	RedisPrefix   string `toml:"redis_prefix" envconfig:"REDIS_PREFIX"`

	// MongoURI enables the project store. Without it projects live in
	// memory.
	MongoURI      string `toml:"mongo_uri" envconfig:"MONGO_URI"`
	MongoDatabase string `toml:"mongo_database" envconfig:"MONGO_DATABASE"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HTTPAddr:      ":8080",
		LogLevel:      "info",
		CacheBackend:  CacheFile,
		CacheTTL:      cache.TTLSchedule,
		RedisPrefix:   "leveler:",
		MongoDatabase: "leveler",
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "leveler", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "leveler", "config.toml"), nil
}

// Load reads the config file at path, then applies the environment. An empty
// path means the default location, which may be absent; an explicit path
// must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.CacheBackend) {
		return fmt.Errorf("cache_backend %q: want file, redis or none", c.CacheBackend)
	}
	if c.CacheBackend == CacheRedis && c.RedisAddr == "" {
		return errors.New("cache_backend redis requires redis_addr")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl %s is negative", c.CacheTTL)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Redis returns the Redis cache settings.
func (c Config) Redis() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		Prefix:   c.RedisPrefix,
	}
}
