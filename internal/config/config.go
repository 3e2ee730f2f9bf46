// Package config reads runtime settings from the environment, with an
// optional .env style file for local development.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups every runtime setting. Empty DatabaseURL selects the
// in-memory store; empty RedisURL disables the product side-cache.
type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	HTTP   HTTPConfig
	Cache  CacheConfig
	Lookup LookupConfig
}

// AppConfig is general application identity.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// DBConfig selects and configures the backing store.
type DBConfig struct {
	DatabaseURL string // postgres://... ; empty means in-memory
}

// RedisConfig configures the optional product side-cache.
type RedisConfig struct {
	RedisURL string // redis://... ; empty disables the side-cache
}

// HTTPConfig configures the listener.
type HTTPConfig struct {
	Host      string
	Port      int
	RateLimit float64 // requests per second per client, 0 disables limiting
	RateBurst int
}

// Addr returns the listen address.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig sets the freshness windows of the read views.
type CacheConfig struct {
	ShortTTL time.Duration // volatile aggregates
	LongTTL  time.Duration // slow-moving lists
}

// LookupConfig configures the external barcode metadata service.
type LookupConfig struct {
	BaseURL string // empty disables lookups
	Timeout time.Duration
}

// Load reads configuration from SCANSHELF_* environment variables, falling
// back to a local config.env file and then to the defaults below.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // the file is optional

	v.SetEnvPrefix("SCANSHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "development")
	v.SetDefault("app.name", "scanshelf")
	v.SetDefault("database.url", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.rate_limit", 20.0)
	v.SetDefault("http.rate_burst", 40)
	v.SetDefault("cache.short_ttl", time.Minute)
	v.SetDefault("cache.long_ttl", 10*time.Minute)
	v.SetDefault("lookup.base_url", "")
	v.SetDefault("lookup.timeout", 15*time.Second)

	cfg := &Config{
		App: AppConfig{
			Env:  v.GetString("app.env"),
			Name: v.GetString("app.name"),
		},
		DB: DBConfig{
			DatabaseURL: v.GetString("database.url"),
		},
		Redis: RedisConfig{
			RedisURL: v.GetString("redis.url"),
		},
		HTTP: HTTPConfig{
			Host:      v.GetString("http.host"),
			Port:      v.GetInt("http.port"),
			RateLimit: v.GetFloat64("http.rate_limit"),
			RateBurst: v.GetInt("http.rate_burst"),
		},
		Cache: CacheConfig{
			ShortTTL: v.GetDuration("cache.short_ttl"),
			LongTTL:  v.GetDuration("cache.long_ttl"),
		},
		Lookup: LookupConfig{
			BaseURL: v.GetString("lookup.base_url"),
			Timeout: v.GetDuration("lookup.timeout"),
		},
	}

	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return nil, fmt.Errorf("invalid http port %d", cfg.HTTP.Port)
	}
	if cfg.Cache.ShortTTL <= 0 || cfg.Cache.LongTTL <= 0 {
		return nil, fmt.Errorf("cache ttls must be positive")
	}

	return cfg, nil
}
