package config

import (
	"fmt"
	"os"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"gopkg.in/yaml.v3"
)

// DiscordConfig stores Discord specific configurations.
type DiscordConfig struct {
	BotToken      string             `yaml:"bot_token"`
	ApplicationID *discord.Snowflake `yaml:"application_id"`
	GuildIDs      []string           `yaml:"guild_ids"`
}

// CatalogConfig stores the sound catalog API configuration.
type CatalogConfig struct {
	BaseURL               string  `yaml:"base_url"`
	RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
	RequestsPerSecond     float64 `yaml:"requests_per_second"`
	SearchCacheSize       int     `yaml:"search_cache_size"`
}

// RequestTimeout returns the catalog HTTP request timeout.
func (c CatalogConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// SoundsConfig stores the local sound store and playback configuration.
type SoundsConfig struct {
	Directory          string `yaml:"directory"`
	PlaybackTTLSeconds int    `yaml:"playback_ttl_seconds"`
}

// PlaybackTTL returns how long a playback subscription stays armed before it
// is released.
func (c SoundsConfig) PlaybackTTL() time.Duration {
	return time.Duration(c.PlaybackTTLSeconds) * time.Second
}

// Config stores the application configuration.
type Config struct {
	Discord  DiscordConfig `yaml:"discord"`
	Catalog  CatalogConfig `yaml:"catalog"`
	Sounds   SoundsConfig  `yaml:"sounds"`
	LogLevel string        `yaml:"log_level"`
}

// LoadConfig loads the configuration from the given file path.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", filePath, err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = "https://www.myinstants.com/api/v1"
	}
	if c.Catalog.RequestTimeoutSeconds <= 0 {
		c.Catalog.RequestTimeoutSeconds = 10
	}
	if c.Catalog.RequestsPerSecond <= 0 {
		c.Catalog.RequestsPerSecond = 5
	}
	if c.Catalog.SearchCacheSize <= 0 {
		c.Catalog.SearchCacheSize = 256
	}
	if c.Sounds.Directory == "" {
		c.Sounds.Directory = "sounds"
	}
	if c.Sounds.PlaybackTTLSeconds <= 0 {
		c.Sounds.PlaybackTTLSeconds = 120
	}
}
