package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Player  PlayerConfig  `mapstructure:"player"`
	UI      UIConfig      `mapstructure:"ui"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds catalog server configuration
type ServerConfig struct {
	URL    string `mapstructure:"url"`
	Token  string `mapstructure:"token"`
	UserID string `mapstructure:"user_id"`
}

// PlayerConfig holds media player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"` // empty detects an installed player
	Args    []string `mapstructure:"args"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	ModalCloseDelay   time.Duration `mapstructure:"modal_close_delay"`
	SearchSuggestions int           `mapstructure:"search_suggestions"`
	FeaturedSource    string        `mapstructure:"featured_source"` // "random" asks the server, "catalog" rolls locally
}

// Featured pick sources
const (
	FeaturedRandom  = "random"
	FeaturedCatalog = "catalog"
)

// CacheConfig controls the on-disk snapshot store
type CacheConfig struct {
	Dir     string `mapstructure:"dir"`
	Persist bool   `mapstructure:"persist"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File   string `mapstructure:"file"`   // "-" logs to stderr, "" disables logging
	Level  string `mapstructure:"level"`  // debug, info, warn or error
	Format string `mapstructure:"format"` // json or text
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:    "http://localhost:3000",
			UserID: "demo",
		},
		Player: PlayerConfig{
			Args: []string{},
		},
		UI: UIConfig{
			ModalCloseDelay:   300 * time.Millisecond,
			SearchSuggestions: 5,
			FeaturedSource:    FeaturedRandom,
		},
		Cache: CacheConfig{
			Dir:     defaultCachePath(),
			Persist: true,
		},
		Logging: LoggingConfig{
			File:   defaultLogPath(),
			Level:  "INFO",
			Format: "json",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee", "marquee.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "marquee.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "marquee")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "marquee", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "cache")
	}
}

// newViper builds a viper instance with every key defaulted, so environment
// overrides apply even when the config file omits a key.
func newViper(dirs ...string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	// Environment variable overrides: MARQUEE_SERVER_URL, MARQUEE_UI_MODAL_CLOSE_DELAY, ...
	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setAll(DefaultConfig(), v.SetDefault)
	return v
}

// setAll writes each config field under its snake_case key
func setAll(cfg *Config, set func(key string, value any)) {
	set("server.url", cfg.Server.URL)
	set("server.token", cfg.Server.Token)
	set("server.user_id", cfg.Server.UserID)

	set("player.command", cfg.Player.Command)
	set("player.args", cfg.Player.Args)

	set("ui.modal_close_delay", cfg.UI.ModalCloseDelay.String())
	set("ui.search_suggestions", cfg.UI.SearchSuggestions)
	set("ui.featured_source", cfg.UI.FeaturedSource)

	set("cache.dir", cfg.Cache.Dir)
	set("cache.persist", cfg.Cache.Persist)

	set("logging.file", cfg.Logging.File)
	set("logging.level", cfg.Logging.Level)
	set("logging.format", cfg.Logging.Format)
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(defaultConfigPath(), ".")
}

// LoadConfigFrom loads config.yaml from the first of dirs that has one.
// A missing file is not an error.
func LoadConfigFrom(dirs ...string) (*Config, error) {
	v := newViper(dirs...)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to the default location
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(defaultConfigPath(), cfg)
}

// SaveConfigTo writes cfg as config.yaml under dir
func SaveConfigTo(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setAll(cfg, v.Set)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsConfigured returns true if a server URL and user are set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != "" && c.Server.UserID != ""
}

// SnapshotDir returns the directory for the snapshot store, or "" when
// persistence is disabled.
func (c *Config) SnapshotDir() string {
	if !c.Cache.Persist {
		return ""
	}
	return c.Cache.Dir
}

// ClearCache removes all cached data under the configured directory
func (c *Config) ClearCache() error {
	if c.Cache.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(c.Cache.Dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
