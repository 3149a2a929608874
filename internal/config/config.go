// ABOUTME: Gymlog configuration management backed by viper.
// ABOUTME: Reads config.json, applies GYMLOG_* env overrides, and opens storage.

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/harperreed/gymlog/internal/debounce"
	"github.com/harperreed/gymlog/internal/fsutil"
	"github.com/harperreed/gymlog/internal/prefs"
	"github.com/harperreed/gymlog/internal/storage"
)

// EnvPrefix prefixes every environment override, e.g. GYMLOG_DATA_DIR.
const EnvPrefix = "GYMLOG"

// Config stores gymlog configuration.
type Config struct {
	// DataDir is the root directory for gymlog.db and preferences.json.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/gymlog.
	DataDir string `mapstructure:"data_dir" json:"data_dir,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" json:"log_level,omitempty"`

	// DebounceMS is the quiet interval for coalesced set edits.
	DebounceMS int `mapstructure:"debounce_ms" json:"debounce_ms,omitempty"`

	// CharmHost overrides the charm server used for remote backups.
	CharmHost string `mapstructure:"charm_host" json:"charm_host,omitempty"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// DBPath returns the database file path.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), storage.DBFileName)
}

// PreferencesPath returns the preferences file path.
func (c *Config) PreferencesPath() string {
	return filepath.Join(c.GetDataDir(), prefs.FileName)
}

// DebounceInterval returns the debounce interval, falling back to the default.
func (c *Config) DebounceInterval() time.Duration {
	if c.DebounceMS <= 0 {
		return debounce.DefaultInterval
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage opens and initializes the database in the data directory.
func (c *Config) OpenStorage(ctx context.Context, logger *log.Logger) (*storage.DB, error) {
	opts := []storage.Option{storage.WithPreferences(prefs.New(c.PreferencesPath()))}
	if logger != nil {
		opts = append(opts, storage.WithLogger(logger))
	}
	db, err := storage.Open(ctx, c.DBPath(), opts...)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "gymlog", "config.json")
}

// Load reads config from disk, then applies environment overrides.
// Precedence (highest to lowest): GYMLOG_* env, config.json, defaults.
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith loads config into v so callers can bind CLI flags first.
func LoadWith(v *viper.Viper) (*Config, error) {
	v.SetDefault("data_dir", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("debounce_ms", int(debounce.DefaultInterval/time.Millisecond))
	v.SetDefault("charm_host", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := GetConfigPath()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFile(GetConfigPath(), data, 0600)
}
