package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Storage StorageConfig
	Economy EconomyConfig
	UI      UIConfig
}

// StorageConfig locates the satchel document and the tier catalog file.
type StorageConfig struct {
	Path        string `mapstructure:"path"`
	CatalogPath string `mapstructure:"catalog_path"`
}

// EconomyConfig holds wallet ledger settings. Enabled false leaves the
// upgrade command switched off.
type EconomyConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	DatabasePath    string `mapstructure:"database_path"`
	MigrationsPath  string `mapstructure:"migrations_path"`
	CurrencySymbol  string `mapstructure:"currency_symbol"`
	StartingBalance int64  `mapstructure:"starting_balance"`
}

// UIConfig holds host presentation settings. UserID pins the local user's
// identity across runs; it is generated and saved on first start.
type UIConfig struct {
	UserID string `mapstructure:"user_id"`
}

// Load reads configuration from file and env. Env var overrides use prefix SATCHEL_.
func Load() (Config, error) {
	v := viper.New()

	dataDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "satchel")

	// default values
	v.SetDefault("storage.path", filepath.Join(dataDir, "satchels.yml"))
	v.SetDefault("storage.catalog_path", filepath.Join(os.Getenv("HOME"), ".config", "satchel", "tiers.toml"))
	v.SetDefault("economy.enabled", true)
	v.SetDefault("economy.database_path", filepath.Join(dataDir, "wallets.db"))
	v.SetDefault("economy.migrations_path", "internal/economy/migrations")
	v.SetDefault("economy.currency_symbol", "$")
	v.SetDefault("economy.starting_balance", int64(200_000))
	v.SetDefault("ui.user_id", "")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SATCHEL_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "satchel"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SATCHEL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Used for pinning the generated user id on first run.
func Save(cfg Config) error {
	path := os.Getenv("SATCHEL_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "satchel", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("storage.catalog_path", cfg.Storage.CatalogPath)
	v.Set("economy.enabled", cfg.Economy.Enabled)
	v.Set("economy.database_path", cfg.Economy.DatabasePath)
	v.Set("economy.migrations_path", cfg.Economy.MigrationsPath)
	v.Set("economy.currency_symbol", cfg.Economy.CurrencySymbol)
	v.Set("economy.starting_balance", cfg.Economy.StartingBalance)
	v.Set("ui.user_id", cfg.UI.UserID)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
