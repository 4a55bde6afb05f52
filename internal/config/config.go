// Package config resolves scout's settings: config file, then environment,
// then flags (bound by the CLI layer).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// APIURL is the portal backend base URL.
	APIURL string `mapstructure:"api_url"`
	// PortalURL is the web origin deep links point at; the API origin is
	// used when unset.
	PortalURL string `mapstructure:"portal_url"`
	// TokenFile holds the bearer token the portal login flow writes.
	TokenFile string `mapstructure:"token_file"`
	// DefaultLimit is the page size used when the URL does not say otherwise.
	DefaultLimit int `mapstructure:"default_limit"`
	// Debug enables zap debug logging to LogFile.
	Debug   bool   `mapstructure:"debug"`
	LogFile string `mapstructure:"log_file"`
}

// Load reads config.yaml from the user config dir (or cfgFile when given)
// with SCOUT_* env overrides.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("api_url", "")
	v.SetDefault("portal_url", "")
	v.SetDefault("default_limit", 25)
	v.SetDefault("debug", false)

	if dir, err := os.UserConfigDir(); err == nil {
		v.SetDefault("token_file", filepath.Join(dir, "scout", "token"))
		v.SetDefault("log_file", filepath.Join(dir, "scout", "scout.log"))
		v.AddConfigPath(filepath.Join(dir, "scout"))
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("scout")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// No config file in the search path is fine; env/flags may carry
		// everything. An explicitly named file that fails to read is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
