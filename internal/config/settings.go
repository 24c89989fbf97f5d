// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/nest-egg/internal/common"
)

// Defaults applied before any config file or environment is read.
const (
	DefaultDatabasePath = "$HOME/.local/share/nestegg/nestegg.db"
	DefaultOwnerID      = "local-user"
	DefaultServerAddr   = "127.0.0.1:8420"
	EnvPrefix           = "NESTEGG"
)

// Settings is the resolved application configuration.
type Settings struct {
	DatabasePath string
	OwnerID      string
	ServerAddr   string
	LogLevel     string
	LogFormat    string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("owner.id", DefaultOwnerID)
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// LoadDotEnv loads a .env file into the process environment.
// A missing default .env is not an error; a missing explicit path is.
func LoadDotEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
		return nil
	}
	_ = godotenv.Load()
	return nil
}

// Load reads the config file (if any) and environment into v and resolves Settings.
// It follows this precedence:
// 1. Environment variables (NESTEGG_DATABASE_PATH, NESTEGG_OWNER_ID, ...)
// 2. Config file values
// 3. Defaults
func Load(v *viper.Viper, cfgFile string) (*Settings, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".config", "nestegg"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	settings := &Settings{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		OwnerID:      strings.TrimSpace(v.GetString("owner.id")),
		ServerAddr:   v.GetString("server.addr"),
		LogLevel:     v.GetString("logging.level"),
		LogFormat:    v.GetString("logging.format"),
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks that every required setting is present.
func (s *Settings) Validate() error {
	var missing []string
	if s.DatabasePath == "" {
		missing = append(missing, "database.path")
	}
	if s.OwnerID == "" {
		missing = append(missing, "owner.id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, strings.Join(missing, ", "))
	}
	if _, err := common.ParseLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
