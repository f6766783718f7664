package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configDir  = ".sqlmapper"
	configFile = "config"
	configType = "yaml"
	envPrefix  = "SQLMAPPER"
)

// Default values applied before the config file and environment are read.
const (
	DefaultDebounceMS = 500
	DefaultServerAddr = ":8080"
	DefaultLogLevel   = "info"
	DefaultLogFile    = "sqlmapper.log"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType(configType)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("preferences.theme", "default")
	v.SetDefault("preferences.debounce_ms", DefaultDebounceMS)
	v.SetDefault("preferences.export_dir", ".")
	v.SetDefault("mapping.fallback_dialect", "postgres")
	v.SetDefault("mapping.json_columns", []string{"BODY", "COMMON_BODY", "SNAPSHOT_BODY"})
	v.SetDefault("mapping.integer_columns", []string{"SEQ_NUMBER", "AMENDMENT_NUMBER"})
	v.SetDefault("mapping.object_attributes", []string{"body", "commonbody", "snapshotbody"})
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("server.dsn", "")
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.file", "")
	return v
}

// Load reads the configuration from ~/.sqlmapper/config.yaml, or from path when it is
// not empty. A missing default file yields the defaults; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := configDirPath()
		if err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
		v.SetConfigName(configFile)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to ~/.sqlmapper/config.yaml.
// Connection passwords are moved to the keyring first.
func Save(cfg *Config) error {
	dir, err := configDirPath()
	if err != nil {
		return fmt.Errorf("config dir: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	for i := range cfg.Connections {
		if err := StorePassword(&cfg.Connections[i]); err != nil {
			return err
		}
	}

	v := viper.New()
	v.Set("connections", cfg.Connections)
	v.Set("preferences", cfg.Preferences)
	v.Set("mapping", cfg.Mapping)
	v.Set("server", cfg.Server)
	v.Set("log", cfg.Log)

	path := filepath.Join(dir, configFile+"."+configType)
	return v.WriteConfigAs(path)
}

// SaveConnection adds conn to cfg and persists the result.
func SaveConnection(cfg *Config, conn Connection) error {
	if cfg.HasConnection(conn.Name) {
		return StorePassword(&conn)
	}
	cfg.AddConnection(conn)
	return Save(cfg)
}

// DeleteConnection removes the named connection and its keyring secret, then
// persists cfg.
func DeleteConnection(cfg *Config, name string) error {
	if !cfg.RemoveConnection(name) {
		return fmt.Errorf("connection %s not found", name)
	}
	if err := ForgetPassword(name); err != nil {
		return err
	}
	return Save(cfg)
}

// DefaultConnection returns the default connection from config, or the first one.
func DefaultConnection(cfg *Config) *Connection {
	if len(cfg.Connections) == 0 {
		return nil
	}

	if cfg.Preferences.DefaultConnection != "" {
		for i := range cfg.Connections {
			if cfg.Connections[i].Name == cfg.Preferences.DefaultConnection {
				return &cfg.Connections[i]
			}
		}
	}

	return &cfg.Connections[0]
}

// Dir returns the directory holding the config file and the log file.
func Dir() (string, error) {
	return configDirPath()
}

func configDirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
