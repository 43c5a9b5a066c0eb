package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/clinic/internal/paths"
	"github.com/mesh-intelligence/clinic/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "CLINIC"
)

// envKeys are the config keys that CLINIC_* environment variables override.
// data_dir is resolved separately so that config.yaml wins over
// CLINIC_DATA_DIR.
var envKeys = []string{
	"listen",
	"log.level",
	"log.file",
	"log.max_size_mb",
	"log.max_backups",
	"log.max_age_days",
	"print.command",
	"print.spool_dir",
}

// defaultConfig is the configuration used for keys absent from config.yaml.
func defaultConfig() types.Config {
	return types.Config{
		Listen: types.DefaultListen,
		Log: types.LogConfig{
			Level:      types.DefaultLogLevel,
			MaxSizeMB:  types.DefaultLogMaxSizeMB,
			MaxBackups: types.DefaultLogBackups,
			MaxAgeDays: types.DefaultLogMaxAge,
		},
	}
}

// loadConfig reads config.yaml from configDir, applies CLINIC_* environment
// overrides, and resolves the data directory and the paths derived from it.
// A missing config.yaml is not an error.
func loadConfig(configDir, dataDirFlag string) (types.Config, error) {
	def := defaultConfig()

	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("data_dir", "")
	v.SetDefault("listen", def.Listen)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", def.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", def.Log.MaxBackups)
	v.SetDefault("log.max_age_days", def.Log.MaxAgeDays)
	v.SetDefault("print.command", "")
	v.SetDefault("print.spool_dir", "")
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return types.Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}

	dataDir, err := paths.ResolveDataDir(dataDirFlag, cfg.DataDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDir
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(dataDir, "logs", "clinic.log")
	}
	if cfg.Print.SpoolDir == "" {
		cfg.Print.SpoolDir = filepath.Join(dataDir, "spool")
	}

	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// databasePath returns the location of clinic.db for cfg.
func databasePath(cfg types.Config) string {
	return filepath.Join(cfg.DataDir, types.DatabaseFileName)
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil.
func writeConfigIfMissing(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(defaultConfig())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# Clinic configuration. Environment variables prefixed CLINIC_ override these keys.\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}
