// Package config loads the server and CLI configuration from a YAML file,
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. MDTGEN_SERVER_PORT.
const EnvPrefix = "MDTGEN"

// AppConfig is the root configuration.
type AppConfig struct {
	Server       ServerConfig       `mapstructure:"server"`
	Storage      StorageConfig      `mapstructure:"storage"`
	WarcraftLogs WarcraftLogsConfig `mapstructure:"warcraftlogs"`
	Conversion   ConversionConfig   `mapstructure:"conversion"`
	Jobs         JobsConfig         `mapstructure:"jobs"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                 int           `mapstructure:"port"`
	BindAddress          string        `mapstructure:"bind_address"`
	BasePath             string        `mapstructure:"base_path"`
	ReadTimeout          time.Duration `mapstructure:"read_timeout"`
	WriteTimeout         time.Duration `mapstructure:"write_timeout"`
	IdleTimeout          time.Duration `mapstructure:"idle_timeout"`
	BodyLimit            string        `mapstructure:"body_limit"`
	EnableCORS           bool          `mapstructure:"enable_cors"`
	AllowOrigins         string        `mapstructure:"allow_origins"`
	EnableRequestLogging bool          `mapstructure:"enable_request_logging"`
	EnableCompression    bool          `mapstructure:"enable_compression"`
	StaticDir            string        `mapstructure:"static_dir"` // browser UI, empty = API only
}

// StorageConfig selects the spell filter / class mapping store.
type StorageConfig struct {
	Driver        string `mapstructure:"driver"` // duckdb | sqlite
	DataDirectory string `mapstructure:"data_directory"`
	DatabaseFile  string `mapstructure:"database_file"`
	Mode          string `mapstructure:"mode"` // shared | local, reported to clients
}

// WarcraftLogsConfig holds API client settings
type WarcraftLogsConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	TokenURL       string        `mapstructure:"token_url"`
	ClientID       string        `mapstructure:"client_id"`
	ClientSecret   string        `mapstructure:"client_secret"`
	Token          string        `mapstructure:"token"`
	TokenExpires   string        `mapstructure:"token_expires"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxPages       int           `mapstructure:"max_pages"`
	PageLimit      int           `mapstructure:"page_limit"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// ConversionConfig tunes the note pipeline
type ConversionConfig struct {
	GroupWindowSeconds int    `mapstructure:"group_window_seconds"`
	RulesetFile        string `mapstructure:"ruleset_file"` // empty = built-in
	FilterEnabled      bool   `mapstructure:"filter_enabled"`
}

// JobsConfig controls fetch job retention
type JobsConfig struct {
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	MaxAge          time.Duration `mapstructure:"max_age"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// legacyEnv maps config keys to the environment names the old server read.
var legacyEnv = map[string]string{
	"server.port":                "PORT",
	"server.base_path":           "BASE_PATH",
	"storage.mode":               "DB_MODE",
	"warcraftlogs.token":         "WARCRAFT_LOGS_TOKEN",
	"warcraftlogs.token_expires": "WARCRAFT_LOGS_TOKEN_EXPIRES",
	"storage.data_directory":     "DATA_DIR",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8005)
	v.SetDefault("server.bind_address", "0.0.0.0")
	v.SetDefault("server.base_path", "")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "0s") // SSE streams stay open
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.body_limit", "10M")
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("server.allow_origins", "*")
	v.SetDefault("server.enable_request_logging", true)
	v.SetDefault("server.enable_compression", true)
	v.SetDefault("server.static_dir", "")

	v.SetDefault("storage.driver", "duckdb")
	v.SetDefault("storage.data_directory", "./data")
	v.SetDefault("storage.database_file", "spells.db")
	v.SetDefault("storage.mode", "shared")

	v.SetDefault("warcraftlogs.api_url", "https://www.warcraftlogs.com/api/v2/client")
	v.SetDefault("warcraftlogs.token_url", "https://www.warcraftlogs.com/oauth/token")
	v.SetDefault("warcraftlogs.client_id", "")
	v.SetDefault("warcraftlogs.client_secret", "")
	v.SetDefault("warcraftlogs.token", "")
	v.SetDefault("warcraftlogs.token_expires", "")
	v.SetDefault("warcraftlogs.timeout", "30s")
	v.SetDefault("warcraftlogs.max_pages", 10)
	v.SetDefault("warcraftlogs.page_limit", 5000)
	v.SetDefault("warcraftlogs.max_retries", 3)
	v.SetDefault("warcraftlogs.retry_delay_base", "1s")

	v.SetDefault("conversion.group_window_seconds", 5)
	v.SetDefault("conversion.ruleset_file", "")
	v.SetDefault("conversion.filter_enabled", true)

	v.SetDefault("jobs.cleanup_interval", "5m")
	v.SetDefault("jobs.max_age", "1h")

	v.SetDefault("logging.level", "info")
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		envName := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", legacy, err)
		}
	}
	return v, nil
}

// DefaultConfig returns the configuration with no file and no environment.
func DefaultConfig() *AppConfig {
	v := viper.New()
	setDefaults(v)

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("config: bad defaults: %v", err))
	}
	return cfg
}

// LoadConfig loads configuration from a YAML file with environment overrides.
// A missing file is created from the defaults; an empty path skips the file.
func LoadConfig(configPath string) (*AppConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			// written from a defaults-only instance so env secrets never land on disk
			dv := viper.New()
			setDefaults(dv)
			if err := dv.SafeWriteConfigAs(configPath); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if configPath != "" {
		cfg.resolvePaths(filepath.Dir(configPath))
	}
	cfg.Server.BasePath = normalizeBasePath(cfg.Server.BasePath)

	return cfg, nil
}

// normalizeBasePath turns "mdt/" into "/mdt"; "" and "/" mean no prefix.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if c.Conversion.RulesetFile != "" && !filepath.IsAbs(c.Conversion.RulesetFile) {
		c.Conversion.RulesetFile = filepath.Join(configDir, c.Conversion.RulesetFile)
	}
	if c.Server.StaticDir != "" && !filepath.IsAbs(c.Server.StaticDir) {
		c.Server.StaticDir = filepath.Join(configDir, c.Server.StaticDir)
	}
}

// Validate checks that all configuration values are valid
func (c *AppConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Storage.Driver {
	case "duckdb", "sqlite":
	default:
		return fmt.Errorf("storage.driver must be one of: duckdb, sqlite")
	}
	switch c.Storage.Mode {
	case "shared", "local":
	default:
		return fmt.Errorf("storage.mode must be one of: shared, local")
	}
	if c.Storage.DatabaseFile == "" {
		return fmt.Errorf("storage.database_file is required")
	}

	if c.WarcraftLogs.APIURL == "" {
		return fmt.Errorf("warcraftlogs.api_url is required")
	}
	if c.WarcraftLogs.MaxPages < 1 {
		return fmt.Errorf("warcraftlogs.max_pages must be at least 1")
	}
	if c.WarcraftLogs.PageLimit < 1 || c.WarcraftLogs.PageLimit > 10000 {
		return fmt.Errorf("warcraftlogs.page_limit must be between 1 and 10000")
	}
	if c.WarcraftLogs.MaxRetries < 0 {
		return fmt.Errorf("warcraftlogs.max_retries must not be negative")
	}
	if c.WarcraftLogs.ClientID != "" && c.WarcraftLogs.ClientSecret == "" {
		return fmt.Errorf("warcraftlogs.client_secret is required when client_id is set")
	}

	if c.Conversion.GroupWindowSeconds < 0 {
		return fmt.Errorf("conversion.group_window_seconds must not be negative")
	}

	if c.Jobs.CleanupInterval < time.Second {
		return fmt.Errorf("jobs.cleanup_interval must be at least 1 second")
	}
	if c.Jobs.MaxAge < time.Minute {
		return fmt.Errorf("jobs.max_age must be at least 1 minute")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "off": true}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, off")
	}

	return nil
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetDatabasePath returns the store location. DuckDB treats an empty path as
// in-memory, so ":memory:" is passed through unchanged.
func (c *AppConfig) GetDatabasePath() string {
	if c.Storage.DatabaseFile == ":memory:" || filepath.IsAbs(c.Storage.DatabaseFile) {
		return c.Storage.DatabaseFile
	}
	return filepath.Join(c.Storage.DataDirectory, c.Storage.DatabaseFile)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.DataDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.Storage.DataDirectory, err)
	}
	return nil
}
