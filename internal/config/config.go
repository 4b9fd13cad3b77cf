package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appName   = "movzen"
	envPrefix = "MOVZEN"
	fileName  = "config.yaml"
)

// Config holds all application configuration
type Config struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Browser BrowserConfig `mapstructure:"browser"`
}

// TMDBConfig holds movie metadata API configuration
type TMDBConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Token     string        `mapstructure:"token"` // v4 read access token, sent as Bearer
	Language  string        `mapstructure:"language"`
	Region    string        `mapstructure:"region"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
}

// FetchConfig holds the retry policy for catalog queries
type FetchConfig struct {
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// StorageConfig holds local list storage configuration
type StorageConfig struct {
	Dir string `mapstructure:"dir"` // empty = in-memory only
}

// BrowserConfig holds the program used to open trailer links
type BrowserConfig struct {
	Command string   `mapstructure:"command"` // empty = system default
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:   "https://api.themoviedb.org/3",
			Language:  "en-US",
			Region:    "US",
			Timeout:   30 * time.Second,
			RateLimit: 20,
		},
		Fetch: FetchConfig{
			Retries:    3,
			RetryDelay: 500 * time.Millisecond,
		},
		Storage: StorageConfig{
			Dir: defaultDataPath(),
		},
		Logging: LoggingConfig{
			File:   filepath.Join(defaultDataPath(), appName+".log"),
			Level:  "INFO",
			Format: "json",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// newViper creates a viper instance seeded with the defaults so every key
// can be overridden from the environment
func newViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()

	v.SetDefault("tmdb.base_url", def.TMDB.BaseURL)
	v.SetDefault("tmdb.token", def.TMDB.Token)
	v.SetDefault("tmdb.language", def.TMDB.Language)
	v.SetDefault("tmdb.region", def.TMDB.Region)
	v.SetDefault("tmdb.timeout", def.TMDB.Timeout)
	v.SetDefault("tmdb.rate_limit", def.TMDB.RateLimit)
	v.SetDefault("fetch.retries", def.Fetch.Retries)
	v.SetDefault("fetch.retry_delay", def.Fetch.RetryDelay)
	v.SetDefault("storage.dir", def.Storage.Dir)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("browser.command", def.Browser.Command)
	v.SetDefault("browser.args", def.Browser.Args)

	// MOVZEN_TMDB_TOKEN overrides tmdb.token
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load loads configuration from path, or from the default locations when
// path is empty, then applies environment overrides. Only an explicit path
// has to exist.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	cfg.Logging.File = expandHome(cfg.Logging.File)
	return cfg, nil
}

// Save writes cfg to path, or to the default config directory when path is
// empty. Returns the file written.
func Save(cfg *Config, path string) (string, error) {
	if path == "" {
		path = filepath.Join(DefaultConfigDir(), fileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("tmdb.base_url", cfg.TMDB.BaseURL)
	v.Set("tmdb.token", cfg.TMDB.Token)
	v.Set("tmdb.language", cfg.TMDB.Language)
	v.Set("tmdb.region", cfg.TMDB.Region)
	v.Set("tmdb.timeout", cfg.TMDB.Timeout.String())
	v.Set("tmdb.rate_limit", cfg.TMDB.RateLimit)
	v.Set("fetch.retries", cfg.Fetch.Retries)
	v.Set("fetch.retry_delay", cfg.Fetch.RetryDelay.String())
	v.Set("storage.dir", cfg.Storage.Dir)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.format", cfg.Logging.Format)
	v.Set("browser.command", cfg.Browser.Command)
	v.Set("browser.args", cfg.Browser.Args)

	v.SetConfigType("yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// IsConfigured returns true if an API token is set
func (c *Config) IsConfigured() bool {
	return strings.TrimSpace(c.TMDB.Token) != ""
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
