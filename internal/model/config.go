package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultBaseURL is the remote todo API used when none is configured.
const DefaultBaseURL = "https://fe-test-api.nwappservice.com"

// APIConfig holds settings for the remote todo API.
type APIConfig struct {
	// BaseURL is the root URL of the todo API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// VerifySession asks the API to verify a stored token on startup
	// before the session is trusted for routing.
	VerifySession bool `mapstructure:"verify_session" yaml:"verify_session"`
}

// TodosConfig holds list view behavior.
type TodosConfig struct {
	PageSize         int `mapstructure:"page_size" yaml:"page_size"`
	SearchDebounceMS int `mapstructure:"search_debounce_ms" yaml:"search_debounce_ms"`
}

// RegisterConfig holds registration form behavior.
type RegisterConfig struct {
	// EmailDomain is appended to registration emails entered without "@".
	EmailDomain string `mapstructure:"email_domain" yaml:"email_domain"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme           string `mapstructure:"theme" yaml:"theme"`
	NotificationSec int    `mapstructure:"notification_sec" yaml:"notification_sec"`
}

// StorageConfig holds local persistence paths.
type StorageConfig struct {
	StateDB string `mapstructure:"state_db" yaml:"state_db"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Todos    TodosConfig    `mapstructure:"todos" yaml:"todos"`
	Register RegisterConfig `mapstructure:"register" yaml:"register"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// ConfigDir returns ~/.config/todoclient, or "." when the home directory
// cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "todoclient")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/todoclient/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := ConfigDir()
	return &AppConfig{
		API: APIConfig{
			BaseURL:       DefaultBaseURL,
			VerifySession: true,
		},
		Todos: TodosConfig{
			PageSize:         5,
			SearchDebounceMS: 500,
		},
		Register: RegisterConfig{
			EmailDomain: "squareteam.com",
		},
		Display: DisplayConfig{
			Theme:           "default",
			NotificationSec: 3,
		},
		Storage: StorageConfig{
			StateDB: filepath.Join(dir, "state.db"),
		},
		Log: LogConfig{
			File: filepath.Join(dir, "todoclient.log"),
		},
	}
}

// setDefaults mirrors defaultAppConfig into v so missing keys resolve
// to sensible values.
func setDefaults(v *viper.Viper, cfg *AppConfig) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.verify_session", cfg.API.VerifySession)
	v.SetDefault("todos.page_size", cfg.Todos.PageSize)
	v.SetDefault("todos.search_debounce_ms", cfg.Todos.SearchDebounceMS)
	v.SetDefault("register.email_domain", cfg.Register.EmailDomain)
	v.SetDefault("display.theme", cfg.Display.Theme)
	v.SetDefault("display.notification_sec", cfg.Display.NotificationSec)
	v.SetDefault("storage.state_db", cfg.Storage.StateDB)
	v.SetDefault("log.file", cfg.Log.File)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with TODOCLIENT_ override file values
// (e.g. TODOCLIENT_API_BASE_URL). If the file does not exist, defaults
// plus environment overrides are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TODOCLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := defaultAppConfig()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.Todos.PageSize <= 0 {
		cfg.Todos.PageSize = 5
	}
	if cfg.Todos.SearchDebounceMS < 0 {
		cfg.Todos.SearchDebounceMS = 0
	}
	if cfg.Display.NotificationSec <= 0 {
		cfg.Display.NotificationSec = 3
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("todos", cfg.Todos)
	v.Set("register", cfg.Register)
	v.Set("display", cfg.Display)
	v.Set("storage", cfg.Storage)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
