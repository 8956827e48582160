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

// Config holds application configuration for both the admin client and the
// development record service.
type Config struct {
	API    APIConfig
	UI     UIConfig
	Log    LogConfig
	Server ServerConfig
}

// APIConfig locates the circle service.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout time.Duration
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Theme    string
	PageSize int `mapstructure:"page_size"`
	Route    string
}

// LogConfig selects level and destination. An empty File means stderr.
type LogConfig struct {
	Level string
	File  string
}

// ServerConfig holds the development service settings.
type ServerConfig struct {
	Addr        string
	Store       string // "sqlite" | "json"
	DSN         string
	JSONPath    string `mapstructure:"json_path"`
	UploadDir   string `mapstructure:"upload_dir"`
	JWTSecret   string `mapstructure:"jwt_secret"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

// EnvConfig names the variable that overrides the config file location.
const EnvConfig = "CIRCLES_CONFIG"

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "circles")
}

// Load reads configuration from file and env. Env var overrides use prefix
// CIRCLES_. path, when non-empty, wins over CIRCLES_CONFIG.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("ui.theme", "classic")
	v.SetDefault("ui.page_size", 20)
	v.SetDefault("ui.route", "/")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(os.Getenv("HOME"), ".circles", "circles.log"))
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.store", "sqlite")
	v.SetDefault("server.dsn", filepath.Join(dataDir(), "circles.db"))
	v.SetDefault("server.json_path", filepath.Join(dataDir(), "circles.json"))
	v.SetDefault("server.upload_dir", filepath.Join(dataDir(), "uploads"))
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.max_upload_mb", 10)

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "circles"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CIRCLES")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit path that does not exist is an error, a missing default is not
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings nothing downstream could work with.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.API.BaseURL) == "":
		return fmt.Errorf("config: api.base_url is required")
	case c.UI.PageSize <= 0:
		return fmt.Errorf("config: ui.page_size must be positive, got %d", c.UI.PageSize)
	case c.Server.Store != "sqlite" && c.Server.Store != "json":
		return fmt.Errorf("config: server.store must be sqlite or json, got %q", c.Server.Store)
	case c.Server.MaxUploadMB <= 0:
		return fmt.Errorf("config: server.max_upload_mb must be positive")
	}
	return nil
}
