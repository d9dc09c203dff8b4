// Package config loads runtime settings from an optional YAML file and the
// environment, applies defaults and validates the result.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/sakif/phrasebook/internal/validate"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port          int    `mapstructure:"port" validate:"min=1,max=65535"`
	TemplateDir   string `mapstructure:"template_dir" validate:"required"`
	StaticDir     string `mapstructure:"static_dir" validate:"required"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AuthConfig: an empty JWTSecret is allowed and replaced at startup by a
// random one, which invalidates every token on restart.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret" validate:"omitempty,min=16"`
	TokenTTL      time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	AdminUsername string        `mapstructure:"admin_username" validate:"required,notblank"`
	AdminPassword string        `mapstructure:"admin_password" validate:"required,min=6"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":           "PORT",
	"server.template_dir":   "TEMPLATE_DIR",
	"server.static_dir":     "STATIC_DIR",
	"server.secure_cookies": "SECURE_COOKIES",
	"database.path":         "DB_PATH",
	"auth.jwt_secret":       "JWT_SECRET",
	"auth.token_ttl":        "TOKEN_TTL",
	"auth.admin_username":   "ADMIN_USERNAME",
	"auth.admin_password":   "ADMIN_PASSWORD",
	"log.level":             "LOG_LEVEL",
}

// Load reads configFile when given, otherwise looks for config.yaml in the
// working directory and ./config. A missing default file is not an error;
// a missing explicit file is.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("config: binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.template_dir", filepath.Join("web", "templates"))
	v.SetDefault("server.static_dir", filepath.Join("web", "static"))
	v.SetDefault("server.secure_cookies", false)

	v.SetDefault("database.path", filepath.Join("data", "phrasebook.db"))

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_password", "admin123")

	v.SetDefault("log.level", "info")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.StringToTimeDurationHookFunc()
	}
}

// SlogLevel converts Log.Level for slog.HandlerOptions.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EnsureJWTSecret fills an empty Auth.JWTSecret with 32 random bytes and
// reports whether it did so.
func (c *Config) EnsureJWTSecret() (bool, error) {
	if c.Auth.JWTSecret != "" {
		return false, nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return false, fmt.Errorf("config: generating JWT secret: %w", err)
	}
	c.Auth.JWTSecret = hex.EncodeToString(buf)
	return true, nil
}
