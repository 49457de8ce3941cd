// Package config reads the server configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/davka-nysa/davka/internal/daily"
	"github.com/davka-nysa/davka/internal/media"
	"github.com/davka-nysa/davka/internal/storage"
	"github.com/davka-nysa/davka/internal/validate"
)

type Config struct {
	Port string `validate:"required,numeric"`

	SiteUser     string `validate:"required"`
	SitePassword string
	AdminToken   string

	DailyTagPrefix string `validate:"required"`
	ClosingHour    int    `validate:"min=0,max=24"`
	Timezone       string `validate:"required,timezone"`

	MediaDriver   string `validate:"omitempty,oneof=cloudinary local"`
	Cloudinary    media.CloudinaryConfig
	LocalMediaDir string `validate:"required"`
	UploadFolder  string `validate:"required"`

	RetentionDays     int    `validate:"min=0"`
	RetentionSchedule string `validate:"required,cron"`

	ListCacheTTL time.Duration `validate:"min=0"`
	SessionTTL   time.Duration `validate:"min=0"`
	// VerifyPerMinute limits admin token checks per client address.
	VerifyPerMinute int `validate:"min=1"`
	// TrustProxy keys client addresses on X-Forwarded-For. Only enable it
	// behind a reverse proxy that sets the header.
	TrustProxy bool

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	// StaticDir, when set, overlays the embedded static assets.
	StaticDir string
}

// FromEnv loads the configuration from the process environment.
func FromEnv() (Config, error) {
	return Load(os.Getenv)
}

// Load builds a Config from getenv, applying defaults and validation.
func Load(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:           env("PORT", "8080"),
		SiteUser:       env("SITE_USER", "davka"),
		SitePassword:   getenv("SITE_PASSWORD"),
		AdminToken:     getenv("ADMIN_TOKEN"),
		DailyTagPrefix: env("DAILY_TAG_PREFIX", daily.DefaultPrefix),
		Timezone:       env("TIMEZONE", daily.DefaultTimezone),
		MediaDriver:    strings.ToLower(env("MEDIA_DRIVER", "")),
		Cloudinary: media.CloudinaryConfig{
			URL:       env("CLOUDINARY_URL", ""),
			CloudName: env("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    env("CLOUDINARY_API_KEY", ""),
			APISecret: env("CLOUDINARY_API_SECRET", ""),
		},
		LocalMediaDir:     env("LOCAL_MEDIA_DIR", "data/media"),
		UploadFolder:      env("UPLOAD_FOLDER", media.DefaultFolder),
		RetentionSchedule: env("RETENTION_SCHEDULE", "0 3 * * *"),
		LogLevel:          strings.ToLower(env("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(env("LOG_FORMAT", "text")),
		StaticDir:         env("STATIC_DIR", ""),
	}

	var err error
	if cfg.ClosingHour, err = envInt(env, "CLOSING_HOUR_PL", daily.DefaultClosingHour); err != nil {
		return Config{}, err
	}
	if cfg.RetentionDays, err = envInt(env, "RETENTION_DAYS", 14); err != nil {
		return Config{}, err
	}
	if cfg.VerifyPerMinute, err = envInt(env, "VERIFY_PER_MINUTE", 10); err != nil {
		return Config{}, err
	}
	if cfg.TrustProxy, err = envBool(env, "TRUST_PROXY", false); err != nil {
		return Config{}, err
	}
	if cfg.ListCacheTTL, err = envDuration(env, "LIST_CACHE_TTL", storage.DefaultListTTL); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = envDuration(env, "SESSION_TTL", storage.DefaultSessionTTL); err != nil {
		return Config{}, err
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envInt(env func(string, string) string, key string, def int) (int, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envBool(env func(string, string) string, key string, def bool) (bool, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envDuration(env func(string, string) string, key string, def time.Duration) (time.Duration, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Media returns the media store configuration.
func (c Config) Media() media.Config {
	return media.Config{
		Driver:     c.MediaDriver,
		Cloudinary: c.Cloudinary,
		Local:      media.LocalConfig{Dir: c.LocalMediaDir, BaseURL: "/media"},
	}
}

// Clock returns the day/closing-hour clock for this configuration.
func (c Config) Clock() (daily.Clock, error) {
	return daily.NewClock(c.Timezone, c.DailyTagPrefix, c.ClosingHour)
}

func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
