package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const minSecretKeyLength = 32

var (
	ErrSecretKeyMissing     = errors.New("SECRET_KEY is required")
	ErrSecretKeyPlaceholder = errors.New("SECRET_KEY uses an insecure placeholder")
	ErrSecretKeyTooShort    = errors.New("SECRET_KEY must be at least 32 characters")
	ErrDatabaseDriver       = errors.New("unsupported database driver")
	ErrDatabaseURLMissing   = errors.New("DATABASE_URL is required for postgres")
)

var insecureSecretPlaceholders = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig   `yaml:"server"`
	Database  DatabaseConfig `yaml:"database"`
	Log       LogConfig      `yaml:"log"`
	Reminders ReminderConfig `yaml:"reminders"`
	Redis     RedisConfig    `yaml:"redis"`
	Telegram  TelegramConfig `yaml:"telegram"`
	Locale    LocaleConfig   `yaml:"locale"`
}

type ServerConfig struct {
	Port         string        `yaml:"port"`
	SecretKey    string        `yaml:"secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	LoginPerMin  int           `yaml:"login_per_minute"`
	ShutdownWait time.Duration `yaml:"shutdown_wait"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	URL    string `yaml:"url"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ReminderConfig struct {
	PeriodDays      int           `yaml:"period_days"`
	NotifyFertility bool          `yaml:"notify_fertility"`
	Interval        time.Duration `yaml:"interval"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// TelegramConfig addresses a single operator chat. Reminders for every user
// are delivered there.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type LocaleConfig struct {
	Timezone        string `yaml:"timezone"`
	DefaultLanguage string `yaml:"default_language"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:         "8080",
			TokenTTL:     7 * 24 * time.Hour,
			LoginPerMin:  8,
			ShutdownWait: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   filepath.Join("data", "cyclecast.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Reminders: ReminderConfig{
			PeriodDays:      2,
			NotifyFertility: true,
			Interval:        6 * time.Hour,
		},
		Locale: LocaleConfig{
			Timezone:        "UTC",
			DefaultLanguage: "en",
		},
	}
}

// Load applies defaults, then the YAML file at path (skipped when path is
// empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		file, err := os.Open(path) //#nosec G304 -- operator supplied config path
		if err != nil {
			return Config{}, fmt.Errorf("open config file: %w", err)
		}
		defer func() { _ = file.Close() }()

		if err := decodeYAML(file, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(reader io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	setString := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}

	setString("PORT", &cfg.Server.Port)
	setString("SECRET_KEY", &cfg.Server.SecretKey)
	setString("DB_DRIVER", &cfg.Database.Driver)
	setString("DB_PATH", &cfg.Database.Path)
	setString("DATABASE_URL", &cfg.Database.URL)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)
	setString("TZ", &cfg.Locale.Timezone)
	setString("DEFAULT_LANGUAGE", &cfg.Locale.DefaultLanguage)
	setString("REDIS_ADDR", &cfg.Redis.Addr)
	setString("TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID)

	if raw, ok := lookup("REMINDER_PERIOD_DAYS"); ok && raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid REMINDER_PERIOD_DAYS %q", raw)
		}
		cfg.Reminders.PeriodDays = parsed
	}
	if raw, ok := lookup("REMINDER_NOTIFY_FERTILITY"); ok && raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid REMINDER_NOTIFY_FERTILITY %q", raw)
		}
		cfg.Reminders.NotifyFertility = parsed
	}
	if raw, ok := lookup("REMINDER_INTERVAL"); ok && raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("invalid REMINDER_INTERVAL %q", raw)
		}
		cfg.Reminders.Interval = parsed
	}
	return nil
}

// Validate checks settings needed to serve requests. Commands that only touch
// the database do not require a secret and can call ValidateDatabase instead.
func (cfg Config) Validate() error {
	if _, err := ResolveSecretKey(cfg.Server.SecretKey); err != nil {
		return err
	}
	return cfg.ValidateDatabase()
}

func (cfg Config) ValidateDatabase() error {
	switch cfg.Database.Driver {
	case DriverSQLite:
		return nil
	case DriverPostgres:
		if strings.TrimSpace(cfg.Database.URL) == "" {
			return ErrDatabaseURLMissing
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrDatabaseDriver, cfg.Database.Driver)
	}
}

func (cfg Config) Location() *time.Location {
	location, err := time.LoadLocation(cfg.Locale.Timezone)
	if err != nil {
		return time.UTC
	}
	return location
}

func (cfg Config) TelegramEnabled() bool {
	return cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != ""
}

func ResolveSecretKey(raw string) (string, error) {
	secret := strings.TrimSpace(raw)
	if secret == "" {
		return "", ErrSecretKeyMissing
	}
	if _, insecure := insecureSecretPlaceholders[strings.ToLower(secret)]; insecure {
		return "", ErrSecretKeyPlaceholder
	}
	if len(secret) < minSecretKeyLength {
		return "", ErrSecretKeyTooShort
	}
	return secret, nil
}
