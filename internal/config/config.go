package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config is the full service configuration
type Config struct {
	Server    Server    `koanf:"server"`
	Database  Database  `koanf:"database"`
	Telegram  Telegram  `koanf:"telegram"`
	Content   Content   `koanf:"content"`
	Reminders Reminders `koanf:"reminders"`
}

// Server configures the HTTP API
type Server struct {
	Port           int      `koanf:"port" validate:"gte=1,lte=65535"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Database configures the review store backend
type Database struct {
	Driver string `koanf:"driver" validate:"required,oneof=postgres sqlite3"`
	DSN    string `koanf:"dsn" validate:"required"`
}

// Telegram configures the reminder notifier; reminders are disabled when
// the token is empty
type Telegram struct {
	BotToken string `koanf:"bot_token"`
}

// Content configures the lesson library
type Content struct {
	// Optional xlsx/csv curriculum file merged into the embedded dataset
	ImportPath string `koanf:"import_path"`
}

// Reminders bounds the daily reminder window
type Reminders struct {
	StartHour int `koanf:"start_hour" validate:"gte=0,lte=23"`
	EndHour   int `koanf:"end_hour" validate:"gte=0,lte=23"`
}

// Default returns the baseline configuration
func Default() Config {
	return Config{
		Server: Server{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: Database{
			Driver: "sqlite3",
			DSN:    "data/geniuspath.db",
		},
		Reminders: Reminders{
			StartHour: 8,
			EndHour:   22,
		},
	}
}

// Flags returns the command-line flag set understood by Load
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("geniuspath", pflag.ExitOnError)
	defaults := Default()
	fs.String("config", "", "path to a YAML config file")
	fs.String("database.driver", defaults.Database.Driver, "database driver (postgres or sqlite3)")
	fs.String("database.dsn", defaults.Database.DSN, "database connection string")
	fs.Int("server.port", defaults.Server.Port, "HTTP listen port")
	fs.String("content.import_path", "", "xlsx/csv curriculum file to merge in")
	return fs
}

// Load builds the configuration from defaults, an optional YAML file,
// command-line flags and environment variable overrides, in that order
// of precedence (later wins)
func Load(flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path, _ := flags.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to read flags: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides maps the usual deployment environment variables onto
// the config; a .env file loaded by godotenv lands here too
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}
