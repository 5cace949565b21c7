package app

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"flighttracker-backend/internal/alert"
	"flighttracker-backend/internal/components/configutil"
	"flighttracker-backend/internal/components/sqliteutil"
	"flighttracker-backend/internal/tracker"
)

const (
	SourceChrome = "chrome"
	SourceHttp   = "http"
)

type MailConfig struct {
	alert.SmtpConfig
	Currency string `json:"currency"`
}

type SourceConfig struct {
	Kind           string   `json:"kind"`
	BaseUrl        string   `json:"base_url"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	Selectors      []string `json:"selectors"`
	DebugDir       string   `json:"debug_dir"`
	UserAgent      string   `json:"user_agent"`
	ChromePath     string   `json:"chrome_path"`
}

func (c SourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type ScheduleConfig struct {
	Cron string `json:"cron"`
	// PauseSeconds is nil when unset, so an explicit 0 survives merging
	// and turns the pause off.
	PauseSeconds *int `json:"pause_seconds"`
}

func (c ScheduleConfig) Pause() time.Duration {
	if c.PauseSeconds == nil {
		return tracker.DefaultPause
	}
	return time.Duration(*c.PauseSeconds) * time.Second
}

type HttpConfig struct {
	Port int `json:"port"`
}

type Config struct {
	Database sqliteutil.Config `json:"database"`
	// Timezone is an IANA name, empty means UTC.
	Timezone string         `json:"timezone"`
	Smtp     MailConfig     `json:"smtp"`
	Source   SourceConfig   `json:"source"`
	Schedule ScheduleConfig `json:"schedule"`
	Http     HttpConfig     `json:"http"`
}

func DefaultConfig() Config {
	return Config{
		Database: sqliteutil.Config{File: "flights.db"},
		Smtp: MailConfig{
			SmtpConfig: alert.SmtpConfig{
				Server: "smtp.gmail.com",
				Port:   587,
			},
			Currency: alert.DefaultCurrency,
		},
		Source: SourceConfig{
			Kind:           SourceChrome,
			TimeoutSeconds: 20,
		},
		Schedule: ScheduleConfig{
			Cron: "@every 6h",
		},
		Http: HttpConfig{Port: 8080},
	}
}

// ApplyEnv overrides the mail settings with EMAIL_ADDRESS, EMAIL_PASSWORD,
// SMTP_SERVER and SMTP_PORT when they are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("EMAIL_ADDRESS"); v != "" {
		c.Smtp.EmailAddress = v
	}
	if v := os.Getenv("EMAIL_PASSWORD"); v != "" {
		c.Smtp.Password = v
	}
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		c.Smtp.Server = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.Smtp.Port = port
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Source.Kind {
	case SourceChrome, SourceHttp:
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if c.Database.File == "" && c.Database.Url == "" {
		return fmt.Errorf("database: either file or url is required")
	}
	if c.Schedule.PauseSeconds != nil && *c.Schedule.PauseSeconds < 0 {
		return fmt.Errorf("schedule: pause_seconds cannot be negative")
	}
	return nil
}

// LoadConfig reads `path` (and its .local override) over the defaults, then
// the .env files, then the environment. A missing config file is fine.
func LoadConfig(path string, dotenv ...string) (Config, error) {
	config := DefaultConfig()

	fromFile, err := configutil.ReadConfig[Config](path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	if os.IsNotExist(err) {
		slog.Debug("no config file, using defaults", "path", path)
	} else {
		config, err = merge(config, fromFile)
		if err != nil {
			return Config{}, err
		}
	}

	err = configutil.LoadDotenv(dotenv...)
	if err != nil {
		return Config{}, err
	}
	err = config.ApplyEnv()
	if err != nil {
		return Config{}, err
	}
	return config, config.Validate()
}
