package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"SRSentinel/internal/analysis"
	"SRSentinel/internal/watchlist"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		Enabled  bool   `yaml:"enabled"`
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Email struct {
		Enabled  bool     `yaml:"enabled"`
		SMTPHost string   `yaml:"smtp_host"`
		SMTPPort int      `yaml:"smtp_port"`
		Username string   `yaml:"username"`
		Password string   `yaml:"password"`
		From     string   `yaml:"from"`
		To       []string `yaml:"to"`
	} `yaml:"email"`
	DataSource struct {
		Provider string `yaml:"provider"` // yahoo, rest or csv
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		CSVDir   string `yaml:"csv_dir"`
		Period   string `yaml:"period"`
		Interval string `yaml:"interval"`
	} `yaml:"data_source"`
	Analysis analysis.Config `yaml:"analysis"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Watchlist struct {
		File     string   `yaml:"file"`
		Defaults []string `yaml:"defaults"`
	} `yaml:"watchlist"`
	Alerts struct {
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
	} `yaml:"alerts"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads an optional .env file, the YAML config at path, then applies
// environment variable overrides and defaults. TELEGRAM_BOT_TOKEN enables
// Telegram and ALERT_EMAIL_TO enables e-mail.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("read .env")
	}

	cfg := &Config{Analysis: analysis.DefaultConfig()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
		cfg.Telegram.Enabled = true
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.Email.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.Password = v
	}
	if v := os.Getenv("ALERT_EMAIL_TO"); v != "" {
		cfg.Email.To = splitList(v)
		cfg.Email.Enabled = true
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("USE_VOLUME_FILTER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Analysis.UseVolumeFilter = b
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Alerts.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Alerts.RedisPassword = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Period == "" {
		cfg.DataSource.Period = "6mo"
	}
	if cfg.DataSource.Interval == "" {
		cfg.DataSource.Interval = "1d"
	}
	if cfg.DataSource.CSVDir == "" {
		cfg.DataSource.CSVDir = "data/csv"
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "*/30 * * * * *"
	}
	if cfg.Watchlist.File == "" {
		cfg.Watchlist.File = "data/watchlist.json"
	}
	if len(cfg.Watchlist.Defaults) == 0 {
		cfg.Watchlist.Defaults = append([]string(nil), watchlist.DefaultSymbols...)
	}
	if cfg.Email.SMTPHost == "" {
		cfg.Email.SMTPHost = "smtp.office365.com"
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/srsentinel.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if _, err := strconv.ParseInt(c.Telegram.ChatID, 10, 64); err != nil {
			return fmt.Errorf("telegram.chat_id must be numeric: %q", c.Telegram.ChatID)
		}
	}
	if c.Email.Enabled {
		if c.Email.Username == "" || c.Email.Password == "" {
			return fmt.Errorf("email.username and email.password are required when email is enabled")
		}
		if len(c.Email.To) == 0 {
			return fmt.Errorf("email.to is required when email is enabled")
		}
	}
	switch c.DataSource.Provider {
	case "yahoo", "csv":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
