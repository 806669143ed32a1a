package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	BaseURL            string
	GoogleClientID     string
	GoogleClientSecret string
	SessionSecret      string
	DatabaseURL        string
	SQLitePath         string
	AIProvider         string
	AIKey              string
	AIModel            string
	Env                string

	MaxFetchEmails       int64
	MailFetchConcurrency int
	SummaryCharLimit     int
	OracleTimeout        time.Duration
	MailTimeout          time.Duration
	RefreshInterval      time.Duration
	MailboxWriteback     bool
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:               GetEnv("PORT", "8080"),
		BaseURL:            GetEnv("BASE_URL", "http://localhost:8080"),
		GoogleClientID:     GetEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: GetEnv("GOOGLE_CLIENT_SECRET", ""),
		SessionSecret:      GetEnv("SESSION_SECRET", ""),
		DatabaseURL:        GetEnv("DATABASE_URL", ""),
		SQLitePath:         GetEnv("SQLITE_PATH", ""),
		AIProvider:         strings.ToLower(GetEnv("AI_PROVIDER", "openai")),
		AIKey:              GetEnv("AI_API_KEY", ""),
		AIModel:            GetEnv("AI_MODEL", ""),
		Env:                GetEnv("ENV", "development"),
	}

	var err error
	if cfg.MaxFetchEmails, err = getInt64("MAX_FETCH_EMAILS", 50); err != nil {
		return nil, err
	}
	concurrency, err := getInt64("MAIL_FETCH_CONCURRENCY", 10)
	if err != nil {
		return nil, err
	}
	cfg.MailFetchConcurrency = int(concurrency)

	charLimit, err := getInt64("SUMMARY_CHAR_LIMIT", 6000)
	if err != nil {
		return nil, err
	}
	cfg.SummaryCharLimit = int(charLimit)

	if cfg.OracleTimeout, err = getSeconds("ORACLE_TIMEOUT_SECONDS", 60); err != nil {
		return nil, err
	}
	if cfg.MailTimeout, err = getSeconds("MAIL_TIMEOUT_SECONDS", 30); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getSeconds("REFRESH_INTERVAL_SECONDS", 0); err != nil {
		return nil, err
	}
	cfg.MailboxWriteback = GetBool("MAILBOX_WRITEBACK", false)

	return cfg, nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetBool treats 1/true/yes/on as true, case-insensitively.
func GetBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) (int64, error) {
	raw := GetEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return v, nil
}

func getSeconds(key string, defaultSeconds int64) (time.Duration, error) {
	v, err := getInt64(key, defaultSeconds)
	if err != nil {
		return 0, err
	}
	return time.Duration(v) * time.Second, nil
}

func (c *Config) Validate() error {
	if c.GoogleClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}
	if c.GoogleClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_SECRET is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.AIKey == "" {
		return fmt.Errorf("AI_API_KEY is required")
	}
	switch c.AIProvider {
	case "openai", "deepseek", "gemini":
	default:
		return fmt.Errorf("AI_PROVIDER %q is not supported", c.AIProvider)
	}
	if c.DatabaseURL != "" && c.SQLitePath != "" {
		return fmt.Errorf("DATABASE_URL and SQLITE_PATH are mutually exclusive")
	}
	if c.MaxFetchEmails == 0 {
		return fmt.Errorf("MAX_FETCH_EMAILS must be positive")
	}
	if c.MailFetchConcurrency == 0 {
		return fmt.Errorf("MAIL_FETCH_CONCURRENCY must be positive")
	}
	if c.SummaryCharLimit == 0 {
		return fmt.Errorf("SUMMARY_CHAR_LIMIT must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
