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
	Port      string
	DbHost    string
	DbPort    string
	DbUser    string
	DbPass    string
	DbName    string
	DbSSLMode string

	RedisURL string

	// Две независимые ключевые области: сессии и ссылки сброса пароля.
	SessionSecret       string
	AccessTokenTTL      time.Duration
	ResetTokenSecret    string
	ResetTokenTTL       time.Duration
	ResetTokenSingleUse bool
	BcryptCost          int

	Log      string
	LogLevel string
	Env      string // dev|prod

	SiteURL   string
	UploadDir string

	MailDriver   string // smtp|ses|log
	MailFrom     string
	MailWorkers  int
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	AWSRegion    string
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует — чтобы не создавать зависимость от logger.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")
	return FromLookup(os.Getenv)
}

// FromLookup собирает конфиг из произвольного источника переменных (в тестах — map).
func FromLookup(getenv func(string) string) (*Config, error) {
	def := func(key, d string) string {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return d
		}
		return v
	}

	accessTTL, err := time.ParseDuration(def("ACCESS_TOKEN_EXPIRY", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRY: %w", err)
	}
	resetTTL, err := time.ParseDuration(def("RESET_TOKEN_TTL", "1800s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESET_TOKEN_TTL: %w", err)
	}
	singleUse, err := strconv.ParseBool(def("RESET_TOKEN_SINGLE_USE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESET_TOKEN_SINGLE_USE: %w", err)
	}
	cost, err := strconv.Atoi(def("BCRYPT_COST", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	workers, err := strconv.Atoi(def("MAIL_WORKERS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAIL_WORKERS: %w", err)
	}

	cfg := &Config{
		Port:      def("PORT", "8080"),
		DbHost:    getenv("DB_HOST"),
		DbPort:    def("DB_PORT", "5432"),
		DbUser:    getenv("DB_USER"),
		DbPass:    getenv("DB_PASSWORD"),
		DbName:    getenv("DB_NAME"),
		DbSSLMode: def("DB_SSLMODE", "disable"),

		RedisURL: getenv("REDIS_URL"),

		SessionSecret:       getenv("SESSION_SECRET"),
		AccessTokenTTL:      accessTTL,
		ResetTokenSecret:    getenv("RESET_TOKEN_SECRET"),
		ResetTokenTTL:       resetTTL,
		ResetTokenSingleUse: singleUse,
		BcryptCost:          cost,

		Log:      getenv("LOG"),
		LogLevel: strings.ToLower(def("LOGLEVEL", "info")),
		Env:      strings.ToLower(def("ENV", "prod")),

		SiteURL:   strings.TrimRight(def("SITE_URL", "http://localhost:8080"), "/"),
		UploadDir: def("UPLOAD_DIR", "static/profile_pics"),

		MailDriver:   strings.ToLower(def("MAIL_DRIVER", "log")),
		MailFrom:     def("MAIL_FROM", "noreply@microblog.local"),
		MailWorkers:  workers,
		SMTPHost:     getenv("SMTP_HOST"),
		SMTPPort:     def("SMTP_PORT", "587"),
		SMTPUser:     getenv("SMTP_USER"),
		SMTPPassword: getenv("SMTP_PASSWORD"),
		AWSRegion:    def("AWS_REGION", "eu-west-1"),
	}

	return cfg, nil
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	// Критичные: БД
	if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
		return nil, fmt.Errorf("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
	}

	// Критичные: секреты
	if strings.TrimSpace(c.SessionSecret) == "" || strings.TrimSpace(c.ResetTokenSecret) == "" {
		return nil, fmt.Errorf("SESSION_SECRET and RESET_TOKEN_SECRET must be set")
	}
	if c.SessionSecret == c.ResetTokenSecret {
		return nil, fmt.Errorf("SESSION_SECRET and RESET_TOKEN_SECRET must differ")
	}

	if c.ResetTokenTTL <= 0 || c.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}

	switch c.MailDriver {
	case "smtp":
		if c.SMTPHost == "" || c.SMTPUser == "" {
			warnings = append(warnings, "SMTP is not fully configured")
		}
	case "log":
		if c.Env != "dev" {
			warnings = append(warnings, "MAIL_DRIVER=log outside ENV=dev: emails are not delivered, bodies are not logged")
		}
	case "ses":
	default:
		return nil, fmt.Errorf("unknown MAIL_DRIVER %q", c.MailDriver)
	}

	if c.RedisURL == "" {
		warnings = append(warnings, "REDIS_URL is empty, using in-memory store (single instance only)")
	}

	if c.MailWorkers < 1 {
		warnings = append(warnings, "MAIL_WORKERS < 1, using 1")
		c.MailWorkers = 1
	}

	return warnings, nil
}

// GetDSN — полная DSN (с паролем)
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe — DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}
