package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSecretKey is only acceptable outside prod.
const DefaultSecretKey = "you-will-never-guess"

type Config struct {
	Port string
	// BaseURL is the externally visible origin used to build links in emails.
	BaseURL string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int
	// AutoMigrate applies pending migrations on server start.
	AutoMigrate bool

	// SecretKey signs session cookies, reset tokens and API bearer tokens.
	SecretKey string

	// Env is "dev" (default) or "prod". When "prod", SECRET_KEY must be set and not the default.
	Env string

	SessionTTL    time.Duration
	RememberMeTTL time.Duration
	// ResetTokenExpiry bounds the lifetime of password reset links (default 600s).
	ResetTokenExpiry time.Duration

	PostsPerPage      int
	MinPasswordLength int

	// MailProvider is "log" (default), "sendgrid" or "resend".
	MailProvider   string
	SendGridAPIKey string
	ResendAPIKey   string
	MailSender     string
	MailSenderName string
	MailWorkers    int
	MailQueueSize  int
	// MailRetryCron is the cron expression for re-sending failed outbox messages.
	MailRetryCron   string
	MailMaxAttempts int

	// RedisURL enables the single-use reset token ledger when set.
	RedisURL string
	// NATSURL enables domain event publishing when set.
	NATSURL string

	DeepLAPIKey string
	DeepLAPIURL string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// CORSAllowedOrigins is a list of origins allowed to call /api/v1 from a browser.
	CORSAllowedOrigins []string
}

// Load reads configuration from the environment, after an optional .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:    getEnv("PORT", "8080"),
		BaseURL: strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "microblog"),
		DBUser: getEnv("DB_USER", "microblog"),
		DBPass: getEnv("DB_PASS", "microblog"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		AutoMigrate:    getEnvBool("AUTO_MIGRATE", false),

		SecretKey: getEnv("SECRET_KEY", DefaultSecretKey),
		Env:       getEnv("ENV", "dev"),

		SessionTTL:       time.Duration(getEnvInt("SESSION_HOURS", 24)) * time.Hour,
		RememberMeTTL:    time.Duration(getEnvInt("REMEMBER_ME_DAYS", 30)) * 24 * time.Hour,
		ResetTokenExpiry: getEnvDuration("RESET_TOKEN_EXPIRY", 600*time.Second),

		PostsPerPage:      getEnvInt("POSTS_PER_PAGE", 10),
		MinPasswordLength: getEnvInt("MIN_PASSWORD_LENGTH", 8),

		MailProvider:    strings.ToLower(getEnv("MAIL_PROVIDER", "log")),
		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		ResendAPIKey:    getEnv("RESEND_API_KEY", ""),
		MailSender:      getEnv("MAIL_SENDER", "no-reply@microblog.local"),
		MailSenderName:  getEnv("MAIL_SENDER_NAME", "Microblog"),
		MailWorkers:     getEnvInt("MAIL_WORKERS", 2),
		MailQueueSize:   getEnvInt("MAIL_QUEUE_SIZE", 100),
		MailRetryCron:   getEnv("MAIL_RETRY_CRON", "*/5 * * * *"),
		MailMaxAttempts: getEnvInt("MAIL_MAX_ATTEMPTS", 5),

		RedisURL: getEnv("REDIS_URL", ""),
		NATSURL:  getEnv("NATS_URL", ""),

		DeepLAPIKey: getEnv("DEEPL_API_KEY", ""),
		DeepLAPIURL: getEnv("DEEPL_API_URL", "https://api-free.deepl.com/v2/translate"),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// Validate rejects configurations that must never reach production.
func (c Config) Validate() error {
	if c.Env == "prod" && (c.SecretKey == "" || c.SecretKey == DefaultSecretKey) {
		return errors.New("SECRET_KEY must be set to a non-default value when ENV=prod")
	}
	switch c.MailProvider {
	case "log", "sendgrid", "resend":
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider)
	}
	return nil
}

// DSN returns the lib/pq keyword/value connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPass,
	)
}

// DatabaseURL returns the postgres:// URL form used by migrate and pgx.
func (c Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPass),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("10m") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
