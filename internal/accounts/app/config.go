package app

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/scrimflow/accounts/pkg/httpx"
)

type Config struct {
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	// Peers allowed to set client IP headers (default: loopback and private ranges)
	TrustedProxies []netip.Prefix

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseURL    string // Required for postgres
	DatabaseFile   string // SQLite database path (default: ./accounts.db)
	PepperFile     string // Path to the password pepper (default: ./pepper)

	RedisURL     string        // Optional: shared issuance cooldown; in-memory when empty
	CodeCooldown time.Duration // Minimum gap between codes of one purpose (default: 60s, 0 disables)

	MailDriver       string // log or smtp (default: log)
	SMTPHost         string
	SMTPPort         int // default: 587
	SMTPUser         string
	SMTPPassword     string
	MailFrom         string // Sender for verification mail
	SecurityMailFrom string // Sender for login alerts (default: MailFrom)
	SecurityURL      string // Link shown in login alerts

	GeoLookupURL     string        // ip-api compatible endpoint (default: http://ip-api.com)
	GeoLookupTimeout time.Duration // default: 1.5s

	NotifyWorkers   int // default: 2
	NotifyQueueSize int // default: 256
}

// LoadConfig reads the configuration from the environment. Values in
// .env.local take precedence over .env, and variables already set in the
// process environment win over both.
func LoadConfig() (Config, error) {
	if err := loadDotEnv(".env.local", ".env"); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		DatabaseDriver: getEnvOrDefault("DATABASE_DRIVER", "sqlite"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseFile:   getEnvOrDefault("ACCOUNTS_DATABASE_FILE", "accounts.db"),
		PepperFile:     getEnvOrDefault("ACCOUNTS_PEPPER_FILE", "pepper"),

		RedisURL:     os.Getenv("REDIS_URL"),
		CodeCooldown: getEnvDurationOrDefault("CODE_COOLDOWN", 60*time.Second),

		MailDriver:       getEnvOrDefault("MAIL_DRIVER", "log"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		MailFrom:         getEnvOrDefault("MAIL_FROM", "Scrimflow <no-reply@scrimflow.gg>"),
		SecurityMailFrom: os.Getenv("SECURITY_MAIL_FROM"),
		SecurityURL:      getEnvOrDefault("SECURITY_URL", "https://scrimflow.gg/settings/security"),

		GeoLookupURL:     getEnvOrDefault("GEO_LOOKUP_URL", "http://ip-api.com"),
		GeoLookupTimeout: getEnvDurationOrDefault("GEO_LOOKUP_TIMEOUT", 1500*time.Millisecond),

		NotifyWorkers:   getEnvIntOrDefault("NOTIFY_WORKERS", 2),
		NotifyQueueSize: getEnvIntOrDefault("NOTIFY_QUEUE_SIZE", 256),
	}

	cfg.TrustedProxies = httpx.DefaultTrustedProxies
	if list := os.Getenv("TRUSTED_PROXIES"); list != "" {
		proxies, err := httpx.ParseTrustedProxies(list)
		if err != nil {
			return Config{}, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		cfg.TrustedProxies = proxies
	}

	if cfg.SecurityMailFrom == "" {
		cfg.SecurityMailFrom = cfg.MailFrom
	}

	return cfg, nil
}

// loadDotEnv loads each file in order. godotenv never overwrites a variable
// that is already set, so earlier files take precedence over later ones.
// Missing files are skipped.
func loadDotEnv(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
