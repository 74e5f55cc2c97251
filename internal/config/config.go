package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr        string
	Env         string
	AppURL      string
	DatabaseURL string
	JWTSecret   string
	CORSOrigins string
	UploadDir   string

	Kkiapay       KkiapayConfig
	WebhookSecret string

	SMTP         SMTPConfig
	ContactEmail string

	ResetTokenTTL      time.Duration
	RateLimitPerMinute int
}

// KkiapayConfig holds the key triple used by the transaction status API.
type KkiapayConfig struct {
	PublicKey  string
	PrivateKey string
	SecretKey  string
	Sandbox    bool
	BaseURL    string
	Timeout    time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// Enabled reports whether enough settings exist to open an SMTP session.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Port != ""
}

func Load() (*Config, error) {
	cfg := &Config{
		Addr:        getEnv("APP_ADDR", ":8080"),
		Env:         getEnv("APP_ENV", "development"),
		AppURL:      os.Getenv("APP_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
		Kkiapay: KkiapayConfig{
			PublicKey:  getEnv("KKIAPAY_PUBLIC_API_KEY", os.Getenv("NEXT_PUBLIC_KKIAPAY_PUBLIC_API_KEY")),
			PrivateKey: os.Getenv("KKIAPAY_PRIVATE_API_KEY"),
			SecretKey:  os.Getenv("KKIAPAY_SECRET_API_KEY"),
			Sandbox:    os.Getenv("KKIAPAY_ENV") == "sandbox",
			BaseURL:    os.Getenv("KKIAPAY_BASE_URL"),
			Timeout:    getDuration("KKIAPAY_TIMEOUT", 15*time.Second),
		},
		WebhookSecret: os.Getenv("KAKAPAY_SECRET"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     getEnv("SMTP_FROM", os.Getenv("SMTP_USER")),
		},
		ContactEmail:       os.Getenv("CONTACT_EMAIL"),
		ResetTokenTTL:      getDuration("RESET_TOKEN_TTL", 15*time.Minute),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 100),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
