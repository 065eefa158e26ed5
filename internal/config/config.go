package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port       string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	// Upstream services
	UserServiceURL string
	MailServiceURL string
	// HTTP client timeouts
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	// Session settings
	SessionSecret string
	SessionTTL    time.Duration
	SessionCookie string
	CookieSecure  bool
}

func Load() *Config {
	return &Config{
		Port:       getenv("PORT", "8080"),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "surat_tugas_web"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		UserServiceURL: getenv("USER_SERVICE_URL", "http://localhost:3001"),
		MailServiceURL: getenv("MAIL_SERVICE_URL", "http://localhost:3002"),

		RequestTimeout: getdur("REQUEST_TIMEOUT_SECONDS", 15),
		UploadTimeout:  getdur("UPLOAD_TIMEOUT_SECONDS", 30),

		SessionSecret: getenv("SESSION_SECRET", "supersecret_change_me"),
		SessionTTL:    time.Duration(getint("SESSION_TTL_HOURS", 24*7)) * time.Hour,
		SessionCookie: getenv("SESSION_COOKIE", "surat_tugas_session"),
		CookieSecure:  getenv("COOKIE_SECURE", "false") == "true",
	}
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getdur(key string, fallbackSeconds int) time.Duration {
	return time.Duration(getint(key, fallbackSeconds)) * time.Second
}
