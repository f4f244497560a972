package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"todo_webapp/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string
	AppPort     string
	BaseURL     string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTTTL    time.Duration

	LogLevel string
	LogJSON  bool

	AllowedOrigins []string
	AdminEmails    []string

	// Due-task sweep
	SweepInterval time.Duration

	// OAuth2 providers, disabled when the client id is empty
	GitHubClientID     string
	GitHubClientSecret string
	GoogleClientID     string
	GoogleClientSecret string

	// Email copies of notifications, disabled when the key is empty
	SendGridAPIKey string
	MailFrom       string

	AuthRateLimit   int
	AuthRateWindow  time.Duration
	WriteRateLimit  int
	WriteRateWindow time.Duration
}

// Load reads the configuration from the environment (and .env when present)
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := getString("APP_PORT", "8080")

	return &Config{
		AppEnv:      getString("APP_ENV", "development"),
		AppPort:     port,
		BaseURL:     strings.TrimRight(getString("BASE_URL", "http://localhost:"+port), "/"),
		DatabaseURL: dbURL,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		JWTSecret: jwtSecret,
		JWTTTL:    time.Duration(getInt("JWT_TTL_HOURS", 24)) * time.Hour,

		LogLevel: getString("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
		AdminEmails:    splitList(strings.ToLower(os.Getenv("ADMIN_EMAILS"))),

		SweepInterval: getDuration("SWEEP_INTERVAL", 60*time.Second),

		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getString("MAIL_FROM", "noreply@todo.local"),

		AuthRateLimit:   getInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow:  time.Duration(getInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,
		WriteRateLimit:  getInt("WRITE_RATE_LIMIT", 120),
		WriteRateWindow: time.Duration(getInt("WRITE_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}
}

// IsProduction reports whether secure cookies etc. should be enforced
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		logger.Warn("invalid integer in env, using default", "key", key, "value", v)
	}
	return def
}

// getDuration accepts Go durations ("90s", "2m") or a plain number of seconds
func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	logger.Warn("invalid duration in env, using default", "key", key, "value", v)
	return def
}

// SocketOrigins lists the browser origins allowed to open the notification
// socket. Without ALLOWED_ORIGINS only the origin of BASE_URL is accepted.
func (c *Config) SocketOrigins() []string {
	if len(c.AllowedOrigins) > 0 {
		return c.AllowedOrigins
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}
	return []string{u.Scheme + "://" + u.Host}
}

// splitList parses a comma separated env value
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
