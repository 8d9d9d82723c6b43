package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Referral edge policies for user deletion.
const (
	PolicyCascade  = "cascade"  // remove the deleted user from other users' referral maps
	PolicyPreserve = "preserve" // keep referral history for audit
)

// DefaultJWTSecret is only good enough for local development.
const DefaultJWTSecret = "default-access-secret"

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	TrustedProxies []string
	AllowedOrigins []string

	// memory | postgres
	StoreBackend string
	SeedFile     string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret       string
	JWTAccessExpiry time.Duration
	SkipAuth        bool // disables JWT checks for local development

	IdentityAPIURL string
	IdentityAPIKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string

	TelegramBotToken    string
	TelegramAdminChatID int64

	KafkaBrokers []string
	KafkaTopic   string

	OTLPEndpoint string

	ReferralPolicy        string
	DefaultCommissionRate float64
	LeaderboardSize       int
	Timezone              string
	MonthlyGoalAmount     float64
	MonthlyPrize          string

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		TrustedProxies: getEnvAsSlice("TRUSTED_PROXIES", nil),
		AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		StoreBackend: getEnv("STORE_BACKEND", "memory"),
		SeedFile:     getEnv("SEED_FILE", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "courseplex"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:       getEnv("JWT_ACCESS_SECRET", DefaultJWTSecret),
		JWTAccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		SkipAuth:        getEnvAsBool("SKIP_AUTH", false),

		IdentityAPIURL: getEnv("IDENTITY_API_URL", ""),
		IdentityAPIKey: getEnv("IDENTITY_API_KEY", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		EmailFrom:    getEnv("EMAIL_FROM", ""),

		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChatID: getEnvAsInt64("TELEGRAM_ADMIN_CHAT_ID", 0),

		KafkaBrokers: getEnvAsSlice("KAFKA_BROKERS", nil),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "courseplex.events"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		ReferralPolicy:        getEnv("REFERRAL_EDGE_POLICY", PolicyCascade),
		DefaultCommissionRate: getEnvAsFloat("DEFAULT_COMMISSION_RATE", 0.58),
		LeaderboardSize:       getEnvAsInt("LEADERBOARD_SIZE", 10),
		Timezone:              getEnv("TIMEZONE", "Local"),
		MonthlyGoalAmount:     getEnvAsFloat("MONTHLY_GOAL_AMOUNT", 0),
		MonthlyPrize:          getEnv("MONTHLY_PRIZE", ""),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 10),
	}
	return cfg
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.ReferralPolicy {
	case PolicyCascade, PolicyPreserve:
	default:
		return fmt.Errorf("REFERRAL_EDGE_POLICY must be %q or %q, got %q", PolicyCascade, PolicyPreserve, c.ReferralPolicy)
	}
	switch c.StoreBackend {
	case "memory", "postgres":
	default:
		return fmt.Errorf("STORE_BACKEND must be memory or postgres, got %q", c.StoreBackend)
	}
	if c.DefaultCommissionRate <= 0 || c.DefaultCommissionRate > 1 {
		return fmt.Errorf("DEFAULT_COMMISSION_RATE must be in (0, 1], got %v", c.DefaultCommissionRate)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.IsRelease() {
		if c.SkipAuth {
			return errors.New("SKIP_AUTH cannot be enabled in release mode")
		}
		if c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret {
			return errors.New("JWT_ACCESS_SECRET must be set to a private value in release mode")
		}
	}
	return nil
}

// IsRelease reports whether GIN_MODE is release.
func (c *Config) IsRelease() bool {
	return c.Env == "release"
}

// Location resolves Timezone; "Local" and "" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	return loc, nil
}

// DSN is the pgx connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strVal := getEnv(key, "")
	if val, err := strconv.ParseBool(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strVal := getEnv(key, "")
	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	strVal := getEnv(key, "")
	if val, err := strconv.ParseInt(strVal, 10, 64); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	strVal := getEnv(key, "")
	if val, err := strconv.ParseFloat(strVal, 64); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strVal := getEnv(key, "")
	if val, err := time.ParseDuration(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	val := getEnv(key, "")
	if val == "" {
		return defaultValue
	}
	parts := strings.Split(val, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
