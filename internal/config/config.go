package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// InsecureDefaultSecret is the fallback signing secret. It is deliberately
// kept as a documented, warned-about default rather than a startup error;
// operators must override TOKEN_SECRET in any non-development deployment.
const InsecureDefaultSecret = "change-this-in-production"

type Config struct {
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	RequestTimeout     time.Duration

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	TokenSecret      string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	PBKDF2Iterations int

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int

	SeedDemoUsers bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:         int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:         int32(getInt("DB_MIN_CONNS", 2)),
		TokenSecret:        getEnv("TOKEN_SECRET", InsecureDefaultSecret),
		AccessTTL:          getDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTTL:         getDuration("REFRESH_TOKEN_TTL", 168*time.Hour),
		PBKDF2Iterations:   getInt("PBKDF2_ITERATIONS", 120_000),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:       getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM:   getInt("AUTH_RATE_LIMIT_RPM", 10),
		SeedDemoUsers:      getBool("AUTH_SEED_DEMO_USERS", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if strings.TrimSpace(c.TokenSecret) == "" {
		return fmt.Errorf("TOKEN_SECRET cannot be blank")
	}

	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	if c.PBKDF2Iterations <= 0 {
		return fmt.Errorf("PBKDF2_ITERATIONS must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// UsingDefaultSecret reports whether the insecure fallback secret is in use.
func (c *Config) UsingDefaultSecret() bool {
	return c.TokenSecret == InsecureDefaultSecret
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
