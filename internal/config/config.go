package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	DBConnString    string
	DBMaxConns      int32
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Emulator bootstrap: the merchant and API key created at startup.
	MerchantKey    string
	MerchantName   string
	EmulatorAPIKey string

	// Client settings shared by the command-line tools.
	MerchantEnv     string
	MerchantToken   string
	MerchantBaseURL string
	MerchantTimeout time.Duration
}

// FromEnv builds Config with defaults, overridden by environment variables.
// An empty DB_DSN selects in-memory storage.
func FromEnv() Config {
	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		DBConnString:    os.Getenv("DB_DSN"),
		DBMaxConns:      int32(envInt("DB_MAX_CONNS", 10)),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		CORSOrigins:     envList("CORS_ORIGINS"),
		MerchantKey:     envOrDefault("EMULATOR_MERCHANT_KEY", "demo"),
		MerchantName:    envOrDefault("EMULATOR_MERCHANT_NAME", "Demo Merchant"),
		EmulatorAPIKey:  envOrDefault("EMULATOR_API_KEY", "sk_sandbox_demo"),
		MerchantEnv:     envOrDefault("MERCHANT_ENV", "sandbox"),
		MerchantToken:   os.Getenv("MERCHANT_TOKEN"),
		MerchantBaseURL: os.Getenv("MERCHANT_BASE_URL"),
		MerchantTimeout: envDuration("MERCHANT_TIMEOUT_SECONDS", 10*time.Second),
	}
}

// UsesMemory reports whether the emulator should run without Postgres.
func (c Config) UsesMemory() bool {
	return c.DBConnString == ""
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
