package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "TextChain"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultDispatchTimeout = 5 * time.Second
	defaultDedupeTTL       = 24 * time.Hour
	defaultChainAPIURL     = "http://localhost:3000"
	dispatchSecondsEnvVar  = "DISPATCH_TIMEOUT_SECONDS"
	dispatchDurationEnvVar = "DISPATCH_TIMEOUT"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	dedupeTTLEnvVar        = "DEDUPE_TTL"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	// DatabaseURL and RedisURL are optional: without a database the gateway
	// still answers every command with a degraded "offline" reply, and
	// without Redis inbound dedupe and rate limiting are skipped.
	DatabaseURL string
	RedisURL    string

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	ChainAPIURL   string
	CashoutAPIURL string

	ShutdownPeriod  time.Duration
	DispatchTimeout time.Duration
	DedupeTTL       time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:           getEnv("APP_NAME", defaultAppName),
		AppEnv:            getEnv("APP_ENV", defaultAppEnv),
		Port:              getEnv("PORT", defaultPort),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		ChainAPIURL:       getEnv("CHAIN_API_URL", defaultChainAPIURL),
		CashoutAPIURL:     os.Getenv("CASHOUT_API_URL"),
		ShutdownPeriod:    defaultShutdownDelay,
		DispatchTimeout:   defaultDispatchTimeout,
		DedupeTTL:         defaultDedupeTTL,
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(dispatchSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", dispatchSecondsEnvVar, err)
		}
		cfg.DispatchTimeout = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(dispatchDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", dispatchDurationEnvVar, err)
		}
		cfg.DispatchTimeout = d
	}

	if v := os.Getenv(dedupeTTLEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", dedupeTTLEnvVar, err)
		}
		cfg.DedupeTTL = d
	}

	return cfg, nil
}

// TwilioConfigured reports whether outbound SMS credentials are present.
func (c Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != ""
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
