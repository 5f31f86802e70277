package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Signing secrets. TicketSecret is required; TicketSecretPrevious is
	// set only during a rotation window so tokens minted under the old
	// secret keep verifying. Neither value is ever logged.
	TicketSecret         string
	TicketSecretPrevious string

	// Verification policy
	TokenMaxAge  time.Duration // 0 disables the freshness check
	StoreTimeout time.Duration

	// Scan session
	ResultDisplayTTL time.Duration

	// Manual lookup throttle (attempts per staff member per minute)
	LookupRateLimit int

	// Redis configuration
	RedisURL string

	// PubNub configuration (gate activity dashboards)
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Signing
		TicketSecret:         getEnv("TICKET_SECRET", ""),
		TicketSecretPrevious: getEnv("TICKET_SECRET_PREVIOUS", ""),

		// Policy
		TokenMaxAge:  getEnvAsDuration("TOKEN_MAX_AGE", "0s"),
		StoreTimeout: getEnvAsDuration("STORE_TIMEOUT", "3s"),

		// Session
		ResultDisplayTTL: getEnvAsDuration("RESULT_DISPLAY_TTL", "4s"),

		// Lookup
		LookupRateLimit: getEnvAsInt("LOOKUP_RATE_LIMIT", 30),

		// Redis
		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
