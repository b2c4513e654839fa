package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything cmd/server needs to wire the service. Values come
// from the environment so main stays lean and deploys stay declarative.
type Config struct {
	Addr          string
	JWTSigningKey string

	// AdminAddress is the single identity allowed to move the metadata base
	// locator. JWT subjects are matched against it.
	AdminAddress string

	// CharityPayout receives rail transfers for every accepted donation.
	CharityPayout string

	// BaseLocator prefixes every token's metadata locator. Mutable at runtime
	// through the admin endpoint.
	BaseLocator string

	// DatabaseURL selects the Postgres stores when set; empty keeps the
	// in-memory stores.
	DatabaseURL string

	Redis   RedisConfig
	Kafka   KafkaConfig
	Charity CharityConfig
}

// RedisConfig controls the optional read cache in front of the registry's
// per-donor state.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig controls event publishing. Empty brokers keep the in-memory sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// CharityConfig is the static descriptor for the single charity this instance
// serves. Set once at startup; changing it means redeploying.
type CharityConfig struct {
	Name           string
	Link           string
	Foundation     string
	Source         string
	RegisteredAt   string
	SuggestedPrice string
	ImageLocator   string
}

// FromEnv builds a Config from environment variables with dev defaults.
func FromEnv() Config {
	return Config{
		Addr:          envOr("GIVECHAIN_ADDR", ":8080"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AdminAddress:  envOr("GIVECHAIN_ADMIN_ADDRESS", "admin"),
		CharityPayout: envOr("GIVECHAIN_CHARITY_PAYOUT", "charity-payout"),
		BaseLocator:   envOr("GIVECHAIN_BASE_LOCATOR", "https://meta.givechain.dev/tokens/"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("KAFKA_TOPIC", "givechain.donations"),
		},
		Charity: CharityConfig{
			Name:           envOr("CHARITY_NAME", "Givechain Relief Fund"),
			Link:           envOr("CHARITY_LINK", "https://givechain.dev/charity"),
			Foundation:     envOr("CHARITY_FOUNDATION", "Givechain Foundation"),
			Source:         envOr("CHARITY_SOURCE", "https://givechain.dev"),
			RegisteredAt:   envOr("CHARITY_REGISTERED_AT", "2024-01-01"),
			SuggestedPrice: envOr("CHARITY_SUGGESTED_PRICE", "1000000000000000000"),
			ImageLocator:   envOr("CHARITY_IMAGE_LOCATOR", "https://meta.givechain.dev/charity.png"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
