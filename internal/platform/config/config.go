// Package config builds the process configuration from environment variables
// so main stays lean. A .env file is honored when present (development
// convenience); real deployments set the environment directly.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config captures everything the server process needs at startup.
type Config struct {
	Addr          string
	JWTSigningKey string

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Provider ProviderConfig
}

// DatabaseConfig holds PostgreSQL connection pool settings.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds the token binding cache settings. An empty URL disables
// Redis; the service then requires a preview row before result completion.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds audit event publishing settings. Empty brokers disable
// the outbox worker; events stay in the outbox table.
type KafkaConfig struct {
	Brokers string
	Topic   string
	Acks    string
}

// ProviderConfig holds the face/ID verification provider settings.
type ProviderConfig struct {
	BaseURL     string
	SecretID    string
	SecretKey   string
	Region      string
	CheckMode   string
	SecureLevel string
	Timeout     time.Duration
	TokenTTL    time.Duration
}

// FromEnv loads configuration from the environment, with development defaults
// for everything except credentials.
func FromEnv() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	jwtSigningKey := getEnv("JWT_SIGNING_KEY", "")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Addr:          getEnv("EKYC_ADDR", ":8071"),
		JWTSigningKey: jwtSigningKey,
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: getEnv("KAFKA_BROKERS", ""),
			Topic:   getEnv("KAFKA_AUDIT_TOPIC", "ekyc.audit.events"),
			Acks:    getEnv("KAFKA_ACKS", "all"),
		},
		Provider: ProviderConfig{
			BaseURL:     getEnv("FACEID_ENDPOINT", "https://faceid.tencentcloudapi.com"),
			SecretID:    getEnv("FACEID_SECRET_ID", ""),
			SecretKey:   getEnv("FACEID_SECRET_KEY", ""),
			Region:      getEnv("FACEID_REGION", "ap-jakarta"),
			CheckMode:   getEnv("FACEID_CHECK_MODE", "liveness"),
			SecureLevel: getEnv("FACEID_SECURE_LEVEL", "4"),
			Timeout:     getEnvDuration("FACEID_TIMEOUT", 30*time.Second),
			TokenTTL:    getEnvDuration("FACEID_TOKEN_TTL", 30*time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid integer for %s: %v", key, err)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid duration for %s: %v", key, err)
		return defaultValue
	}
	return d
}
