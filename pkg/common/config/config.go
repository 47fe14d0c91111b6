package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers     []string
	KafkaGroupID     string
	CorpusTopic      string
	ProfilesTopic    string
	ProfilesDLQTopic string

	// Extraction
	PhrasebookPath string

	// Matching
	MatchPageSize     int
	SanitizeMaxLength int

	// Profiles
	ProfileBuildWorkers int
	ProfileCacheTTL     time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 4*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "trialmatch"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "trialmatch"),
		PostgresDB:       getEnv("POSTGRES_DB", "trialmatch"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:     getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "trialmatch"),
		CorpusTopic:      getEnv("CORPUS_TOPIC", "trials.corpus"),
		ProfilesTopic:    getEnv("PROFILES_TOPIC", "profiles.rebuilt"),
		ProfilesDLQTopic: getEnv("PROFILES_DLQ_TOPIC", ""),

		PhrasebookPath: getEnv("PHRASEBOOK_PATH", ""),

		MatchPageSize:     getIntEnv("MATCH_PAGE_SIZE", 10),
		SanitizeMaxLength: getIntEnv("SANITIZE_MAX_LENGTH", 500),

		ProfileBuildWorkers: getIntEnv("PROFILE_BUILD_WORKERS", 8),
		ProfileCacheTTL:     getDuration("PROFILE_CACHE_TTL", time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getStringSliceEnv splits comma separated values, e.g. KAFKA_BROKERS=a:9092,b:9092.
func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
