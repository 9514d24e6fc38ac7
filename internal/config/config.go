package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Pass     PassConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	// LockTimeout bounds how long a registration transaction may wait on the
	// event row lock before failing as transient.
	LockTimeout time.Duration
	AutoMigrate bool
}

type RedisConfig struct {
	Addr    string
	ListTTL time.Duration
	Enabled bool
}

type KafkaConfig struct {
	Brokers           []string
	RegistrationTopic string
	Enabled           bool
}

type PassConfig struct {
	SecretKey string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "registration_user"),
			Password:     getEnv("DB_PASSWORD", "registration_pass"),
			Database:     getEnv("DB_NAME", "registration"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
			LockTimeout:  time.Duration(getEnvInt("DB_LOCK_TIMEOUT_SECONDS", 3)) * time.Second,
			AutoMigrate:  getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:    getEnv("REDIS_ADDR", "localhost:6379"),
			ListTTL: time.Duration(getEnvInt("REDIS_LIST_TTL_SECONDS", 30)) * time.Second,
			Enabled: getEnvBool("REDIS_ENABLED", true),
		},
		Kafka: KafkaConfig{
			Brokers:           []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			RegistrationTopic: getEnv("KAFKA_TOPIC_REGISTRATIONS", "registrations.created"),
			Enabled:           getEnvBool("KAFKA_ENABLED", true),
		},
		Pass: PassConfig{
			SecretKey: getEnv("PASS_SECRET_KEY", "dev-only-secret"),
		},
	}
}

// DSN builds the postgres connection string for the bun pgdriver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
