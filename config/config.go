package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the member service
type Config struct {
	Telegram TelegramConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Logging  LoggingConfig
	Service  ServiceConfig
	Census   CensusConfig
}

// TelegramConfig holds Telegram MTProto configuration
type TelegramConfig struct {
	APIID          int
	APIHash        string
	PhoneNumber    string
	SessionDir     string
	ConnectTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name        string
	Port        string
	MetricsPort string
}

// CensusConfig holds periodic census configuration
type CensusConfig struct {
	// Entities lists entity references enumerated on every scheduled run
	Entities []string
	Interval time.Duration
	// Aggressive enables letter sharding for very large channels
	Aggressive bool
	// SnapshotHistory caps how many snapshots the API returns per entity
	SnapshotHistory int
}

// Result is fx.Out struct for providing config dependencies
type Result struct {
	fx.Out

	Config         *Config
	TelegramConfig *TelegramConfig
	DatabaseConfig *DatabaseConfig
	KafkaConfig    *KafkaConfig
	LoggingConfig  *LoggingConfig
	ServiceConfig  *ServiceConfig
	CensusConfig   *CensusConfig
}

// Out returns fx-compatible config result
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:         cfg,
		TelegramConfig: &cfg.Telegram,
		DatabaseConfig: &cfg.Database,
		KafkaConfig:    &cfg.Kafka,
		LoggingConfig:  &cfg.Logging,
		ServiceConfig:  &cfg.Service,
		CensusConfig:   &cfg.Census,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	apiID, err := strconv.Atoi(getEnv("TELEGRAM_API_ID", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_API_ID: %w", err)
	}

	entities := []string{}
	entitiesStr := getEnv("CENSUS_ENTITIES", "")
	if entitiesStr != "" {
		for _, e := range strings.Split(entitiesStr, ",") {
			if trimmed := strings.TrimSpace(e); trimmed != "" {
				entities = append(entities, trimmed)
			}
		}
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			APIID:          apiID,
			APIHash:        getEnv("TELEGRAM_API_HASH", ""),
			PhoneNumber:    getEnv("TELEGRAM_PHONE_NUMBER", ""),
			SessionDir:     getEnv("TELEGRAM_SESSION_DIR", "./sessions"),
			ConnectTimeout: getEnvDuration("TELEGRAM_CONNECT_TIMEOUT", 5*time.Minute),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvBool("DATABASE_ENABLED", false),
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			User:     getEnv("DATABASE_USER", "member_user"),
			Password: getEnv("DATABASE_PASSWORD", "member_pass"),
			DBName:   getEnv("DATABASE_NAME", "member_db"),
			SSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9093"), ","),
			Topic:   getEnv("KAFKA_CENSUS_TOPIC", "census.completed"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Service: ServiceConfig{
			Name:        getEnv("SERVICE_NAME", "member-service"),
			Port:        getEnv("SERVICE_PORT", "8085"),
			MetricsPort: getEnv("METRICS_PORT", "9095"),
		},
		Census: CensusConfig{
			Entities:        entities,
			Interval:        getEnvDuration("CENSUS_INTERVAL", 6*time.Hour),
			Aggressive:      getEnvBool("CENSUS_AGGRESSIVE", false),
			SnapshotHistory: getEnvInt("CENSUS_SNAPSHOT_HISTORY", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.APIID == 0 {
		return fmt.Errorf("TELEGRAM_API_ID is required")
	}

	if c.Telegram.APIHash == "" {
		return fmt.Errorf("TELEGRAM_API_HASH is required")
	}

	if c.Telegram.PhoneNumber == "" {
		return fmt.Errorf("TELEGRAM_PHONE_NUMBER is required")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when Kafka is enabled")
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("DATABASE_HOST is required when the database is enabled")
		}
		if c.Database.User == "" {
			return fmt.Errorf("DATABASE_USER is required when the database is enabled")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("DATABASE_NAME is required when the database is enabled")
		}
	}

	if c.Census.Interval <= 0 {
		return fmt.Errorf("CENSUS_INTERVAL must be positive")
	}

	return nil
}

// GetDSN returns database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets environment variable as int with default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvBool gets environment variable as bool with default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvDuration gets environment variable as duration with default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
