package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	ServiceName string
	HTTPAddr    string
	Database    DatabaseConfig
	Serial      SerialConfig
	RabbitMQ    RabbitMQConfig
	Coach       CoachConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL            string
	MigrationsPath string
}

// SerialConfig holds the dustbin serial endpoint settings
type SerialConfig struct {
	Port     string
	BaudRate int
}

// RabbitMQConfig holds the optional broker settings. An empty URL disables
// event publishing and the queue-based classification intake.
type RabbitMQConfig struct {
	URL              string
	EventsExchange   string
	EventsRoutingKey string
	IngestExchange   string
	IngestQueue      string
	IngestRoutingKey string
	DLQQueue         string
	PrefetchCount    int
}

// CoachConfig holds the generative AI coach settings. An empty APIKey
// disables the coach endpoint.
type CoachConfig struct {
	APIKey   string
	Model    string
	Location string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "smart-dustbin"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":5000"),
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "internal/db/migrations"),
		},
		Serial: SerialConfig{
			Port:     getEnv("SERIAL_PORT", "COM7"),
			BaudRate: getEnvAsInt("BAUD_RATE", 9600),
		},
		RabbitMQ: RabbitMQConfig{
			URL:              getEnv("RABBITMQ_URL", ""),
			EventsExchange:   getEnv("RABBITMQ_EVENTS_EXCHANGE", "smart-dustbin.events.exchange"),
			EventsRoutingKey: getEnv("RABBITMQ_EVENTS_ROUTING_KEY", "points.awarded"),
			IngestExchange:   getEnv("RABBITMQ_INGEST_EXCHANGE", "smart-dustbin.ingest.exchange"),
			IngestQueue:      getEnv("RABBITMQ_INGEST_QUEUE", "smart-dustbin.ingest.queue"),
			IngestRoutingKey: getEnv("RABBITMQ_INGEST_ROUTING_KEY", "bin.classification"),
			DLQQueue:         getEnv("RABBITMQ_DLQ_QUEUE", "smart-dustbin.ingest.dlq"),
			PrefetchCount:    getEnvAsInt("RABBITMQ_PREFETCH", 10),
		},
		Coach: CoachConfig{
			APIKey:   getEnv("GOOGLE_API_KEY", ""),
			Model:    getEnv("COACH_MODEL", "gemini-1.5-flash"),
			Location: getEnv("COACH_LOCATION", "Mangalagiri, Andhra Pradesh, India"),
		},
	}

	// Validate required fields
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set in environment variables")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
