package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// memory, redis or mongo
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"memory"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DB_NAME" default:"cartdb"`

	CatalogBaseURL string `envconfig:"CATALOG_BASE_URL" default:"http://localhost:8081"`
	OrderBaseURL   string `envconfig:"ORDER_BASE_URL" default:"http://localhost:8082"`

	// empty disables order event publishing
	KafkaBrokers     string `envconfig:"KAFKA_BROKERS" default:""`
	OrderEventsTopic string `envconfig:"ORDER_EVENTS_TOPIC" default:"order-placed"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
