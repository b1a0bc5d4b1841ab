package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Драйверы хранилища пользователей
const (
	StorageDriverSQLX = "sqlx"
	StorageDriverGorm = "gorm"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	ServerPort     string        `env:"SERVER_PORT"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`

	// sqlx (по умолчанию) или gorm
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlx"`

	// Пул соединений
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`

	// RabbitMQ необязателен: без URL уведомления об изменениях не публикуются
	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"user_events_queue"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config from environment: %w", err)
	}

	// required пропускает пустое значение, а без строки подключения работать нельзя
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must not be empty")
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "3000"
	}

	switch cfg.StorageDriver {
	case StorageDriverSQLX, StorageDriverGorm:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (use %q or %q)", cfg.StorageDriver, StorageDriverSQLX, StorageDriverGorm)
	}

	return &cfg, nil
}

// RabbitMQEnabled сообщает, настроена ли публикация событий.
func (c *Config) RabbitMQEnabled() bool {
	return c.RabbitMQ.RabbitMQURL != ""
}
