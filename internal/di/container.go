package di

import (
	"io"

	"github.com/GoArmGo/UserDirectory/internal/app"
	"github.com/GoArmGo/UserDirectory/internal/config"
	"github.com/GoArmGo/UserDirectory/internal/core/ports"
	"github.com/GoArmGo/UserDirectory/internal/database/client"
	"github.com/GoArmGo/UserDirectory/internal/database/postgres"
	"github.com/GoArmGo/UserDirectory/internal/database/storage"
	"github.com/GoArmGo/UserDirectory/internal/logger"
	"github.com/GoArmGo/UserDirectory/internal/rabbitmq"
	"github.com/GoArmGo/UserDirectory/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp() (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	var closers []io.Closer
	fail := func(err error) (*app.App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
		return nil, err
	}

	// 2. Подключение к PostgreSQL и создание схемы
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, dbClient)

	if err := postgres.ApplyMigrations(cfg.DatabaseURL, slogger); err != nil {
		return fail(err)
	}

	// 3. Хранилище пользователей
	var userStorage ports.UserStorage
	switch cfg.StorageDriver {
	case config.StorageDriverGorm:
		gormDB, err := postgres.OpenGorm(dbClient.DB.DB)
		if err != nil {
			return fail(err)
		}
		userStorage = postgres.NewGormUserStorage(gormDB, slogger)
	default:
		userStorage = storage.NewUserStorage(dbClient.DB, slogger)
	}
	slogger.Info("user storage initialized", "driver", cfg.StorageDriver)

	// 4. RabbitMQ (необязательно). Интерфейсы остаются nil, а не typed nil.
	var (
		publisher ports.UserEventPublisher
		consumer  ports.UserEventConsumer
	)
	if cfg.RabbitMQEnabled() {
		rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, rabbitMQClient)
		publisher = rabbitMQClient
		consumer = rabbitMQClient
	} else {
		slogger.Info("RABBITMQ_URL not set, user events are disabled")
	}

	// 5. Бизнес-логика
	userUseCase := usecase.NewUserUseCase(userStorage, publisher, slogger)

	application := app.NewApp(cfg, slogger, userUseCase, consumer, closers...)

	slogger.Info("all dependencies initialized")
	return application, nil
}
