package ports

import (
	"context"

	"github.com/GoArmGo/UserDirectory/internal/messaging/payloads"
)

// UserEventPublisher определяет методы для публикации событий об изменении пользователей
// Этот интерфейс используется бизнес-логикой после успешной записи
type UserEventPublisher interface {
	PublishUserEvent(ctx context.Context, event payloads.UserEvent) error
}

// UserEventConsumer определяет методы для потребления событий об изменении пользователей
// используется воркером
type UserEventConsumer interface {
	// StartConsumingUserEvents начинает прослушивание очереди
	// и вызывает handler для каждого полученного события
	StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEvent) error) error
}
