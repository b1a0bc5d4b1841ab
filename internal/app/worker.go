package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/UserDirectory/internal/core/ports"
	"github.com/GoArmGo/UserDirectory/internal/messaging/payloads"
)

// runWorker потребляет события об изменении пользователей и пишет их в лог
func runWorker(
	ctx context.Context,
	logger *slog.Logger,
	userEventConsumer ports.UserEventConsumer,
) error {
	if userEventConsumer == nil {
		return errors.New("worker mode requires RABBITMQ_URL")
	}

	err := userEventConsumer.StartConsumingUserEvents(ctx, func(ctx context.Context, event payloads.UserEvent) error {
		logger.Info("user event received",
			"type", event.Type,
			"user_id", event.UserID,
			"username", event.Username,
			"email", event.Email,
			"occurred_at", event.OccurredAt,
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("start RabbitMQ consumer: %w", err)
	}

	logger.Info("worker started, waiting for user events")
	<-ctx.Done()
	logger.Info("worker stopped")
	return nil
}
