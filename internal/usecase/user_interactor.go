package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/UserDirectory/internal/core/ports"
	"github.com/GoArmGo/UserDirectory/internal/domain"
	"github.com/GoArmGo/UserDirectory/internal/messaging/payloads"
)

// userUseCase implements UserUseCase
type userUseCase struct {
	userStorage ports.UserStorage
	publisher   ports.UserEventPublisher
	logger      *slog.Logger
	now         func() time.Time
}

// NewUserUseCase создает новый экземпляр UserUseCase.
// publisher может быть nil, тогда события не публикуются.
func NewUserUseCase(
	userStorage ports.UserStorage,
	publisher ports.UserEventPublisher,
	logger *slog.Logger,
) UserUseCase {
	return &userUseCase{
		userStorage: userStorage,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

func (uc *userUseCase) CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := uc.userStorage.CreateUser(ctx, *in.Username, *in.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: create user: %w", domain.ErrStorage, err)
	}

	uc.publish(ctx, payloads.UserCreated, user)
	return user, nil
}

func (uc *userUseCase) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := uc.userStorage.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %w", domain.ErrStorage, err)
	}
	return users, nil
}

func (uc *userUseCase) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return uc.findUser(ctx, id)
}

func (uc *userUseCase) UpdateUser(ctx context.Context, id int64, in domain.UserInput) (*domain.User, error) {
	// существование проверяется до валидации тела
	if _, err := uc.findUser(ctx, id); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := uc.userStorage.UpdateUser(ctx, id, *in.Username, *in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update user %d: %w", domain.ErrStorage, id, err)
	}

	uc.publish(ctx, payloads.UserUpdated, user)
	return user, nil
}

func (uc *userUseCase) DeleteUser(ctx context.Context, id int64) error {
	user, err := uc.findUser(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.userStorage.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("%w: delete user %d: %w", domain.ErrStorage, id, err)
	}

	uc.publish(ctx, payloads.UserDeleted, user)
	return nil
}

// findUser переводит отсутствие записи в domain.ErrUserNotFound
func (uc *userUseCase) findUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := uc.userStorage.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get user %d: %w", domain.ErrStorage, id, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrUserNotFound)
	}
	return user, nil
}

// publish отправляет уведомление; ошибка только логируется и на ответ не влияет
func (uc *userUseCase) publish(ctx context.Context, eventType string, user *domain.User) {
	if uc.publisher == nil {
		return
	}

	event := payloads.UserEvent{
		Type:       eventType,
		UserID:     user.ID,
		Username:   user.Username,
		Email:      user.Email,
		OccurredAt: uc.now().UTC(),
	}
	if err := uc.publisher.PublishUserEvent(context.WithoutCancel(ctx), event); err != nil {
		uc.logger.Warn("failed to publish user event", "type", eventType, "user_id", user.ID, "error", err)
	}
}
