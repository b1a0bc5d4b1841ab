package usecase

import (
	"context"

	"github.com/GoArmGo/UserDirectory/internal/domain"
)

// UserUseCase определяет бизнес-логику работы с пользователями.
// Каждая ошибка оборачивает ровно один из видов: domain.ErrValidation,
// domain.ErrUserNotFound или domain.ErrStorage.
type UserUseCase interface {
	// CreateUser проверяет тело запроса и создаёт пользователя
	CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error)

	// ListUsers возвращает всех пользователей
	ListUsers(ctx context.Context) ([]domain.User, error)

	// GetUser возвращает пользователя по id
	GetUser(ctx context.Context, id int64) (*domain.User, error)

	// UpdateUser сначала проверяет существование записи и только потом тело запроса
	UpdateUser(ctx context.Context, id int64, in domain.UserInput) (*domain.User, error)

	// DeleteUser удаляет существующего пользователя
	DeleteUser(ctx context.Context, id int64) error
}
