package ports

import (
	"context"

	"github.com/GoArmGo/UserDirectory/internal/domain"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей
type UserStorage interface {
	// CreateUser вставляет запись и возвращает её с присвоенным id
	CreateUser(ctx context.Context, username, email string) (*domain.User, error)
	// ListUsers возвращает всех пользователей в порядке id
	ListUsers(ctx context.Context) ([]domain.User, error)
	// GetUserByID возвращает nil, nil, если записи нет
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, username, email string) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
