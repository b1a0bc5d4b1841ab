package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/UserDirectory/internal/domain"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GormUserStorage реализует интерфейс ports.UserStorage с использованием GORM
type GormUserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormUserStorage создает новый экземпляр GormUserStorage
func NewGormUserStorage(db *gorm.DB, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, logger: logger}
}

func (s *GormUserStorage) CreateUser(ctx context.Context, username, email string) (*domain.User, error) {
	start := time.Now()

	user := domain.User{Username: username, Email: email}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		s.logger.Error("failed to insert user with GORM",
			"username", username,
			"unique_violation", isUniqueViolation(err),
			"error", err,
		)
		return nil, fmt.Errorf("insert user with GORM: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "duration_ms", time.Since(start).Milliseconds())
	return &user, nil
}

func (s *GormUserStorage) ListUsers(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		s.logger.Error("failed to list users with GORM", "error", err)
		return nil, fmt.Errorf("list users with GORM: %w", err)
	}
	return users, nil
}

func (s *GormUserStorage) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to get user by id with GORM", "user_id", id, "error", err)
		return nil, fmt.Errorf("get user %d with GORM: %w", id, err)
	}
	return &user, nil
}

func (s *GormUserStorage) UpdateUser(ctx context.Context, id int64, username, email string) (*domain.User, error) {
	start := time.Now()

	result := s.db.WithContext(ctx).
		Model(&domain.User{ID: id}).
		Updates(map[string]any{"username": username, "email": email})
	if result.Error != nil {
		s.logger.Error("failed to update user with GORM",
			"user_id", id,
			"unique_violation", isUniqueViolation(result.Error),
			"error", result.Error,
		)
		return nil, fmt.Errorf("update user %d with GORM: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("update user %d with GORM: %w", id, domain.ErrUserNotFound)
	}

	s.logger.Info("user updated", "user_id", id, "duration_ms", time.Since(start).Milliseconds())
	return &domain.User{ID: id, Username: username, Email: email}, nil
}

func (s *GormUserStorage) DeleteUser(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&domain.User{}, id)
	if result.Error != nil {
		s.logger.Error("failed to delete user with GORM", "user_id", id, "error", result.Error)
		return fmt.Errorf("delete user %d with GORM: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete user %d with GORM: %w", id, domain.ErrUserNotFound)
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
