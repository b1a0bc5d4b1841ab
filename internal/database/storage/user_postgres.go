package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/UserDirectory/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// код PostgreSQL unique_violation
const uniqueViolation = "23505"

// UserStorage реализует интерфейс ports.UserStorage поверх sqlx
type UserStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *sqlx.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// CreateUser вставляет пользователя и возвращает запись с присвоенным id
func (s *UserStorage) CreateUser(ctx context.Context, username, email string) (*domain.User, error) {
	start := time.Now()

	var user domain.User
	err := s.db.GetContext(ctx, &user,
		`INSERT INTO users (username, email) VALUES ($1, $2) RETURNING id, username, email`,
		username, email,
	)
	if err != nil {
		s.logWriteError("failed to insert user", err, "username", username, "email", email)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// ListUsers возвращает всех пользователей в порядке id
func (s *UserStorage) ListUsers(ctx context.Context) ([]domain.User, error) {
	start := time.Now()

	users := []domain.User{}
	if err := s.db.SelectContext(ctx, &users, `SELECT id, username, email FROM users ORDER BY id`); err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("select users: %w", err)
	}

	s.logger.Debug("listed users",
		"count", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, nil
}

// GetUserByID получает пользователя по id; nil, nil если записи нет
func (s *UserStorage) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, `SELECT id, username, email FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("failed to get user by id", "user_id", id, "error", err)
		return nil, fmt.Errorf("select user %d: %w", id, err)
	}
	return &user, nil
}

// UpdateUser меняет username и email; id остаётся прежним
func (s *UserStorage) UpdateUser(ctx context.Context, id int64, username, email string) (*domain.User, error) {
	start := time.Now()

	var user domain.User
	err := s.db.GetContext(ctx, &user,
		`UPDATE users SET username = $1, email = $2 WHERE id = $3 RETURNING id, username, email`,
		username, email, id,
	)
	if err != nil {
		// запись исчезла между проверкой и обновлением
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("update user %d: %w", id, domain.ErrUserNotFound)
		}
		s.logWriteError("failed to update user", err, "user_id", id)
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}

	s.logger.Info("user updated",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// DeleteUser удаляет пользователя по id
func (s *UserStorage) DeleteUser(ctx context.Context, id int64) error {
	start := time.Now()

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user %d: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete user %d: %w", id, domain.ErrUserNotFound)
	}

	s.logger.Info("user deleted",
		"user_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// logWriteError отдельно помечает нарушение уникальности username/email
func (s *UserStorage) logWriteError(msg string, err error, args ...any) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		args = append(args, "constraint", pqErr.Constraint)
		msg += ": unique violation"
	}
	s.logger.Error(msg, append(args, "error", err)...)
}
