// Package storagetest содержит хранилище пользователей в памяти для тестов.
package storagetest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/GoArmGo/UserDirectory/internal/domain"
)

// ErrDuplicate имитирует нарушение ограничения уникальности
var ErrDuplicate = errors.New("duplicate key value violates unique constraint")

// MemoryUserStorage реализует ports.UserStorage в памяти с теми же
// ограничениями уникальности, что и таблица users.
type MemoryUserStorage struct {
	mu     sync.Mutex
	users  map[int64]domain.User
	nextID int64

	// Err, если задан, возвращается любой операцией
	Err error
}

func NewMemoryUserStorage() *MemoryUserStorage {
	return &MemoryUserStorage{users: make(map[int64]domain.User), nextID: 1}
}

func (m *MemoryUserStorage) CreateUser(_ context.Context, username, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.conflicts(0, username, email) {
		return nil, ErrDuplicate
	}

	user := domain.User{ID: m.nextID, Username: username, Email: email}
	m.users[user.ID] = user
	m.nextID++
	return &user, nil
}

func (m *MemoryUserStorage) ListUsers(context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	users := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryUserStorage) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (m *MemoryUserStorage) UpdateUser(_ context.Context, id int64, username, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if _, ok := m.users[id]; !ok {
		return nil, domain.ErrUserNotFound
	}
	if m.conflicts(id, username, email) {
		return nil, ErrDuplicate
	}

	user := domain.User{ID: id, Username: username, Email: email}
	m.users[id] = user
	return &user, nil
}

func (m *MemoryUserStorage) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// Len возвращает число сохранённых записей
func (m *MemoryUserStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *MemoryUserStorage) conflicts(skipID int64, username, email string) bool {
	for id, u := range m.users {
		if id == skipID {
			continue
		}
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}
