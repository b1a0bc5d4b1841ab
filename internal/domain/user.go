package domain

import "errors"

// Виды ошибок, которые граница HTTP переводит в коды ответа.
var (
	// ErrValidation — в запросе нет обязательного поля (400)
	ErrValidation = errors.New("username and email are required")
	// ErrUserNotFound — пользователя с таким id нет (404)
	ErrUserNotFound = errors.New("user not found")
	// ErrStorage — любая ошибка хранилища, включая нарушение уникальности (500)
	ErrStorage = errors.New("storage error")
)

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID       int64  `json:"id" db:"id" gorm:"primaryKey"`
	Username string `json:"username" db:"username" gorm:"size:80;uniqueIndex;not null"`
	Email    string `json:"email" db:"email" gorm:"size:120;uniqueIndex;not null"`
}

func (User) TableName() string {
	return "users"
}

// UserInput — тело запроса на создание или обновление.
// Указатели позволяют отличить отсутствующее поле от пустой строки.
type UserInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// Validate проверяет, что оба поля присутствуют.
func (in UserInput) Validate() error {
	if in.Username == nil || in.Email == nil {
		return ErrValidation
	}
	return nil
}
