package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GoArmGo/UserDirectory/internal/domain"
	"github.com/GoArmGo/UserDirectory/internal/logger"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func setupMockStorage(t *testing.T) (*UserStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewUserStorage(sqlx.NewDb(db, "postgres"), logger.Discard()), mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreateUser(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.
		ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (username, email) VALUES ($1, $2) RETURNING id, username, email`)).
		WithArgs("alice", "a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}).AddRow(1, "alice", "a@x.com"))

	user, err := s.CreateUser(context.Background(), "alice", "a@x.com")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if *user != (domain.User{ID: 1, Username: "alice", Email: "a@x.com"}) {
		t.Fatalf("unexpected user %+v", user)
	}
	expectationsMet(t, mock)
}

func TestCreateUserUniqueViolation(t *testing.T) {
	s, mock := setupMockStorage(t)

	dup := &pq.Error{Code: uniqueViolation, Constraint: "users_username_key"}
	mock.
		ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("alice", "b@x.com").
		WillReturnError(dup)

	_, err := s.CreateUser(context.Background(), "alice", "b@x.com")
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		t.Fatalf("expected wrapped unique violation, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestListUsers(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.
		ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email FROM users ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}).
			AddRow(1, "alice", "a@x.com").
			AddRow(2, "bob", "b@x.com"))

	users, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].ID != 1 || users[1].Username != "bob" {
		t.Fatalf("unexpected users %+v", users)
	}
	expectationsMet(t, mock)
}

func TestListUsersEmptyIsNotNil(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.
		ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email FROM users ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}))

	users, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", users)
	}
	expectationsMet(t, mock)
}

func TestListUsersError(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email FROM users`)).WillReturnError(sql.ErrConnDone)

	if _, err := s.ListUsers(context.Background()); !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("expected ErrConnDone, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestGetUserByID(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.
		ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email FROM users WHERE id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}).AddRow(7, "carol", "c@x.com"))

	user, err := s.GetUserByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if user == nil || user.ID != 7 || user.Email != "c@x.com" {
		t.Fatalf("unexpected user %+v", user)
	}
	expectationsMet(t, mock)
}

func TestGetUserByIDMissing(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.
		ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email FROM users WHERE id = $1`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}))

	user, err := s.GetUserByID(context.Background(), 42)
	if err != nil || user != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", user, err)
	}
	expectationsMet(t, mock)
}

func TestUpdateUser(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.
		ExpectQuery(regexp.QuoteMeta(`UPDATE users SET username = $1, email = $2 WHERE id = $3 RETURNING id, username, email`)).
		WithArgs("alice2", "a@x.com", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}).AddRow(1, "alice2", "a@x.com"))

	user, err := s.UpdateUser(context.Background(), 1, "alice2", "a@x.com")
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if user.ID != 1 || user.Username != "alice2" {
		t.Fatalf("unexpected user %+v", user)
	}
	expectationsMet(t, mock)
}

func TestUpdateUserVanished(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.
		ExpectQuery(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs("x", "y", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}))

	if _, err := s.UpdateUser(context.Background(), 3, "x", "y"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestDeleteUser(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.
		ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.DeleteUser(context.Background(), 1); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	expectationsMet(t, mock)
}

func TestDeleteUserNoRows(t *testing.T) {
	s, mock := setupMockStorage(t)

	mock.
		ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.DeleteUser(context.Background(), 9); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}
