package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoArmGo/UserDirectory/internal/domain"
	"github.com/GoArmGo/UserDirectory/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// Тексты ответов
const (
	msgTestRoute     = "test route"
	msgUserCreated   = "user created"
	msgUserUpdated   = "user updated"
	msgUserDeleted   = "user deleted"
	msgUserNotFound  = "user not found"
	msgFieldsMissing = "username and email are required"
	msgNotFound      = "not found"
	msgNotAllowed    = "method not allowed"
)

// UserHandler — обработчик HTTP-запросов для работы с пользователями.
type UserHandler struct {
	userUseCase usecase.UserUseCase
	logger      *slog.Logger
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(uc usecase.UserUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{userUseCase: uc, logger: logger}
}

// Register вешает маршруты сервиса на роутер.
// id ограничен цифрами, иначе маршрут не совпадает и отвечает 404.
func (h *UserHandler) Register(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithMessage(w, http.StatusNotFound, msgNotFound, h.logger)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondWithMessage(w, http.StatusMethodNotAllowed, msgNotAllowed, h.logger)
	})

	r.Get("/test", h.Test)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Get("/{id:[0-9]+}", h.GetUser)
		r.Put("/{id:[0-9]+}", h.UpdateUser)
		r.Delete("/{id:[0-9]+}", h.DeleteUser)
	})
}

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload any, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithMessage — отправляет JSON-ответ вида {"message": ...}.
func respondWithMessage(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"message": message}, logger)
}

// respondWithError переводит вид ошибки в код ответа.
// Причина ошибки хранилища пишется в лог и клиенту не уходит.
func (h *UserHandler) respondWithError(w http.ResponseWriter, r *http.Request, err error, storageMsg string) {
	log := h.logger.With("request_id", RequestIDFromContext(r.Context()), "path", r.URL.Path)

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		log.Warn("user not found", "error", err)
		respondWithMessage(w, http.StatusNotFound, msgUserNotFound, h.logger)
	case errors.Is(err, domain.ErrValidation):
		log.Warn("invalid request body", "error", err)
		respondWithMessage(w, http.StatusBadRequest, msgFieldsMissing, h.logger)
	default:
		log.Error(storageMsg, "error", err)
		respondWithMessage(w, http.StatusInternalServerError, storageMsg, h.logger)
	}
}

// userID достаёт id из пути; слишком большое число трактуется как отсутствующая запись.
func userID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// decodeInput читает тело запроса. Нечитаемое тело равносильно пустому,
// и тогда валидация вернёт 400.
func (h *UserHandler) decodeInput(r *http.Request) domain.UserInput {
	var in domain.UserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debug("failed to decode request body", "error", err)
		return domain.UserInput{}
	}
	return in
}

// Test — проверка доступности сервиса.
func (h *UserHandler) Test(w http.ResponseWriter, r *http.Request) {
	respondWithMessage(w, http.StatusOK, msgTestRoute, h.logger)
}

// CreateUser — создаёт пользователя.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userUseCase.CreateUser(r.Context(), h.decodeInput(r))
	if err != nil {
		h.respondWithError(w, r, err, "error creating user")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{"message": msgUserCreated, "user": user}, h.logger)
}

// ListUsers — возвращает массив всех пользователей.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userUseCase.ListUsers(r.Context())
	if err != nil {
		h.respondWithError(w, r, err, "error getting users")
		return
	}
	if users == nil {
		users = []domain.User{}
	}

	respondWithJSON(w, http.StatusOK, users, h.logger)
}

// GetUser — возвращает пользователя по id.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		respondWithMessage(w, http.StatusNotFound, msgUserNotFound, h.logger)
		return
	}

	user, err := h.userUseCase.GetUser(r.Context(), id)
	if err != nil {
		h.respondWithError(w, r, err, "error getting user")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"user": user}, h.logger)
}

// UpdateUser — обновляет username и email.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		respondWithMessage(w, http.StatusNotFound, msgUserNotFound, h.logger)
		return
	}

	user, err := h.userUseCase.UpdateUser(r.Context(), id, h.decodeInput(r))
	if err != nil {
		h.respondWithError(w, r, err, "error updating user")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"message": msgUserUpdated, "user": user}, h.logger)
}

// DeleteUser — удаляет пользователя.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		respondWithMessage(w, http.StatusNotFound, msgUserNotFound, h.logger)
		return
	}

	if err := h.userUseCase.DeleteUser(r.Context(), id); err != nil {
		h.respondWithError(w, r, err, "error deleting user")
		return
	}

	respondWithMessage(w, http.StatusOK, msgUserDeleted, h.logger)
}
