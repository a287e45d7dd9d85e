package errors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrInternalServer     = errors.New("internal server error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrHabitNotFound      = errors.New("habit not found")
	ErrSnapNotFound       = errors.New("snap not found")
	ErrNotFriends         = errors.New("users are not friends")
	ErrNotMessageSender   = errors.New("only sender can modify message")
	ErrEmptyContent       = errors.New("message content is required")
	ErrTimeWindowExpired  = errors.New("time window for this operation has expired")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
)

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

func HTTPStatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrMessageNotFound),
		errors.Is(err, ErrHabitNotFound),
		errors.Is(err, ErrSnapNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrNotFriends),
		errors.Is(err, ErrNotMessageSender):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrTimeWindowExpired),
		errors.Is(err, ErrUserAlreadyExists):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Reason возвращает машинно-проверяемый код ошибки для socket-событий
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrMessageNotFound),
		errors.Is(err, ErrHabitNotFound),
		errors.Is(err, ErrSnapNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired):
		return "unauthorized"
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrNotFriends),
		errors.Is(err, ErrNotMessageSender):
		return "forbidden"
	case errors.Is(err, ErrTimeWindowExpired):
		return "time_window_expired"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrUserAlreadyExists):
		return "validation_error"
	default:
		return "internal_error"
	}
}
