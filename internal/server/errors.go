package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comigor/schoolassist-go/internal/conversation"
	"github.com/comigor/schoolassist-go/internal/session"
)

// AppError is the single error shape written by every endpoint.
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *AppError) Error() string {
	return "[" + e.Code + "] " + e.Message
}

func newError(status int, code, message string) *AppError {
	return &AppError{StatusCode: status, Code: code, Message: message}
}

// fromError maps domain errors onto HTTP errors.
func fromError(err error) *AppError {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, conversation.ErrEmptyInput):
		return newError(http.StatusBadRequest, "EMPTY_MESSAGE", err.Error())
	case errors.Is(err, conversation.ErrInputTooLong):
		return newError(http.StatusBadRequest, "MESSAGE_TOO_LONG", err.Error())
	case errors.Is(err, session.ErrBusy):
		return newError(http.StatusConflict, "SESSION_BUSY", err.Error())
	default:
		return newError(http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func abortWithError(c *gin.Context, err error) {
	appErr := fromError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.StatusCode, appErr)
}
