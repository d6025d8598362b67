package appers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

type ErrorResp struct {
	StatusCode int    `json:"statusCode,omitempty"`
	StatusDesc string `json:"statusDesc,omitempty"`
}

func (e ErrorResp) Error() string {
	return e.StatusDesc
}

var (
	ErrEventNotFound = ErrorResp{
		http.StatusNotFound,
		"Event not found",
	}
	ErrInternal = ErrorResp{
		http.StatusInternalServerError,
		"internal server error",
	}
)

// StartupError - фатальная ошибка запуска: без валидного хранилища сервис не стартует
type StartupError struct {
	Op  string
	Err error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup %s: %v", e.Op, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// SanitizeError отдаёт клиенту статус из ErrorResp, всё остальное - 500 без деталей
func SanitizeError(c *fiber.Ctx, err error) error {
	var errResp ErrorResp

	if ok := errors.As(err, &errResp); ok {
		return NewErr(c, errResp.StatusCode, errResp)
	}
	return NewErr(c, ErrInternal.StatusCode, ErrInternal)
}

func NewErr(ctx *fiber.Ctx, status int, err error) error {
	return ctx.Status(status).JSON(fiber.Map{
		"detail": err.Error(),
	})
}
