package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error represents an application error carrying the HTTP code it maps to.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same code and message, so wrapped
// instances of the package-level errors compare equal with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of base carrying err as its cause.
func Wrap(base *Error, err error) *Error {
	return New(base.Code, base.Message, err)
}

var (
	ErrBadRequest   = New(fiber.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized = New(fiber.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden    = New(fiber.StatusForbidden, "Forbidden", nil)
	ErrNotFound     = New(fiber.StatusNotFound, "Not found", nil)
	ErrConflict     = New(fiber.StatusConflict, "Conflict", nil)
	ErrInternal     = New(fiber.StatusInternalServerError, "Internal server error", nil)
	ErrBadGateway   = New(fiber.StatusBadGateway, "Upstream service error", nil)
)

// Code returns the HTTP status carried by err, or 500.
func Code(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return fiber.StatusInternalServerError
}

// Respond writes err as {"message": ...} using its code. Causes are not
// exposed to the client.
func Respond(c *fiber.Ctx, err error) error {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = ErrInternal
	}
	return c.Status(appErr.Code).JSON(fiber.Map{"message": appErr.Message})
}
