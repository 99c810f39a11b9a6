package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform JSON wrapper for all API responses:
// {status:"success", data} on success, {status:"fail"|"error", message}
// on failure. "fail" covers 4xx, "error" covers 5xx.
type Envelope struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// AppError is the single error type all middleware and controller
// failures funnel through. HTTPStatus decides the response code and
// whether the envelope reads "fail" or "error".
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		HTTPStatus: fiber.StatusBadRequest,
	}
}

func NewAuthError(message string) *AppError {
	return &AppError{
		Code:       "AUTH_ERROR",
		Message:    message,
		HTTPStatus: fiber.StatusUnauthorized,
	}
}

func NewPermissionError(message string) *AppError {
	return &AppError{
		Code:       "PERMISSION_ERROR",
		Message:    message,
		HTTPStatus: fiber.StatusForbidden,
	}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    message,
		HTTPStatus: fiber.StatusNotFound,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: fiber.StatusInternalServerError,
		Err:        err,
	}
}

// Respond writes the success envelope.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{Status: "success", Data: data})
}

// RespondWithError writes the failure envelope. Non-AppError values are
// treated as internal errors so their details never leak to the caller.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError(err)
	}

	status := "fail"
	if appErr.HTTPStatus >= fiber.StatusInternalServerError {
		status = "error"
	}
	return c.Status(appErr.HTTPStatus).JSON(Envelope{
		Status:  status,
		Message: appErr.Message,
	})
}

// ErrorHandler is the outermost Fiber error handler. Anything a handler
// returns (or a panic the recover middleware converts) ends up here.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := "fail"
		if fiberErr.Code >= fiber.StatusInternalServerError {
			status = "error"
		}
		return c.Status(fiberErr.Code).JSON(Envelope{Status: status, Message: fiberErr.Message})
	}
	return RespondWithError(c, err)
}
