package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"formfield.app/configs/configslog"
	"formfield.app/pkg/validation"
	"formfield.app/services"
)

// ErrorCode classifies API errors for clients.
type ErrorCode string

const (
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrorCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every failed request. Errors is only set for
// validation failures.
type ErrorResponse struct {
	Message string             `json:"message"`
	Code    ErrorCode          `json:"code"`
	Errors  *validation.Errors `json:"errors,omitempty"`
}

const msgInvalidData = "The given data was invalid."

// ErrorHandler renders errors returned by handlers and middlewares.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, body := classify(err)
	if status == fiber.StatusInternalServerError {
		configslog.Log.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(body)
}

func classify(err error) (int, ErrorResponse) {
	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		return fiber.StatusUnprocessableEntity, ErrorResponse{Message: msgInvalidData, Code: ErrorCodeValidationFailed, Errors: verrs}
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code, ErrorResponse{Message: ferr.Message, Code: codeFor(ferr.Code)}
	}

	switch {
	case errors.Is(err, services.ErrFormNotFound),
		errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrCountryNotFound):
		return fiber.StatusNotFound, ErrorResponse{Message: err.Error(), Code: ErrorCodeNotFound}
	case errors.Is(err, services.ErrFormForbidden),
		errors.Is(err, services.ErrSubmissionForbidden):
		return fiber.StatusForbidden, ErrorResponse{Message: err.Error(), Code: ErrorCodeForbidden}
	case errors.Is(err, services.ErrFormInvalidInput):
		return fiber.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: ErrorCodeBadRequest}
	}
	return fiber.StatusInternalServerError, ErrorResponse{Message: "Internal server error.", Code: ErrorCodeInternal}
}

func codeFor(status int) ErrorCode {
	switch status {
	case fiber.StatusUnauthorized:
		return ErrorCodeUnauthorized
	case fiber.StatusForbidden:
		return ErrorCodeForbidden
	case fiber.StatusNotFound:
		return ErrorCodeNotFound
	case fiber.StatusUnprocessableEntity:
		return ErrorCodeValidationFailed
	}
	if status >= fiber.StatusInternalServerError {
		return ErrorCodeInternal
	}
	return ErrorCodeBadRequest
}

func badRequest(message string) error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "Resource not found.")
	}
	return uint(id), nil
}
