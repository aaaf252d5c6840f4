// Package respond writes the JSON envelope shared by every REST endpoint and maps
// domain errors to HTTP status codes.
package respond

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch util.KindOf(err) {
	case util.KindValidation:
		return fiber.StatusBadRequest
	case util.KindNotFound:
		return fiber.StatusNotFound
	case util.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// OK writes a 200 success envelope.
func OK(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(model.Response{Success: true, Message: message, Data: data})
}

// Created writes a 201 success envelope.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(model.Response{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope with an explicit status.
func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(model.Response{Success: false, Message: message})
}

// Error writes the failure envelope for err. Client errors carry the domain
// message only; server errors also carry the cause in "error" and are logged.
func Error(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status := StatusFor(err)
	resp := model.Response{Success: false, Message: err.Error()}

	var appErr *util.AppError
	var fe *fiber.Error
	switch {
	case errors.As(err, &appErr):
		resp.Message = appErr.Message
		if appErr.Err != nil {
			resp.Error = appErr.Err.Error()
		}
	case errors.As(err, &fe):
		resp.Message = fe.Message
	default:
		resp.Message = "Internal server error"
		resp.Error = err.Error()
	}

	if status >= fiber.StatusInternalServerError && logger != nil {
		logger.Error(resp.Message,
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(resp)
}

// ErrorHandler renders errors that escape handlers, including recovered panics
// and unmatched routes, in the envelope.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return Error(c, logger, err)
	}
}
