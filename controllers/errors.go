package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/zylpheon/TheZylpheonAdmin/apperrors"
)

var statusByCode = map[apperrors.Code]int{
	apperrors.CodeUnauthenticated:   fiber.StatusUnauthorized,
	apperrors.CodeInvalidCredential: fiber.StatusUnauthorized,
	apperrors.CodeForbidden:         fiber.StatusForbidden,
	apperrors.CodeNotFound:          fiber.StatusNotFound,
	apperrors.CodeInvalidArgument:   fiber.StatusBadRequest,
	apperrors.CodeInsufficientStock: fiber.StatusBadRequest,
	apperrors.CodeEmptyCart:         fiber.StatusBadRequest,
	apperrors.CodeConflict:          fiber.StatusConflict,
	apperrors.CodeInternal:          fiber.StatusInternalServerError,
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code apperrors.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error returned by a handler as
// {"code": ..., "message": ...}. Internal causes are logged, never sent.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"code": codeForStatus(fe.Code), "message": fe.Message})
		}

		appErr := apperrors.Classify(err)
		if appErr.Code == apperrors.CodeInternal {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(StatusFor(appErr.Code)).JSON(fiber.Map{"code": appErr.Code, "message": appErr.Message})
	}
}

func codeForStatus(status int) apperrors.Code {
	switch status {
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return apperrors.CodeNotFound
	case fiber.StatusUnauthorized:
		return apperrors.CodeUnauthenticated
	case fiber.StatusForbidden:
		return apperrors.CodeForbidden
	}
	if status < fiber.StatusInternalServerError {
		return apperrors.CodeInvalidArgument
	}
	return apperrors.CodeInternal
}

// paramID parses a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.InvalidArgument("Invalid " + name)
	}
	return uint(id), nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.InvalidArgument("Invalid request body format")
	}
	return nil
}
