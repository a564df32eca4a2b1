package util

import (
	"errors"

	"github.com/concord-chat/concord/internal/constant"
	"github.com/concord-chat/concord/internal/model"
	"github.com/concord-chat/concord/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func ReadRequestBody(ctx *fiber.Ctx, result interface{}) error {
	err := ctx.BodyParser(&result)
	if err != nil {
		return err
	}
	return nil
}

func SendSuccessResponseNoData(ctx *fiber.Ctx) error {
	err := ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "OK",
	})
	if err != nil {
		return err
	}
	return nil
}

func SendSuccessResponseWithData(ctx *fiber.Ctx, data interface{}) error {
	err := ctx.Status(fiber.StatusOK).JSON(data)
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponse(ctx *fiber.Ctx, error error) error {
	err := ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": error,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponseNotFound(ctx *fiber.Ctx, error error) error {
	err := ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": error,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponseUnauthorized(ctx *fiber.Ctx, error error) error {
	err := ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": error,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponseForbidden(ctx *fiber.Ctx, error error) error {
	err := ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": error,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponseInternalServer(ctx *fiber.Ctx, log *zap.Logger, error error) error {
	// Correlate the log line with the active trace when one exists.
	observability.WithContext(ctx.UserContext(), log).Error("internal server error occured", zap.Error(error))
	err := ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    constant.ERR_INTERNAL_SERVER_ERROR_CODE,
			"message": constant.ERR_INTENRAL_SERVER_ERROR_MESSAGE,
		},
	})

	if err != nil {
		return err
	}

	return err
}

// SendDomainError maps the typed model errors onto their HTTP status; every
// other error is a logged 500. Authorization and hierarchy denials are
// surfaced as structured 403 bodies, never as faults.
func SendDomainError(ctx *fiber.Ctx, log *zap.Logger, err error) error {
	var validationErr *model.ValidationError
	var authenticationErr *model.AuthenticationError
	var authorizationErr *model.AuthorizationError
	var notFoundErr *model.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		return SendErrorResponse(ctx, err)
	case errors.As(err, &authenticationErr):
		return SendErrorResponseUnauthorized(ctx, err)
	case errors.As(err, &authorizationErr):
		return SendErrorResponseForbidden(ctx, err)
	case errors.As(err, &notFoundErr):
		return SendErrorResponseNotFound(ctx, err)
	default:
		return SendErrorResponseInternalServer(ctx, log, err)
	}
}
