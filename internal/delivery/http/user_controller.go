package http

import (
	"github.com/concord-chat/concord/internal/constant"
	"github.com/concord-chat/concord/internal/model"
	"github.com/concord-chat/concord/internal/usecase"
	"github.com/concord-chat/concord/internal/util"
	"github.com/google/uuid"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type UserController struct {
	UserUsecase *usecase.UserUsecase
	Log         *zap.Logger
	Config      *koanf.Koanf
}

func NewUserController(userUsecase *usecase.UserUsecase, zap *zap.Logger, koanf *koanf.Koanf) *UserController {
	return &UserController{
		UserUsecase: userUsecase,
		Log:         zap,
		Config:      koanf,
	}
}

func (controller UserController) Register(ctx *fiber.Ctx) error {
	var payload model.UserCreateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	response, err := controller.UserUsecase.Register(ctx, payload)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller UserController) Login(ctx *fiber.Ctx) error {
	var payload model.UserLoginRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	response, err := controller.UserUsecase.Login(ctx, payload)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller UserController) GetUserInfo(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	response, err := controller.UserUsecase.GetUserInfo(ctx, userId)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller UserController) Logout(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	err := controller.UserUsecase.Logout(ctx, userId)
	if err != nil {
		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller UserController) UpdateAvatar(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	err := controller.UserUsecase.UpdateAvatar(ctx, userId)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}
