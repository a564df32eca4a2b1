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

type ServerController struct {
	ServerUsecase *usecase.ServerUsecase
	Log           *zap.Logger
	Config        *koanf.Koanf
}

func NewServerController(serverUsecase *usecase.ServerUsecase, zap *zap.Logger, koanf *koanf.Koanf) *ServerController {
	return &ServerController{
		ServerUsecase: serverUsecase,
		Log:           zap,
		Config:        koanf,
	}
}

func (controller ServerController) CreateServer(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var payload model.ServerCreateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	response, err := controller.ServerUsecase.CreateServer(ctx, userId, payload)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller ServerController) GetUserServers(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	response, err := controller.ServerUsecase.GetUserServers(ctx, userId)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller ServerController) CreateInviteLink(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var payload model.ServerInviteLinkRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	response, err := controller.ServerUsecase.CreateInviteLink(ctx, userId, payload)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller ServerController) JoinServerFromInvite(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var payload model.ServerJoinRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	err = controller.ServerUsecase.JoinServerFromInvite(ctx, userId, payload)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller ServerController) ListMembers(ctx *fiber.Ctx) error {
	response, err := controller.ServerUsecase.ListMembers(ctx)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller ServerController) KickMember(ctx *fiber.Ctx) error {
	err := controller.ServerUsecase.KickMember(ctx, authority(ctx))
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller ServerController) BanMember(ctx *fiber.Ctx) error {
	err := controller.ServerUsecase.BanMember(ctx, authority(ctx))
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller ServerController) MuteMember(ctx *fiber.Ctx) error {
	err := controller.ServerUsecase.MuteMember(ctx, authority(ctx), true)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller ServerController) UnmuteMember(ctx *fiber.Ctx) error {
	err := controller.ServerUsecase.MuteMember(ctx, authority(ctx), false)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller ServerController) CreateChannel(ctx *fiber.Ctx) error {
	var payload model.ChannelCreateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	response, err := controller.ServerUsecase.CreateChannel(ctx, authority(ctx), payload)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller ServerController) ListChannels(ctx *fiber.Ctx) error {
	response, err := controller.ServerUsecase.ListChannels(ctx)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller ServerController) UpdateChannel(ctx *fiber.Ctx) error {
	var payload model.ChannelUpdateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	response, err := controller.ServerUsecase.UpdateChannel(ctx, authority(ctx), payload)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller ServerController) DeleteChannel(ctx *fiber.Ctx) error {
	err := controller.ServerUsecase.DeleteChannel(ctx)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}
