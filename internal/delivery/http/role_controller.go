package http

import (
	"github.com/concord-chat/concord/internal/constant"
	"github.com/concord-chat/concord/internal/model"
	"github.com/concord-chat/concord/internal/usecase"
	"github.com/concord-chat/concord/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type RoleController struct {
	RoleUsecase *usecase.RoleUsecase
	Log         *zap.Logger
	Config      *koanf.Koanf
}

func NewRoleController(roleUsecase *usecase.RoleUsecase, zap *zap.Logger, koanf *koanf.Koanf) *RoleController {
	return &RoleController{
		RoleUsecase: roleUsecase,
		Log:         zap,
		Config:      koanf,
	}
}

func authority(ctx *fiber.Ctx) model.MemberAuthority {
	return ctx.Locals("authority").(model.MemberAuthority)
}

func (controller RoleController) ListRoles(ctx *fiber.Ctx) error {
	response, err := controller.RoleUsecase.ListRoles(ctx)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller RoleController) CreateRole(ctx *fiber.Ctx) error {
	var payload model.RoleCreateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	response, err := controller.RoleUsecase.CreateRole(ctx, authority(ctx), payload)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller RoleController) UpdateRole(ctx *fiber.Ctx) error {
	var payload model.RoleUpdateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	response, err := controller.RoleUsecase.UpdateRole(ctx, authority(ctx), payload)
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller RoleController) DeleteRole(ctx *fiber.Ctx) error {
	err := controller.RoleUsecase.DeleteRole(ctx, authority(ctx))
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller RoleController) AssignRole(ctx *fiber.Ctx) error {
	err := controller.RoleUsecase.AssignRole(ctx, authority(ctx))
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller RoleController) UnassignRole(ctx *fiber.Ctx) error {
	err := controller.RoleUsecase.UnassignRole(ctx, authority(ctx))
	if err != nil {
		return util.SendDomainError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}
