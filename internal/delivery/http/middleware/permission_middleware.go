package middleware

import (
	"github.com/concord-chat/concord/internal/constant"
	"github.com/concord-chat/concord/internal/model"
	"github.com/concord-chat/concord/internal/usecase"
	"github.com/concord-chat/concord/internal/util"
	"github.com/google/uuid"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PermissionMiddleware struct {
	Log         *zap.Logger
	RoleUsecase *usecase.RoleUsecase
	Authorizer  *usecase.Authorizer
}

func NewPermissionMiddleware(zap *zap.Logger, roleUsecase *usecase.RoleUsecase, authorizer *usecase.Authorizer) *PermissionMiddleware {
	return &PermissionMiddleware{
		Log:         zap,
		RoleUsecase: roleUsecase,
		Authorizer:  authorizer,
	}
}

// RequireMember resolves the caller's membership and effective permissions on
// the :serverId server and stashes them in locals for the handler.
func (middleware *PermissionMiddleware) RequireMember() fiber.Handler {
	return middleware.require(nil)
}

// RequirePermission is RequireMember plus a capability check against the
// caller's effective permission set.
func (middleware *PermissionMiddleware) RequirePermission(required model.Permission) fiber.Handler {
	return middleware.require(&required)
}

func (middleware *PermissionMiddleware) require(required *model.Permission) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userId := ctx.Locals("userId").(uuid.UUID)

		serverId, err := uuid.Parse(ctx.Params("serverId"))
		if err != nil {
			return util.SendErrorResponse(ctx, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Invalid server id",
				Param:   "serverId",
			})
		}

		authority, err := middleware.RoleUsecase.Authority(ctx.Context(), serverId, userId)
		if err != nil {
			return util.SendDomainError(ctx, middleware.Log, err)
		}

		if required != nil {
			err = middleware.Authorizer.Authorize(authority, *required)
			if err != nil {
				return util.SendDomainError(ctx, middleware.Log, err)
			}
		}

		ctx.Locals("authority", authority)

		return ctx.Next()
	}
}
