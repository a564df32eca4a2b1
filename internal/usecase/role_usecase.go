package usecase

import (
	"context"
	"time"

	"github.com/concord-chat/concord/internal/constant"
	"github.com/concord-chat/concord/internal/model"
	"github.com/concord-chat/concord/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type RoleUsecase struct {
	RoleRepository   *repository.RoleRepository
	ServerRepository *repository.ServerRepository
	Authorizer       *Authorizer
	DB               *pgxpool.Pool
	Log              *zap.Logger
	Config           *koanf.Koanf
}

func NewRoleUsecase(roleRepository *repository.RoleRepository, serverRepository *repository.ServerRepository, authorizer *Authorizer, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *RoleUsecase {
	return &RoleUsecase{
		RoleRepository:   roleRepository,
		ServerRepository: serverRepository,
		Authorizer:       authorizer,
		DB:               db,
		Log:              zap,
		Config:           koanf,
	}
}

// loadAuthority re-derives a member's effective permissions and max role
// position from current role data. Shared by the permission middleware and
// the moderation paths that need the target member's rank.
func loadAuthority(ctx context.Context, roleRepository *repository.RoleRepository, server model.Server, member model.ServerMember) (model.MemberAuthority, error) {
	everyone, err := roleRepository.GetEveryoneRole(ctx, server.Id)
	if err != nil {
		return model.MemberAuthority{}, err
	}

	assigned, err := roleRepository.GetMemberRoles(ctx, member.Id)
	if err != nil {
		return model.MemberAuthority{}, err
	}

	return EffectiveAuthority(member, server, everyone, assigned), nil
}

// Authority resolves the caller's membership on a server and derives their
// authorization view. Returns NotFoundError when the server is absent or the
// user is not an active member.
func (usecase *RoleUsecase) Authority(ctx context.Context, serverId uuid.UUID, userId uuid.UUID) (model.MemberAuthority, error) {
	server, err := usecase.ServerRepository.GetServerById(ctx, serverId)
	if err != nil {
		return model.MemberAuthority{}, err
	}

	member, err := usecase.ServerRepository.GetMemberByUserId(ctx, serverId, userId)
	if err != nil {
		return model.MemberAuthority{}, err
	}

	return loadAuthority(ctx, usecase.RoleRepository, server, member)
}

func parseServerId(ctx *fiber.Ctx) (uuid.UUID, error) {
	serverId, err := uuid.Parse(ctx.Params("serverId"))
	if err != nil {
		return uuid.Nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid server id",
			Param:   "serverId",
		}
	}
	return serverId, nil
}

func (usecase *RoleUsecase) ListRoles(ctx *fiber.Ctx) ([]model.RoleResponse, error) {
	serverId, err := parseServerId(ctx)
	if err != nil {
		return nil, err
	}

	roles, err := usecase.RoleRepository.GetServerRoles(ctx.Context(), serverId)
	if err != nil {
		return nil, err
	}

	responses := make([]model.RoleResponse, 0, len(roles))
	for _, role := range roles {
		responses = append(responses, role.ToResponse())
	}

	return responses, nil
}

func validateRoleName(name string) error {
	if name == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Name is required to not be empty",
			Param:   "name",
		}
	} else if len(name) > 40 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Name must be at most 40 characters",
			Param:   "name",
		}
	} else if name == model.EveryoneRoleName {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Role name is reserved",
			Param:   "name",
		}
	}

	return nil
}

func (usecase *RoleUsecase) CreateRole(ctx *fiber.Ctx, authority model.MemberAuthority, payload model.RoleCreateRequest) (model.RoleResponse, error) {
	response := model.RoleResponse{}

	serverId, err := parseServerId(ctx)
	if err != nil {
		return response, err
	}

	err = validateRoleName(payload.Name)
	if err != nil {
		return response, err
	}

	var permissions model.Permission
	if payload.Permissions != nil {
		permissions, err = model.ParsePermission(*payload.Permissions)
		if err != nil {
			return response, err
		}
	}

	err = usecase.Authorizer.AuthorizeRolePosition(authority, payload.Position)
	if err != nil {
		return response, err
	}

	color := payload.Color
	if color == "" {
		color = "#99AAB5"
	}

	now := time.Now().UTC()
	role := model.Role{
		Id:             uuid.New(),
		ServerId:       serverId,
		Name:           payload.Name,
		Color:          color,
		Permissions:    permissions,
		Position:       payload.Position,
		IsHoisted:      payload.IsHoisted,
		IsMentionable:  payload.IsMentionable,
		CreateDatetime: now,
		UpdateDatetime: now,
		CreateUserId:   authority.Member.UserId,
		UpdateUserId:   authority.Member.UserId,
	}

	err = usecase.RoleRepository.CreateRoleNoTx(ctx.Context(), role)
	if err != nil {
		return response, err
	}

	return role.ToResponse(), nil
}

func (usecase *RoleUsecase) UpdateRole(ctx *fiber.Ctx, authority model.MemberAuthority, payload model.RoleUpdateRequest) (model.RoleResponse, error) {
	response := model.RoleResponse{}

	serverId, err := parseServerId(ctx)
	if err != nil {
		return response, err
	}

	roleId, err := uuid.Parse(ctx.Params("roleId"))
	if err != nil {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid role id",
			Param:   "roleId",
		}
	}

	ctxContext := ctx.Context()

	role, err := usecase.RoleRepository.GetRoleById(ctxContext, serverId, roleId)
	if err != nil {
		return response, err
	}

	err = usecase.Authorizer.AuthorizeRoleMutation(authority, role)
	if err != nil {
		return response, err
	}

	if payload.Name != nil {
		if role.Name == model.EveryoneRoleName && *payload.Name != model.EveryoneRoleName {
			return response, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "The @everyone role cannot be renamed",
				Param:   "name",
			}
		}
		if role.Name != model.EveryoneRoleName {
			err = validateRoleName(*payload.Name)
			if err != nil {
				return response, err
			}
			role.Name = *payload.Name
		}
	}

	if payload.Position != nil {
		err = usecase.Authorizer.AuthorizeRolePosition(authority, *payload.Position)
		if err != nil {
			return response, err
		}
		role.Position = *payload.Position
	}

	if payload.Permissions != nil {
		permissions, err := model.ParsePermission(*payload.Permissions)
		if err != nil {
			return response, err
		}
		role.Permissions = permissions
	}

	if payload.Color != nil {
		role.Color = *payload.Color
	}
	if payload.IsHoisted != nil {
		role.IsHoisted = *payload.IsHoisted
	}
	if payload.IsMentionable != nil {
		role.IsMentionable = *payload.IsMentionable
	}

	role.UpdateDatetime = time.Now().UTC()
	role.UpdateUserId = authority.Member.UserId

	err = usecase.RoleRepository.UpdateRole(ctxContext, role)
	if err != nil {
		return response, err
	}

	return role.ToResponse(), nil
}

func (usecase *RoleUsecase) DeleteRole(ctx *fiber.Ctx, authority model.MemberAuthority) error {
	serverId, err := parseServerId(ctx)
	if err != nil {
		return err
	}

	roleId, err := uuid.Parse(ctx.Params("roleId"))
	if err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid role id",
			Param:   "roleId",
		}
	}

	ctxContext := ctx.Context()

	role, err := usecase.RoleRepository.GetRoleById(ctxContext, serverId, roleId)
	if err != nil {
		return err
	}

	err = usecase.Authorizer.AuthorizeRoleDeletion(authority, role)
	if err != nil {
		return err
	}

	return usecase.RoleRepository.DeleteRole(ctxContext, roleId)
}

func (usecase *RoleUsecase) AssignRole(ctx *fiber.Ctx, authority model.MemberAuthority) error {
	serverId, err := parseServerId(ctx)
	if err != nil {
		return err
	}

	memberId, err := uuid.Parse(ctx.Params("memberId"))
	if err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid member id",
			Param:   "memberId",
		}
	}

	roleId, err := uuid.Parse(ctx.Params("roleId"))
	if err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid role id",
			Param:   "roleId",
		}
	}

	ctxContext := ctx.Context()

	member, err := usecase.ServerRepository.GetMemberById(ctxContext, serverId, memberId)
	if err != nil {
		return err
	}

	role, err := usecase.RoleRepository.GetRoleById(ctxContext, serverId, roleId)
	if err != nil {
		return err
	}

	err = usecase.Authorizer.AuthorizeRoleMutation(authority, role)
	if err != nil {
		return err
	}

	exists, err := usecase.RoleRepository.CheckMemberRole(ctxContext, member.Id, role.Id)
	if err != nil {
		return err
	}

	if exists == 1 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Member already has this role",
			Param:   "roleId",
		}
	}

	memberRole := model.MemberRole{
		Id:             uuid.New(),
		MemberId:       member.Id,
		RoleId:         role.Id,
		CreateDatetime: time.Now().UTC(),
		CreateUserId:   authority.Member.UserId,
	}

	return usecase.RoleRepository.AssignRole(ctxContext, memberRole)
}

func (usecase *RoleUsecase) UnassignRole(ctx *fiber.Ctx, authority model.MemberAuthority) error {
	serverId, err := parseServerId(ctx)
	if err != nil {
		return err
	}

	memberId, err := uuid.Parse(ctx.Params("memberId"))
	if err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid member id",
			Param:   "memberId",
		}
	}

	roleId, err := uuid.Parse(ctx.Params("roleId"))
	if err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid role id",
			Param:   "roleId",
		}
	}

	ctxContext := ctx.Context()

	member, err := usecase.ServerRepository.GetMemberById(ctxContext, serverId, memberId)
	if err != nil {
		return err
	}

	role, err := usecase.RoleRepository.GetRoleById(ctxContext, serverId, roleId)
	if err != nil {
		return err
	}

	err = usecase.Authorizer.AuthorizeRoleMutation(authority, role)
	if err != nil {
		return err
	}

	removed, err := usecase.RoleRepository.UnassignRole(ctxContext, member.Id, role.Id)
	if err != nil {
		return err
	}

	if removed == 0 {
		return &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Role assignment not found",
			Param:   "roleId",
		}
	}

	return nil
}
