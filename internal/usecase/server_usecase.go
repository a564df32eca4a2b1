package usecase

import (
	"time"

	"github.com/concord-chat/concord/internal/constant"
	"github.com/concord-chat/concord/internal/model"
	"github.com/concord-chat/concord/internal/repository"
	"github.com/concord-chat/concord/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type ServerUsecase struct {
	ServerRepository *repository.ServerRepository
	RoleRepository   *repository.RoleRepository
	Authorizer       *Authorizer
	DB               *pgxpool.Pool
	Log              *zap.Logger
	Config           *koanf.Koanf
}

func NewServerUsecase(serverRepository *repository.ServerRepository, roleRepository *repository.RoleRepository, authorizer *Authorizer, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *ServerUsecase {
	return &ServerUsecase{
		ServerRepository: serverRepository,
		RoleRepository:   roleRepository,
		Authorizer:       authorizer,
		DB:               db,
		Log:              zap,
		Config:           koanf,
	}
}

// CreateServer creates the server row, seeds the default role tiers, records
// the creator as the owner member and hands them the Owner role, all in one
// transaction.
func (usecase *ServerUsecase) CreateServer(ctx *fiber.Ctx, userId uuid.UUID, payload model.ServerCreateRequest) (model.ServerResponse, error) {
	response := model.ServerResponse{}

	if payload.Name == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Name is required to not be empty",
			Param:   "name",
		}
	} else if len(payload.Name) < 5 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Name must be at least 5 characters",
			Param:   "name",
		}
	} else if len(payload.Name) > 40 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Name must be at most 40 characters",
			Param:   "name",
		}
	}

	if payload.ShortName == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Short name is required to not be empty",
			Param:   "shortName",
		}
	} else if len(payload.ShortName) > 10 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Short name must be at most 10 characters",
			Param:   "shortName",
		}
	}

	ctxContext := ctx.Context()
	now := time.Now().UTC()
	serverId := uuid.New()

	settings := payload.Settings
	if len(settings) == 0 {
		settings = []byte("{}")
	}

	server := model.Server{
		Id:             serverId,
		OwnerId:        userId,
		Name:           payload.Name,
		ShortName:      payload.ShortName,
		Description:    payload.Description,
		Settings:       settings,
		CreateDatetime: now,
		UpdateDatetime: now,
		CreateUserId:   userId,
		UpdateUserId:   userId,
	}

	commited := false

	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return response, err
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	err = usecase.ServerRepository.CreateServer(ctxContext, tx, server)
	if err != nil {
		return response, err
	}

	var ownerRoleId uuid.UUID
	for _, tier := range model.DefaultRoleTiers() {
		role := model.Role{
			Id:             uuid.New(),
			ServerId:       serverId,
			Name:           tier.Name,
			Color:          tier.Color,
			Permissions:    tier.Permissions,
			Position:       tier.Position,
			IsHoisted:      tier.IsHoisted,
			CreateDatetime: now,
			UpdateDatetime: now,
			CreateUserId:   userId,
			UpdateUserId:   userId,
		}

		err = usecase.RoleRepository.CreateRole(ctxContext, tx, role)
		if err != nil {
			return response, err
		}

		if tier.Name == "Owner" {
			ownerRoleId = role.Id
		}
	}

	member := model.ServerMember{
		Id:             uuid.New(),
		ServerId:       serverId,
		UserId:         userId,
		BaseRole:       model.BaseRoleOwner,
		Status:         model.MemberStatusActive,
		JoinedAt:       now,
		CreateDatetime: now,
		UpdateDatetime: now,
		CreateUserId:   userId,
		UpdateUserId:   userId,
	}

	err = usecase.ServerRepository.CreateServerMember(ctxContext, tx, member)
	if err != nil {
		return response, err
	}

	err = usecase.RoleRepository.AssignRoleTx(ctxContext, tx, model.MemberRole{
		Id:             uuid.New(),
		MemberId:       member.Id,
		RoleId:         ownerRoleId,
		CreateDatetime: now,
		CreateUserId:   userId,
	})
	if err != nil {
		return response, err
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return response, err
	}

	commited = true

	return server.ToResponse(), nil
}

func (usecase *ServerUsecase) GetUserServers(ctx *fiber.Ctx, userId uuid.UUID) ([]model.ServerResponse, error) {
	servers, err := usecase.ServerRepository.GetUserServers(ctx.Context(), userId)
	if err != nil {
		return nil, err
	}

	responses := make([]model.ServerResponse, 0, len(servers))
	for _, server := range servers {
		responses = append(responses, server.ToResponse())
	}

	return responses, nil
}

func (usecase *ServerUsecase) CreateInviteLink(ctx *fiber.Ctx, userId uuid.UUID, payload model.ServerInviteLinkRequest) (model.ServerInviteLinkResponse, error) {
	response := model.ServerInviteLinkResponse{}

	serverId, err := parseServerId(ctx)
	if err != nil {
		return response, err
	}

	if payload.ExpiresInMinutes <= 0 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Expires in minutes must be greater than 0",
			Param:   "expiresInMinutes",
		}
	} else if payload.ExpiresInMinutes > 10080 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Expires in minutes must be lower or equal than 10080 or one week",
			Param:   "expiresInMinutes",
		}
	}

	if payload.MaxUses <= 0 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Max uses must be greater than 0",
			Param:   "maxUses",
		}
	} else if payload.MaxUses > 100 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Max uses must be lower or equal than 100",
			Param:   "maxUses",
		}
	}

	ctxContext := ctx.Context()
	var inviteCode string

	for i := 0; i < 10; i++ {
		inviteCode, err = util.GenerateInviteCode()
		if err != nil {
			return response, err
		}

		exists, err := usecase.ServerRepository.CheckInviteCodes(ctxContext, inviteCode)
		if err != nil {
			return response, err
		}

		if exists == 0 {
			break
		}
	}

	now := time.Now().UTC()
	expiresAt := now.Add(time.Minute * time.Duration(payload.ExpiresInMinutes))

	serverInvites := model.ServerInvites{
		Id:              uuid.New(),
		ServerId:        serverId,
		Code:            inviteCode,
		MaxUses:         payload.MaxUses,
		UsedCount:       0,
		ExpiresDatetime: expiresAt,
		IsActive:        true,
		CreateDatetime:  now,
		UpdateDatetime:  now,
		CreateUserId:    userId,
		UpdateUserId:    userId,
	}

	err = usecase.ServerRepository.CreateServerInvites(ctxContext, serverInvites)
	if err != nil {
		return response, err
	}

	response.InviteCode = inviteCode
	response.ExpiresAt = expiresAt

	return response, nil
}

func (usecase *ServerUsecase) JoinServerFromInvite(ctx *fiber.Ctx, userId uuid.UUID, payload model.ServerJoinRequest) error {
	if payload.InviteCode == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invite code is required to not be empty",
			Param:   "inviteCode",
		}
	} else if len(payload.InviteCode) != 8 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invite code must be 8 characters",
			Param:   "inviteCode",
		}
	}

	ctxContext := ctx.Context()

	serverId, err := usecase.ServerRepository.CheckInviteCodesAndRetrieveServerId(ctxContext, payload.InviteCode)
	if err != nil {
		return err
	}

	if serverId == uuid.Nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invite code is not exists, expired or used up",
			Param:   "inviteCode",
		}
	}

	exists, err := usecase.ServerRepository.CheckServerMember(ctxContext, serverId, userId)
	if err != nil {
		return err
	}

	if exists == 1 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Unable to join server because user is already a member",
			Param:   "serverId",
		}
	}

	now := time.Now().UTC()

	member := model.ServerMember{
		Id:             uuid.New(),
		ServerId:       serverId,
		UserId:         userId,
		BaseRole:       model.BaseRoleMember,
		Status:         model.MemberStatusActive,
		JoinedAt:       now,
		CreateDatetime: now,
		UpdateDatetime: now,
		CreateUserId:   userId,
		UpdateUserId:   userId,
	}

	commited := false

	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return err
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	err = usecase.ServerRepository.CreateServerMember(ctxContext, tx, member)
	if err != nil {
		return err
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return err
	}

	commited = true

	return nil
}

func (usecase *ServerUsecase) ListMembers(ctx *fiber.Ctx) ([]model.ServerMemberResponse, error) {
	serverId, err := parseServerId(ctx)
	if err != nil {
		return nil, err
	}

	members, err := usecase.ServerRepository.ListMembers(ctx.Context(), serverId)
	if err != nil {
		return nil, err
	}

	responses := make([]model.ServerMemberResponse, 0, len(members))
	for _, member := range members {
		responses = append(responses, member.ToResponse())
	}

	return responses, nil
}

// targetAuthority derives the rank of a moderation target so the hierarchy
// guard can compare it against the actor's.
func (usecase *ServerUsecase) targetAuthority(ctx *fiber.Ctx, authority model.MemberAuthority) (model.MemberAuthority, error) {
	serverId, err := parseServerId(ctx)
	if err != nil {
		return model.MemberAuthority{}, err
	}

	memberId, err := uuid.Parse(ctx.Params("memberId"))
	if err != nil {
		return model.MemberAuthority{}, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid member id",
			Param:   "memberId",
		}
	}

	ctxContext := ctx.Context()

	server, err := usecase.ServerRepository.GetServerById(ctxContext, serverId)
	if err != nil {
		return model.MemberAuthority{}, err
	}

	target, err := usecase.ServerRepository.GetMemberById(ctxContext, serverId, memberId)
	if err != nil {
		return model.MemberAuthority{}, err
	}

	targetAuthority, err := loadAuthority(ctxContext, usecase.RoleRepository, server, target)
	if err != nil {
		return model.MemberAuthority{}, err
	}

	err = usecase.Authorizer.AuthorizeMemberAction(authority, targetAuthority)
	if err != nil {
		return model.MemberAuthority{}, err
	}

	return targetAuthority, nil
}

func (usecase *ServerUsecase) KickMember(ctx *fiber.Ctx, authority model.MemberAuthority) error {
	target, err := usecase.targetAuthority(ctx, authority)
	if err != nil {
		return err
	}

	return usecase.ServerRepository.UpdateMemberStatus(ctx.Context(), target.Member.Id, model.MemberStatusLeft, authority.Member.UserId)
}

func (usecase *ServerUsecase) BanMember(ctx *fiber.Ctx, authority model.MemberAuthority) error {
	target, err := usecase.targetAuthority(ctx, authority)
	if err != nil {
		return err
	}

	return usecase.ServerRepository.UpdateMemberStatus(ctx.Context(), target.Member.Id, model.MemberStatusBanned, authority.Member.UserId)
}

func (usecase *ServerUsecase) MuteMember(ctx *fiber.Ctx, authority model.MemberAuthority, muted bool) error {
	target, err := usecase.targetAuthority(ctx, authority)
	if err != nil {
		return err
	}

	return usecase.ServerRepository.SetMemberMuted(ctx.Context(), target.Member.Id, muted, authority.Member.UserId)
}

// Channels

func (usecase *ServerUsecase) CreateChannel(ctx *fiber.Ctx, authority model.MemberAuthority, payload model.ChannelCreateRequest) (model.ChannelResponse, error) {
	response := model.ChannelResponse{}

	serverId, err := parseServerId(ctx)
	if err != nil {
		return response, err
	}

	if payload.Name == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Name is required to not be empty",
			Param:   "name",
		}
	} else if len(payload.Name) > 40 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Name must be at most 40 characters",
			Param:   "name",
		}
	}

	if payload.Type != model.ChannelTypeText && payload.Type != model.ChannelTypeVoice {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Channel type must be text or voice",
			Param:   "type",
		}
	}

	now := time.Now().UTC()
	channel := model.Channel{
		Id:             uuid.New(),
		ServerId:       serverId,
		Name:           payload.Name,
		Type:           payload.Type,
		Position:       payload.Position,
		CreateDatetime: now,
		UpdateDatetime: now,
		CreateUserId:   authority.Member.UserId,
		UpdateUserId:   authority.Member.UserId,
	}

	err = usecase.ServerRepository.CreateChannel(ctx.Context(), channel)
	if err != nil {
		return response, err
	}

	return channel.ToResponse(), nil
}

func (usecase *ServerUsecase) ListChannels(ctx *fiber.Ctx) ([]model.ChannelResponse, error) {
	serverId, err := parseServerId(ctx)
	if err != nil {
		return nil, err
	}

	channels, err := usecase.ServerRepository.ListChannels(ctx.Context(), serverId)
	if err != nil {
		return nil, err
	}

	responses := make([]model.ChannelResponse, 0, len(channels))
	for _, channel := range channels {
		responses = append(responses, channel.ToResponse())
	}

	return responses, nil
}

func (usecase *ServerUsecase) UpdateChannel(ctx *fiber.Ctx, authority model.MemberAuthority, payload model.ChannelUpdateRequest) (model.ChannelResponse, error) {
	response := model.ChannelResponse{}

	serverId, err := parseServerId(ctx)
	if err != nil {
		return response, err
	}

	channelId, err := uuid.Parse(ctx.Params("channelId"))
	if err != nil {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid channel id",
			Param:   "channelId",
		}
	}

	ctxContext := ctx.Context()

	channel, err := usecase.ServerRepository.GetChannelById(ctxContext, serverId, channelId)
	if err != nil {
		return response, err
	}

	if payload.Name != nil {
		if *payload.Name == "" {
			return response, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Name is required to not be empty",
				Param:   "name",
			}
		}
		channel.Name = *payload.Name
	}
	if payload.Position != nil {
		channel.Position = *payload.Position
	}

	channel.UpdateDatetime = time.Now().UTC()
	channel.UpdateUserId = authority.Member.UserId

	err = usecase.ServerRepository.UpdateChannel(ctxContext, channel)
	if err != nil {
		return response, err
	}

	return channel.ToResponse(), nil
}

func (usecase *ServerUsecase) DeleteChannel(ctx *fiber.Ctx) error {
	serverId, err := parseServerId(ctx)
	if err != nil {
		return err
	}

	channelId, err := uuid.Parse(ctx.Params("channelId"))
	if err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid channel id",
			Param:   "channelId",
		}
	}

	ctxContext := ctx.Context()

	channel, err := usecase.ServerRepository.GetChannelById(ctxContext, serverId, channelId)
	if err != nil {
		return err
	}

	return usecase.ServerRepository.DeleteChannel(ctxContext, channel.Id)
}
