package repository

import (
	"context"
	"errors"
	"time"

	"github.com/concord-chat/concord/internal/constant"
	"github.com/concord-chat/concord/internal/model"
	"github.com/google/uuid"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ServerRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewServerRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *ServerRepository {
	return &ServerRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

func (repository *ServerRepository) CreateServer(ctx context.Context, tx pgx.Tx, server model.Server) error {
	query := "INSERT INTO servers (id,owner_id,name,short_name,description,settings,create_datetime,update_datetime,create_user_id,update_user_id) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)"

	_, err := tx.Exec(ctx, query, server.Id, server.OwnerId, server.Name, server.ShortName, server.Description, server.Settings, server.CreateDatetime, server.UpdateDatetime, server.CreateUserId, server.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ServerRepository) GetServerById(ctx context.Context, serverId uuid.UUID) (model.Server, error) {
	query := "SELECT id,owner_id,name,short_name,description,settings,create_datetime,update_datetime,create_user_id,update_user_id FROM servers WHERE id=$1 LIMIT 1"

	var server model.Server
	err := repository.DB.QueryRow(ctx, query, serverId).Scan(&server.Id, &server.OwnerId, &server.Name, &server.ShortName, &server.Description, &server.Settings, &server.CreateDatetime, &server.UpdateDatetime, &server.CreateUserId, &server.UpdateUserId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return server, &model.NotFoundError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Server not found",
				Param:   "serverId",
			}
		}
		return server, err
	}

	return server, nil
}

func (repository *ServerRepository) CreateServerMember(ctx context.Context, tx pgx.Tx, serverMember model.ServerMember) error {
	query := "INSERT INTO server_members (id,server_id,user_id,base_role,status,is_muted,joined_at,left_at,create_datetime,update_datetime,create_user_id,update_user_id) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)"

	_, err := tx.Exec(ctx, query, serverMember.Id, serverMember.ServerId, serverMember.UserId, serverMember.BaseRole, serverMember.Status, serverMember.IsMuted, serverMember.JoinedAt, serverMember.LeftAt, serverMember.CreateDatetime, serverMember.UpdateDatetime, serverMember.CreateUserId, serverMember.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

const memberColumns = "id,server_id,user_id,base_role,status,is_muted,joined_at,left_at,create_datetime,update_datetime,create_user_id,update_user_id"

func scanMember(row pgx.Row, member *model.ServerMember) error {
	return row.Scan(&member.Id, &member.ServerId, &member.UserId, &member.BaseRole, &member.Status, &member.IsMuted, &member.JoinedAt, &member.LeftAt, &member.CreateDatetime, &member.UpdateDatetime, &member.CreateUserId, &member.UpdateUserId)
}

func (repository *ServerRepository) GetMemberByUserId(ctx context.Context, serverId uuid.UUID, userId uuid.UUID) (model.ServerMember, error) {
	query := "SELECT " + memberColumns + " FROM server_members WHERE server_id=$1 AND user_id=$2 AND status=$3 LIMIT 1"

	var member model.ServerMember
	err := scanMember(repository.DB.QueryRow(ctx, query, serverId, userId, model.MemberStatusActive), &member)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member, &model.NotFoundError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "You are not a member of this server",
				Param:   "serverId",
			}
		}
		return member, err
	}

	return member, nil
}

func (repository *ServerRepository) GetMemberById(ctx context.Context, serverId uuid.UUID, memberId uuid.UUID) (model.ServerMember, error) {
	query := "SELECT " + memberColumns + " FROM server_members WHERE server_id=$1 AND id=$2 LIMIT 1"

	var member model.ServerMember
	err := scanMember(repository.DB.QueryRow(ctx, query, serverId, memberId), &member)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member, &model.NotFoundError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Member not found",
				Param:   "memberId",
			}
		}
		return member, err
	}

	return member, nil
}

func (repository *ServerRepository) ListMembers(ctx context.Context, serverId uuid.UUID) ([]model.ServerMember, error) {
	query := "SELECT " + memberColumns + " FROM server_members WHERE server_id=$1 AND status=$2 ORDER BY joined_at ASC"

	rows, err := repository.DB.Query(ctx, query, serverId, model.MemberStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.ServerMember
	for rows.Next() {
		var member model.ServerMember
		err = scanMember(rows, &member)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

func (repository *ServerRepository) CheckServerMember(ctx context.Context, serverId uuid.UUID, userId uuid.UUID) (int, error) {
	query := "SELECT 1 FROM server_members WHERE server_id=$1 AND user_id=$2 AND status=$3 LIMIT 1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, serverId, userId, model.MemberStatusActive).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	return exists, nil
}

func (repository *ServerRepository) UpdateMemberStatus(ctx context.Context, memberId uuid.UUID, status model.Status, updateUserId uuid.UUID) error {
	now := time.Now().UTC()
	query := "UPDATE server_members SET status=$1,left_at=$2,update_datetime=$3,update_user_id=$4 WHERE id=$5"

	var leftAt *time.Time
	if status != model.MemberStatusActive {
		leftAt = &now
	}

	_, err := repository.DB.Exec(ctx, query, status, leftAt, now, updateUserId, memberId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ServerRepository) SetMemberMuted(ctx context.Context, memberId uuid.UUID, muted bool, updateUserId uuid.UUID) error {
	query := "UPDATE server_members SET is_muted=$1,update_datetime=$2,update_user_id=$3 WHERE id=$4"

	_, err := repository.DB.Exec(ctx, query, muted, time.Now().UTC(), updateUserId, memberId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ServerRepository) GetUserServers(ctx context.Context, userId uuid.UUID) ([]model.Server, error) {
	query := `SELECT A.id,A.owner_id,A.name,A.short_name,A.description,A.settings,A.create_datetime,A.update_datetime,A.create_user_id,A.update_user_id
			FROM servers A
			JOIN server_members B ON A.id = B.server_id
			WHERE B.user_id=$1 AND B.status=$2`

	rows, err := repository.DB.Query(ctx, query, userId, model.MemberStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var servers []model.Server
	for rows.Next() {
		var server model.Server
		err = rows.Scan(&server.Id, &server.OwnerId, &server.Name, &server.ShortName, &server.Description, &server.Settings, &server.CreateDatetime, &server.UpdateDatetime, &server.CreateUserId, &server.UpdateUserId)
		if err != nil {
			return nil, err
		}
		servers = append(servers, server)
	}

	return servers, rows.Err()
}

// Invites

func (repository *ServerRepository) CreateServerInvites(ctx context.Context, serverInvites model.ServerInvites) error {
	query := "INSERT INTO server_invites (id,server_id,code,max_uses,used_count,expires_datetime,is_active,create_datetime,update_datetime,create_user_id,update_user_id) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)"

	_, err := repository.DB.Exec(ctx, query, serverInvites.Id, serverInvites.ServerId, serverInvites.Code, serverInvites.MaxUses, serverInvites.UsedCount, serverInvites.ExpiresDatetime, serverInvites.IsActive, serverInvites.CreateDatetime, serverInvites.UpdateDatetime, serverInvites.CreateUserId, serverInvites.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ServerRepository) CheckInviteCodes(ctx context.Context, inviteCode string) (int, error) {
	query := "SELECT 1 FROM server_invites WHERE code=$1 LIMIT 1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, inviteCode).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	return exists, nil
}

func (repository *ServerRepository) CheckInviteCodesAndRetrieveServerId(ctx context.Context, inviteCode string) (uuid.UUID, error) {
	query := `UPDATE server_invites
			SET used_count = used_count + 1, update_datetime = $1
			WHERE code=$2 AND is_active=true AND expires_datetime > $1 AND used_count < max_uses
			RETURNING server_id`

	var serverId uuid.UUID
	err := repository.DB.QueryRow(ctx, query, time.Now().UTC(), inviteCode).Scan(&serverId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}

	return serverId, nil
}

// Channels

const channelColumns = "id,server_id,name,type,position,create_datetime,update_datetime,create_user_id,update_user_id"

func scanChannel(row pgx.Row, channel *model.Channel) error {
	return row.Scan(&channel.Id, &channel.ServerId, &channel.Name, &channel.Type, &channel.Position, &channel.CreateDatetime, &channel.UpdateDatetime, &channel.CreateUserId, &channel.UpdateUserId)
}

func (repository *ServerRepository) CreateChannel(ctx context.Context, channel model.Channel) error {
	query := "INSERT INTO channels (id,server_id,name,type,position,create_datetime,update_datetime,create_user_id,update_user_id) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)"

	_, err := repository.DB.Exec(ctx, query, channel.Id, channel.ServerId, channel.Name, channel.Type, channel.Position, channel.CreateDatetime, channel.UpdateDatetime, channel.CreateUserId, channel.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ServerRepository) GetChannelById(ctx context.Context, serverId uuid.UUID, channelId uuid.UUID) (model.Channel, error) {
	query := "SELECT " + channelColumns + " FROM channels WHERE id=$1 AND server_id=$2 LIMIT 1"

	var channel model.Channel
	err := scanChannel(repository.DB.QueryRow(ctx, query, channelId, serverId), &channel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return channel, &model.NotFoundError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Channel not found",
				Param:   "channelId",
			}
		}
		return channel, err
	}

	return channel, nil
}

// GetChannelServer resolves a channel's owning server. The voice gateway uses
// it to map a room id onto a server before loading participant profiles.
func (repository *ServerRepository) GetChannelServer(ctx context.Context, channelId uuid.UUID) (uuid.UUID, error) {
	query := "SELECT server_id FROM channels WHERE id=$1 LIMIT 1"

	var serverId uuid.UUID
	err := repository.DB.QueryRow(ctx, query, channelId).Scan(&serverId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, &model.NotFoundError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Channel not found",
				Param:   "channelId",
			}
		}
		return uuid.Nil, err
	}

	return serverId, nil
}

func (repository *ServerRepository) ListChannels(ctx context.Context, serverId uuid.UUID) ([]model.Channel, error) {
	query := "SELECT " + channelColumns + " FROM channels WHERE server_id=$1 ORDER BY position ASC"

	rows, err := repository.DB.Query(ctx, query, serverId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.Channel
	for rows.Next() {
		var channel model.Channel
		err = scanChannel(rows, &channel)
		if err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}

	return channels, rows.Err()
}

func (repository *ServerRepository) UpdateChannel(ctx context.Context, channel model.Channel) error {
	query := "UPDATE channels SET name=$1,position=$2,update_datetime=$3,update_user_id=$4 WHERE id=$5 AND server_id=$6"

	_, err := repository.DB.Exec(ctx, query, channel.Name, channel.Position, channel.UpdateDatetime, channel.UpdateUserId, channel.Id, channel.ServerId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ServerRepository) DeleteChannel(ctx context.Context, channelId uuid.UUID) error {
	query := "DELETE FROM channels WHERE id=$1"

	_, err := repository.DB.Exec(ctx, query, channelId)
	if err != nil {
		return err
	}

	return nil
}
