package repository

import (
	"context"
	"errors"

	"github.com/concord-chat/concord/internal/constant"
	"github.com/concord-chat/concord/internal/model"
	"github.com/google/uuid"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RoleRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewRoleRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *RoleRepository {
	return &RoleRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

// Permissions live in a BIGINT column. scanPermissions coerces the persisted
// value back into the unsigned bitmask type at the boundary.
func scanRole(row pgx.Row, role *model.Role) error {
	var rawPermissions int64
	err := row.Scan(&role.Id, &role.ServerId, &role.Name, &role.Color, &rawPermissions, &role.Position, &role.IsHoisted, &role.IsMentionable, &role.CreateDatetime, &role.UpdateDatetime, &role.CreateUserId, &role.UpdateUserId)
	if err != nil {
		return err
	}

	role.Permissions = model.Permission(uint64(rawPermissions))
	return nil
}

const roleColumns = "id,server_id,name,color,permissions,position,is_hoisted,is_mentionable,create_datetime,update_datetime,create_user_id,update_user_id"

func (repository *RoleRepository) GetServerRoles(ctx context.Context, serverId uuid.UUID) ([]model.Role, error) {
	query := "SELECT " + roleColumns + " FROM roles WHERE server_id=$1 ORDER BY position DESC"

	rows, err := repository.DB.Query(ctx, query, serverId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var role model.Role
		err = scanRole(rows, &role)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	return roles, rows.Err()
}

func (repository *RoleRepository) GetRoleById(ctx context.Context, serverId uuid.UUID, roleId uuid.UUID) (model.Role, error) {
	query := "SELECT " + roleColumns + " FROM roles WHERE id=$1 AND server_id=$2 LIMIT 1"

	var role model.Role
	err := scanRole(repository.DB.QueryRow(ctx, query, roleId, serverId), &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return role, &model.NotFoundError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Role not found",
				Param:   "roleId",
			}
		}
		return role, err
	}

	return role, nil
}

func (repository *RoleRepository) GetEveryoneRole(ctx context.Context, serverId uuid.UUID) (model.Role, error) {
	query := "SELECT " + roleColumns + " FROM roles WHERE server_id=$1 AND name=$2 LIMIT 1"

	var role model.Role
	err := scanRole(repository.DB.QueryRow(ctx, query, serverId, model.EveryoneRoleName), &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return role, &model.NotFoundError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Baseline role not found for server",
				Param:   "serverId",
			}
		}
		return role, err
	}

	return role, nil
}

func (repository *RoleRepository) GetMemberRoles(ctx context.Context, memberId uuid.UUID) ([]model.Role, error) {
	query := `SELECT A.id,A.server_id,A.name,A.color,A.permissions,A.position,A.is_hoisted,A.is_mentionable,A.create_datetime,A.update_datetime,A.create_user_id,A.update_user_id
			FROM roles A
			JOIN member_roles B ON A.id = B.role_id
			WHERE B.member_id=$1`

	rows, err := repository.DB.Query(ctx, query, memberId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var role model.Role
		err = scanRole(rows, &role)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}

	return roles, rows.Err()
}

func (repository *RoleRepository) CreateRole(ctx context.Context, tx pgx.Tx, role model.Role) error {
	query := "INSERT INTO roles (id,server_id,name,color,permissions,position,is_hoisted,is_mentionable,create_datetime,update_datetime,create_user_id,update_user_id) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)"

	_, err := tx.Exec(ctx, query, role.Id, role.ServerId, role.Name, role.Color, int64(role.Permissions), role.Position, role.IsHoisted, role.IsMentionable, role.CreateDatetime, role.UpdateDatetime, role.CreateUserId, role.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *RoleRepository) CreateRoleNoTx(ctx context.Context, role model.Role) error {
	query := "INSERT INTO roles (id,server_id,name,color,permissions,position,is_hoisted,is_mentionable,create_datetime,update_datetime,create_user_id,update_user_id) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)"

	_, err := repository.DB.Exec(ctx, query, role.Id, role.ServerId, role.Name, role.Color, int64(role.Permissions), role.Position, role.IsHoisted, role.IsMentionable, role.CreateDatetime, role.UpdateDatetime, role.CreateUserId, role.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *RoleRepository) UpdateRole(ctx context.Context, role model.Role) error {
	query := "UPDATE roles SET name=$1,color=$2,permissions=$3,position=$4,is_hoisted=$5,is_mentionable=$6,update_datetime=$7,update_user_id=$8 WHERE id=$9 AND server_id=$10"

	_, err := repository.DB.Exec(ctx, query, role.Name, role.Color, int64(role.Permissions), role.Position, role.IsHoisted, role.IsMentionable, role.UpdateDatetime, role.UpdateUserId, role.Id, role.ServerId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *RoleRepository) DeleteRole(ctx context.Context, roleId uuid.UUID) error {
	query := "DELETE FROM roles WHERE id=$1"

	_, err := repository.DB.Exec(ctx, query, roleId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *RoleRepository) AssignRole(ctx context.Context, memberRole model.MemberRole) error {
	query := "INSERT INTO member_roles (id,member_id,role_id,create_datetime,create_user_id) VALUES ($1,$2,$3,$4,$5)"

	_, err := repository.DB.Exec(ctx, query, memberRole.Id, memberRole.MemberId, memberRole.RoleId, memberRole.CreateDatetime, memberRole.CreateUserId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *RoleRepository) AssignRoleTx(ctx context.Context, tx pgx.Tx, memberRole model.MemberRole) error {
	query := "INSERT INTO member_roles (id,member_id,role_id,create_datetime,create_user_id) VALUES ($1,$2,$3,$4,$5)"

	_, err := tx.Exec(ctx, query, memberRole.Id, memberRole.MemberId, memberRole.RoleId, memberRole.CreateDatetime, memberRole.CreateUserId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *RoleRepository) CheckMemberRole(ctx context.Context, memberId uuid.UUID, roleId uuid.UUID) (int, error) {
	query := "SELECT 1 FROM member_roles WHERE member_id=$1 AND role_id=$2 LIMIT 1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, memberId, roleId).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	return exists, nil
}

func (repository *RoleRepository) UnassignRole(ctx context.Context, memberId uuid.UUID, roleId uuid.UUID) (int64, error) {
	query := "DELETE FROM member_roles WHERE member_id=$1 AND role_id=$2"

	tag, err := repository.DB.Exec(ctx, query, memberId, roleId)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
