package model

import (
	"time"

	"github.com/google/uuid"
)

// EveryoneRoleName is the implicit baseline role every server carries at
// position 0. It can never be deleted.
const EveryoneRoleName = "@everyone"

type Role struct {
	Id             uuid.UUID
	ServerId       uuid.UUID
	Name           string
	Color          string
	Permissions    Permission
	Position       int
	IsHoisted      bool
	IsMentionable  bool
	CreateDatetime time.Time
	UpdateDatetime time.Time
	CreateUserId   uuid.UUID
	UpdateUserId   uuid.UUID
}

type MemberRole struct {
	Id             uuid.UUID
	MemberId       uuid.UUID
	RoleId         uuid.UUID
	CreateDatetime time.Time
	CreateUserId   uuid.UUID
}

type RoleCreateRequest struct {
	Name          string  `json:"name"`
	Color         string  `json:"color"`
	Permissions   *string `json:"permissions"`
	Position      int     `json:"position"`
	IsHoisted     bool    `json:"isHoisted"`
	IsMentionable bool    `json:"isMentionable"`
}

// RoleUpdateRequest uses pointers so PATCH can tell "absent" from zero
// values; the position guard only runs when position is supplied.
type RoleUpdateRequest struct {
	Name          *string `json:"name"`
	Color         *string `json:"color"`
	Permissions   *string `json:"permissions"`
	Position      *int    `json:"position"`
	IsHoisted     *bool   `json:"isHoisted"`
	IsMentionable *bool   `json:"isMentionable"`
}

type RoleResponse struct {
	Id            uuid.UUID `json:"id"`
	ServerId      uuid.UUID `json:"serverId"`
	Name          string    `json:"name"`
	Color         string    `json:"color"`
	Permissions   string    `json:"permissions"`
	Position      int       `json:"position"`
	IsHoisted     bool      `json:"isHoisted"`
	IsMentionable bool      `json:"isMentionable"`
}

func (role Role) ToResponse() RoleResponse {
	return RoleResponse{
		Id:            role.Id,
		ServerId:      role.ServerId,
		Name:          role.Name,
		Color:         role.Color,
		Permissions:   role.Permissions.String(),
		Position:      role.Position,
		IsHoisted:     role.IsHoisted,
		IsMentionable: role.IsMentionable,
	}
}

// DefaultRoleTier describes one of the role tiers seeded at server creation.
type DefaultRoleTier struct {
	Name        string
	Color       string
	Permissions Permission
	Position    int
	IsHoisted   bool
}

const baselinePermissions = PermissionViewChannel |
	PermissionSendMessages |
	PermissionConnect |
	PermissionSpeak |
	PermissionReadMessageHistory |
	PermissionAddReactions

// DefaultRoleTiers returns the tiers created for every new server, ascending
// by position with widening bitmasks.
func DefaultRoleTiers() []DefaultRoleTier {
	return []DefaultRoleTier{
		{
			Name:        EveryoneRoleName,
			Color:       "#99AAB5",
			Permissions: baselinePermissions,
			Position:    0,
		},
		{
			Name:        "Member",
			Color:       "#57F287",
			Permissions: baselinePermissions | PermissionChangeNickname,
			Position:    1,
		},
		{
			Name:  "Moderator",
			Color: "#5865F2",
			Permissions: baselinePermissions |
				PermissionChangeNickname |
				PermissionManageMessages |
				PermissionKickMembers |
				PermissionBanMembers |
				PermissionMuteMembers |
				PermissionDeafenMembers |
				PermissionMoveMembers,
			Position:  2,
			IsHoisted: true,
		},
		{
			Name:  "Admin",
			Color: "#E67E22",
			Permissions: PermissionAdministrator |
				PermissionManageGuild |
				PermissionManageChannels |
				PermissionManageRoles |
				PermissionViewAuditLog,
			Position:  3,
			IsHoisted: true,
		},
		{
			Name:        "Owner",
			Color:       "#F1C40F",
			Permissions: PermissionAdministrator,
			Position:    4,
			IsHoisted:   true,
		},
	}
}
