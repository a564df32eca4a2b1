package model

import (
	"time"

	"github.com/google/uuid"
)

type Status int16

const (
	MemberStatusActive Status = 1
	MemberStatusLeft   Status = 2
	MemberStatusBanned Status = 3
)

// BaseRole is the legacy scalar rank kept on the membership row. Bitmask
// roles drive almost every decision; BaseRole survives for bootstrap and
// ownership checks only.
type BaseRole string

const (
	BaseRoleMember    BaseRole = "member"
	BaseRoleModerator BaseRole = "moderator"
	BaseRoleAdmin     BaseRole = "admin"
	BaseRoleOwner     BaseRole = "owner"
)

type ServerMember struct {
	Id             uuid.UUID
	ServerId       uuid.UUID
	UserId         uuid.UUID
	BaseRole       BaseRole
	Status         Status
	IsMuted        bool
	JoinedAt       time.Time
	LeftAt         *time.Time
	CreateDatetime time.Time
	UpdateDatetime time.Time
	CreateUserId   uuid.UUID
	UpdateUserId   uuid.UUID
}

type ServerMemberResponse struct {
	Id       uuid.UUID `json:"id"`
	ServerId uuid.UUID `json:"serverId"`
	UserId   uuid.UUID `json:"userId"`
	BaseRole BaseRole  `json:"baseRole"`
	Status   Status    `json:"status"`
	IsMuted  bool      `json:"isMuted"`
	JoinedAt time.Time `json:"joinedAt"`
}

func (member ServerMember) ToResponse() ServerMemberResponse {
	return ServerMemberResponse{
		Id:       member.Id,
		ServerId: member.ServerId,
		UserId:   member.UserId,
		BaseRole: member.BaseRole,
		Status:   member.Status,
		IsMuted:  member.IsMuted,
		JoinedAt: member.JoinedAt,
	}
}

// MemberAuthority is the derived authorization view of a member: the union of
// the @everyone role and every assigned role. It is recomputed on every check
// and never cached across requests.
type MemberAuthority struct {
	Member          ServerMember
	IsOwner         bool
	Effective       Permission
	MaxRolePosition int
}
