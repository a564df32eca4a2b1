package usecase

import (
	"github.com/concord-chat/concord/internal/constant"
	"github.com/concord-chat/concord/internal/model"

	"go.uber.org/zap"
)

// IsOwner is the single ownership predicate. Ownership is recorded both on
// the membership row (BaseRole) and on the server (OwnerId); either one
// grants owner status. Which field wins when they disagree is deliberately
// unresolved, so this checks both.
func IsOwner(member model.ServerMember, server model.Server) bool {
	return member.BaseRole == model.BaseRoleOwner || server.OwnerId == member.UserId
}

// EffectiveAuthority derives a member's permission view from the server's
// @everyone role and the member's assigned roles: permissions are OR-ed
// together and the max role position uses @everyone's position as the floor.
// Role definitions and assignments change concurrently with requests, so this
// is recomputed on every check rather than cached.
func EffectiveAuthority(member model.ServerMember, server model.Server, everyone model.Role, assigned []model.Role) model.MemberAuthority {
	effective := everyone.Permissions
	maxPosition := everyone.Position

	for _, role := range assigned {
		effective = effective.Combine(role.Permissions)
		if role.Position > maxPosition {
			maxPosition = role.Position
		}
	}

	return model.MemberAuthority{
		Member:          member,
		IsOwner:         IsOwner(member, server),
		Effective:       effective,
		MaxRolePosition: maxPosition,
	}
}

// Authorizer makes grant/deny decisions from a derived MemberAuthority. It is
// stateless and safe for concurrent use; denials come back as
// *model.AuthorizationError, never as faults.
type Authorizer struct {
	Log *zap.Logger
}

func NewAuthorizer(zap *zap.Logger) *Authorizer {
	return &Authorizer{Log: zap}
}

// Authorize grants when the actor is an owner, holds ADMINISTRATOR, or holds
// the required capability itself.
func (authorizer *Authorizer) Authorize(authority model.MemberAuthority, required model.Permission) error {
	if authority.IsOwner {
		return nil
	}

	if authority.Effective.Has(model.PermissionAdministrator) || authority.Effective.Has(required) {
		return nil
	}

	authorizer.Log.Debug("capability denied",
		zap.String("userId", authority.Member.UserId.String()),
		zap.String("serverId", authority.Member.ServerId.String()),
		zap.Strings("required", required.Names()))

	return &model.AuthorizationError{
		Code:    constant.ERR_FORBIDDEN_ERROR,
		Message: "You do not have permission to perform this action",
		Reason:  constant.DENY_INSUFFICIENT_PERMISSION,
	}
}

// AuthorizeRoleMutation guards edits, deletions and assignments of an
// existing role: non-owners may only touch roles strictly below their own
// highest position.
func (authorizer *Authorizer) AuthorizeRoleMutation(authority model.MemberAuthority, target model.Role) error {
	if authority.IsOwner {
		return nil
	}

	if target.Position >= authority.MaxRolePosition {
		return &model.AuthorizationError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "You cannot manage a role that is higher than or equal to your current role",
			Reason:  constant.DENY_ROLE_OUTRANKS_ACTOR,
		}
	}

	return nil
}

// AuthorizeRolePosition guards the new position a role is being moved or
// created at. Owners bypass the check.
func (authorizer *Authorizer) AuthorizeRolePosition(authority model.MemberAuthority, newPosition int) error {
	if authority.IsOwner {
		return nil
	}

	if newPosition >= authority.MaxRolePosition {
		return &model.AuthorizationError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "You cannot move a role to a position higher than or equal to your current role",
			Reason:  constant.DENY_POSITION_ABOVE_ACTOR,
		}
	}

	return nil
}

// AuthorizeRoleDeletion applies the mutation guard and additionally protects
// the @everyone role, which nobody may delete, owners included.
func (authorizer *Authorizer) AuthorizeRoleDeletion(authority model.MemberAuthority, target model.Role) error {
	if target.Name == model.EveryoneRoleName {
		return &model.AuthorizationError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "The @everyone role cannot be deleted",
			Reason:  constant.DENY_EVERYONE_IMMUTABLE,
		}
	}

	return authorizer.AuthorizeRoleMutation(authority, target)
}

// AuthorizeMemberAction guards moderation of another member (kick, ban):
// non-owners may only act on members whose highest role sits strictly below
// their own.
func (authorizer *Authorizer) AuthorizeMemberAction(actor model.MemberAuthority, target model.MemberAuthority) error {
	if actor.IsOwner {
		return nil
	}

	if target.IsOwner || target.MaxRolePosition >= actor.MaxRolePosition {
		return &model.AuthorizationError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "You cannot moderate a member whose role is higher than or equal to yours",
			Reason:  constant.DENY_MEMBER_OUTRANKS_ACTOR,
		}
	}

	return nil
}
