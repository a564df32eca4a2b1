package usecase

import (
	"testing"

	"github.com/concord-chat/concord/internal/constant"
	"github.com/concord-chat/concord/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAuthority(effective model.Permission, maxPosition int) model.MemberAuthority {
	return model.MemberAuthority{
		Member: model.ServerMember{
			Id:       uuid.New(),
			ServerId: uuid.New(),
			UserId:   uuid.New(),
			BaseRole: model.BaseRoleMember,
			Status:   model.MemberStatusActive,
		},
		Effective:       effective,
		MaxRolePosition: maxPosition,
	}
}

func denyReason(t *testing.T, err error) string {
	t.Helper()
	var authorizationErr *model.AuthorizationError
	require.ErrorAs(t, err, &authorizationErr)
	assert.Equal(t, constant.ERR_FORBIDDEN_ERROR, authorizationErr.Code)
	return authorizationErr.Reason
}

func TestIsOwner(t *testing.T) {
	userId := uuid.New()
	server := model.Server{Id: uuid.New(), OwnerId: userId}

	byServer := model.ServerMember{UserId: userId, BaseRole: model.BaseRoleMember}
	assert.True(t, IsOwner(byServer, server))

	byBaseRole := model.ServerMember{UserId: uuid.New(), BaseRole: model.BaseRoleOwner}
	assert.True(t, IsOwner(byBaseRole, server))

	neither := model.ServerMember{UserId: uuid.New(), BaseRole: model.BaseRoleAdmin}
	assert.False(t, IsOwner(neither, server))
}

func TestEffectiveAuthorityCombinesRoles(t *testing.T) {
	member := model.ServerMember{UserId: uuid.New()}
	server := model.Server{OwnerId: uuid.New()}

	everyone := model.Role{
		Name:        model.EveryoneRoleName,
		Permissions: model.PermissionViewChannel | model.PermissionSendMessages,
		Position:    0,
	}
	assigned := []model.Role{
		{Name: "Moderator", Permissions: model.PermissionKickMembers, Position: 2},
		{Name: "DJ", Permissions: model.PermissionSpeak, Position: 1},
	}

	authority := EffectiveAuthority(member, server, everyone, assigned)

	assert.True(t, authority.Effective.HasAll(
		model.PermissionViewChannel|model.PermissionSendMessages|model.PermissionKickMembers|model.PermissionSpeak))
	assert.Equal(t, 2, authority.MaxRolePosition)
	assert.False(t, authority.IsOwner)
}

func TestEffectiveAuthorityEveryoneFloor(t *testing.T) {
	member := model.ServerMember{UserId: uuid.New()}
	server := model.Server{OwnerId: uuid.New()}
	everyone := model.Role{Name: model.EveryoneRoleName, Permissions: model.PermissionViewChannel, Position: 0}

	authority := EffectiveAuthority(member, server, everyone, nil)

	assert.Equal(t, model.PermissionViewChannel, authority.Effective)
	assert.Equal(t, 0, authority.MaxRolePosition)
}

func TestAuthorizeCapability(t *testing.T) {
	authorizer := NewAuthorizer(zap.NewNop())

	holder := testAuthority(model.PermissionKickMembers, 2)
	assert.NoError(t, authorizer.Authorize(holder, model.PermissionKickMembers))

	missing := testAuthority(model.PermissionSendMessages, 2)
	err := authorizer.Authorize(missing, model.PermissionKickMembers)
	assert.Equal(t, constant.DENY_INSUFFICIENT_PERMISSION, denyReason(t, err))
}

func TestAuthorizeAdministratorImpliesEverything(t *testing.T) {
	authorizer := NewAuthorizer(zap.NewNop())
	admin := testAuthority(model.PermissionAdministrator, 3)

	assert.NoError(t, authorizer.Authorize(admin, model.PermissionKickMembers))
	assert.NoError(t, authorizer.Authorize(admin, model.PermissionManageRoles))
	assert.NoError(t, authorizer.Authorize(admin, model.PermissionManageChannels))
}

func TestAuthorizeOwnerBypass(t *testing.T) {
	authorizer := NewAuthorizer(zap.NewNop())

	owner := testAuthority(0, 0)
	owner.IsOwner = true

	assert.NoError(t, authorizer.Authorize(owner, model.PermissionBanMembers))
}

func TestAuthorizeRoleMutationHierarchy(t *testing.T) {
	authorizer := NewAuthorizer(zap.NewNop())
	actor := testAuthority(model.PermissionManageRoles, 2)

	below := model.Role{Name: "Member", Position: 1}
	assert.NoError(t, authorizer.AuthorizeRoleMutation(actor, below))

	equal := model.Role{Name: "Moderator", Position: 2}
	err := authorizer.AuthorizeRoleMutation(actor, equal)
	assert.Equal(t, constant.DENY_ROLE_OUTRANKS_ACTOR, denyReason(t, err))

	above := model.Role{Name: "Admin", Position: 3}
	err = authorizer.AuthorizeRoleMutation(actor, above)
	assert.Equal(t, constant.DENY_ROLE_OUTRANKS_ACTOR, denyReason(t, err))
}

func TestAuthorizeRoleMutationOwnerBypass(t *testing.T) {
	authorizer := NewAuthorizer(zap.NewNop())
	owner := testAuthority(0, 0)
	owner.IsOwner = true

	above := model.Role{Name: "Admin", Position: 10}
	assert.NoError(t, authorizer.AuthorizeRoleMutation(owner, above))
}

func TestAuthorizeRolePosition(t *testing.T) {
	authorizer := NewAuthorizer(zap.NewNop())
	actor := testAuthority(model.PermissionManageRoles, 3)

	assert.NoError(t, authorizer.AuthorizeRolePosition(actor, 2))

	err := authorizer.AuthorizeRolePosition(actor, 3)
	assert.Equal(t, constant.DENY_POSITION_ABOVE_ACTOR, denyReason(t, err))

	err = authorizer.AuthorizeRolePosition(actor, 5)
	assert.Equal(t, constant.DENY_POSITION_ABOVE_ACTOR, denyReason(t, err))
}

func TestAuthorizeRoleDeletionProtectsEveryone(t *testing.T) {
	authorizer := NewAuthorizer(zap.NewNop())

	everyone := model.Role{Name: model.EveryoneRoleName, Position: 0}

	// Even the owner cannot delete @everyone.
	owner := testAuthority(0, 0)
	owner.IsOwner = true
	err := authorizer.AuthorizeRoleDeletion(owner, everyone)
	assert.Equal(t, constant.DENY_EVERYONE_IMMUTABLE, denyReason(t, err))

	actor := testAuthority(model.PermissionManageRoles, 3)
	err = authorizer.AuthorizeRoleDeletion(actor, everyone)
	assert.Equal(t, constant.DENY_EVERYONE_IMMUTABLE, denyReason(t, err))

	regular := model.Role{Name: "Member", Position: 1}
	assert.NoError(t, authorizer.AuthorizeRoleDeletion(actor, regular))
}

func TestAuthorizeMemberAction(t *testing.T) {
	authorizer := NewAuthorizer(zap.NewNop())
	actor := testAuthority(model.PermissionKickMembers, 2)

	lower := testAuthority(0, 1)
	assert.NoError(t, authorizer.AuthorizeMemberAction(actor, lower))

	peer := testAuthority(0, 2)
	err := authorizer.AuthorizeMemberAction(actor, peer)
	assert.Equal(t, constant.DENY_MEMBER_OUTRANKS_ACTOR, denyReason(t, err))

	higher := testAuthority(0, 3)
	err = authorizer.AuthorizeMemberAction(actor, higher)
	assert.Equal(t, constant.DENY_MEMBER_OUTRANKS_ACTOR, denyReason(t, err))

	target := testAuthority(0, 0)
	target.IsOwner = true
	err = authorizer.AuthorizeMemberAction(actor, target)
	assert.Equal(t, constant.DENY_MEMBER_OUTRANKS_ACTOR, denyReason(t, err))
}

func TestAuthorizeMemberActionOwnerBypass(t *testing.T) {
	authorizer := NewAuthorizer(zap.NewNop())

	owner := testAuthority(0, 0)
	owner.IsOwner = true

	higher := testAuthority(model.PermissionAdministrator, 10)
	assert.NoError(t, authorizer.AuthorizeMemberAction(owner, higher))
}
