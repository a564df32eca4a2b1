package model

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionCombineAndHas(t *testing.T) {
	moderation := PermissionKickMembers.Combine(PermissionBanMembers).Combine(PermissionMuteMembers)

	assert.True(t, moderation.Has(PermissionKickMembers))
	assert.True(t, moderation.Has(PermissionBanMembers))
	assert.False(t, moderation.Has(PermissionAdministrator))
	assert.True(t, moderation.HasAll(PermissionKickMembers|PermissionBanMembers))
	assert.False(t, moderation.HasAll(PermissionKickMembers|PermissionManageRoles))
	assert.True(t, moderation.HasAny(PermissionManageRoles|PermissionMuteMembers))
	assert.False(t, moderation.HasAny(PermissionManageRoles|PermissionManageChannels))
}

func TestPermissionHasIsSubsetCheck(t *testing.T) {
	// Has with a multi-bit flag requires every bit, not just one.
	p := PermissionKickMembers
	assert.False(t, p.Has(PermissionKickMembers|PermissionBanMembers))

	var none Permission
	assert.True(t, p.Has(none), "zero mask is a subset of everything")
	assert.False(t, none.HasAny(PermissionKickMembers))
}

func TestPermissionNames(t *testing.T) {
	p := PermissionBanMembers | PermissionKickMembers
	assert.Equal(t, []string{"KICK_MEMBERS", "BAN_MEMBERS"}, p.Names())

	var none Permission
	assert.Empty(t, none.Names())
}

func TestPermissionJSONRoundTrip(t *testing.T) {
	// Values above 2^53 are not float-safe, which is why the JSON form is a
	// decimal string.
	p := Permission(1) << 62

	data, err := sonic.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `"4611686018427387904"`, string(data))

	var decoded Permission
	require.NoError(t, sonic.Unmarshal(data, &decoded))
	assert.Equal(t, p, decoded)
}

func TestPermissionUnmarshalBareNumber(t *testing.T) {
	var p Permission
	require.NoError(t, sonic.Unmarshal([]byte(`268435456`), &p))
	assert.Equal(t, PermissionManageRoles, p)
}

func TestParsePermission(t *testing.T) {
	p, err := ParsePermission("6")
	require.NoError(t, err)
	assert.Equal(t, PermissionKickMembers|PermissionBanMembers, p)

	p, err = ParsePermission("")
	require.NoError(t, err)
	assert.Equal(t, Permission(0), p)

	_, err = ParsePermission("-1")
	require.Error(t, err)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = ParsePermission("not-a-number")
	assert.Error(t, err)
}

func TestDefaultRoleTiersWiden(t *testing.T) {
	tiers := DefaultRoleTiers()
	require.Len(t, tiers, 5)

	assert.Equal(t, EveryoneRoleName, tiers[0].Name)
	assert.Equal(t, 0, tiers[0].Position)

	for i := 1; i < len(tiers); i++ {
		assert.Equal(t, i, tiers[i].Position, "positions ascend one per tier")
	}

	// Member and Moderator widen the baseline set.
	everyone := tiers[0].Permissions
	assert.True(t, tiers[1].Permissions.HasAll(everyone))
	assert.True(t, tiers[2].Permissions.HasAll(tiers[1].Permissions))
	assert.True(t, tiers[2].Permissions.Has(PermissionKickMembers))
	assert.False(t, tiers[1].Permissions.Has(PermissionKickMembers))

	// Admin and Owner rely on ADMINISTRATOR implication instead of carrying
	// every bit.
	assert.True(t, tiers[3].Permissions.Has(PermissionAdministrator))
	assert.True(t, tiers[4].Permissions.Has(PermissionAdministrator))
}
