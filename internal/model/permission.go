package model

import (
	"strconv"

	"github.com/concord-chat/concord/internal/constant"
)

// Permission is a 64-bit capability bitmask. Each named capability occupies a
// single bit; a role's permission value is the union of its capabilities.
// Values must never pass through a float representation, so permissions cross
// the JSON and database boundaries as decimal strings.
type Permission uint64

const (
	PermissionCreateInstantInvite Permission = 1 << 0
	PermissionKickMembers         Permission = 1 << 1
	PermissionBanMembers          Permission = 1 << 2
	PermissionAdministrator       Permission = 1 << 3
	PermissionManageChannels      Permission = 1 << 4
	PermissionManageGuild         Permission = 1 << 5
	PermissionAddReactions        Permission = 1 << 6
	PermissionViewAuditLog        Permission = 1 << 7
	PermissionViewChannel         Permission = 1 << 10
	PermissionSendMessages        Permission = 1 << 11
	PermissionManageMessages      Permission = 1 << 13
	PermissionReadMessageHistory  Permission = 1 << 16
	PermissionConnect             Permission = 1 << 20
	PermissionSpeak               Permission = 1 << 21
	PermissionMuteMembers         Permission = 1 << 22
	PermissionDeafenMembers       Permission = 1 << 23
	PermissionMoveMembers         Permission = 1 << 24
	PermissionChangeNickname      Permission = 1 << 26
	PermissionManageNicknames     Permission = 1 << 27
	PermissionManageRoles         Permission = 1 << 28
)

var permissionNames = map[Permission]string{
	PermissionCreateInstantInvite: "CREATE_INSTANT_INVITE",
	PermissionKickMembers:         "KICK_MEMBERS",
	PermissionBanMembers:          "BAN_MEMBERS",
	PermissionAdministrator:       "ADMINISTRATOR",
	PermissionManageChannels:      "MANAGE_CHANNELS",
	PermissionManageGuild:         "MANAGE_GUILD",
	PermissionAddReactions:        "ADD_REACTIONS",
	PermissionViewAuditLog:        "VIEW_AUDIT_LOG",
	PermissionViewChannel:         "VIEW_CHANNEL",
	PermissionSendMessages:        "SEND_MESSAGES",
	PermissionManageMessages:      "MANAGE_MESSAGES",
	PermissionReadMessageHistory:  "READ_MESSAGE_HISTORY",
	PermissionConnect:             "CONNECT",
	PermissionSpeak:               "SPEAK",
	PermissionMuteMembers:         "MUTE_MEMBERS",
	PermissionDeafenMembers:       "DEAFEN_MEMBERS",
	PermissionMoveMembers:         "MOVE_MEMBERS",
	PermissionChangeNickname:      "CHANGE_NICKNAME",
	PermissionManageNicknames:     "MANAGE_NICKNAMES",
	PermissionManageRoles:         "MANAGE_ROLES",
}

var allPermissions = []Permission{
	PermissionCreateInstantInvite,
	PermissionKickMembers,
	PermissionBanMembers,
	PermissionAdministrator,
	PermissionManageChannels,
	PermissionManageGuild,
	PermissionAddReactions,
	PermissionViewAuditLog,
	PermissionViewChannel,
	PermissionSendMessages,
	PermissionManageMessages,
	PermissionReadMessageHistory,
	PermissionConnect,
	PermissionSpeak,
	PermissionMuteMembers,
	PermissionDeafenMembers,
	PermissionMoveMembers,
	PermissionChangeNickname,
	PermissionManageNicknames,
	PermissionManageRoles,
}

// Combine returns the union of the two permission sets.
func (p Permission) Combine(other Permission) Permission {
	return p | other
}

// Has reports whether every bit of flag is set in p.
func (p Permission) Has(flag Permission) bool {
	return p&flag == flag
}

// HasAny reports whether at least one bit of flags is set in p.
func (p Permission) HasAny(flags Permission) bool {
	return p&flags != 0
}

// HasAll reports whether all bits of flags are set in p.
func (p Permission) HasAll(flags Permission) bool {
	return p&flags == flags
}

// Names returns the capability names set in p, in bit order.
func (p Permission) Names() []string {
	names := make([]string, 0, len(allPermissions))
	for _, flag := range allPermissions {
		if p.Has(flag) {
			names = append(names, permissionNames[flag])
		}
	}
	return names
}

func (p Permission) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

func (p Permission) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

func (p *Permission) UnmarshalJSON(data []byte) error {
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		// Bare numbers are accepted for small, float-safe values.
		raw = string(data)
	}

	parsed, err := ParsePermission(raw)
	if err != nil {
		return err
	}

	*p = parsed
	return nil
}

// ParsePermission converts a persisted decimal string into a Permission.
func ParsePermission(raw string) (Permission, error) {
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, &ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Permissions must be a non-negative integer bitmask",
			Param:   "permissions",
		}
	}

	return Permission(value), nil
}
