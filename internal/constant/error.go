package constant

const (
	ERR_VALIDATION_CODE                 = "VALIDATION_ERROR"
	ERR_INVALID_REQUEST_BODY_ERROR_CODE = "INVALID_REQUEST_BODY_ERROR"
	ERR_INTERNAL_SERVER_ERROR_CODE      = "INTERNAL_SERVER_ERROR"
	ERR_INTENRAL_SERVER_ERROR_MESSAGE   = "Something went wrong. If the problem persists, please contact support"
	ERR_INVALID_REQUEST_BODY_MESSAGE    = "The request is invalid or malformed"
	ERR_NOT_FOUND_ERROR                 = "NOT_FOUND_ERROR"
	ERR_UNATHORIZED_ERROR               = "UNAUTHORIEZED_ERROR"
	ERR_FORBIDDEN_ERROR                 = "FORBIDDEN_ERROR"
)

// Deny reasons carried by AuthorizationError so callers can distinguish a
// plain capability miss from a hierarchy violation.
const (
	DENY_INSUFFICIENT_PERMISSION = "insufficient_permission"
	DENY_ROLE_OUTRANKS_ACTOR     = "role_outranks_actor"
	DENY_POSITION_ABOVE_ACTOR    = "position_above_actor"
	DENY_EVERYONE_IMMUTABLE      = "everyone_role_protected"
	DENY_MEMBER_OUTRANKS_ACTOR   = "member_outranks_actor"
)
