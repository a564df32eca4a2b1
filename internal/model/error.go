package model

// ValidationError is returned for malformed or out-of-range input. Controllers
// render it as a 400 with the offending parameter name.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthenticationError is returned when the caller's identity token is missing
// or invalid. Controllers render it as a 401.
type AuthenticationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// AuthorizationError is a structured deny decision, never a fault. Reason is
// one of the constant.DENY_* values so clients can tell "insufficient
// permission" apart from "target role outranks actor".
type AuthorizationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// NotFoundError is returned when a server, role, member or room is absent.
type NotFoundError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

func (e *NotFoundError) Error() string {
	return e.Message
}
