package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrUnauthorized     = fmt.Errorf("session invalid")
	ErrSessionExpired   = fmt.Errorf("session expired, please log in again")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrRegisterFailed   = fmt.Errorf("registration failed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRoomNotFound       = fmt.Errorf("room not found")

	// Storage errors
	ErrNotFound = fmt.Errorf("record not found")

	// Room lifecycle errors
	ErrAlreadyInRoom         = fmt.Errorf("already in another room")
	ErrLeaveCurrentRoomFirst = fmt.Errorf("leave your current room before joining another")
	ErrSwitchDeclined        = fmt.Errorf("room switch cancelled")
	ErrNotConfirmed          = fmt.Errorf("action not confirmed")
	ErrNotJoined             = fmt.Errorf("room has not been joined")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
