package apperror

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrUnknownAction    = errors.New("unknown action")
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrSessionIDMissing = errors.New("session id is required")
)
