package handlers

const (
	ErrInvalidBody         = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrInternalServerError = "Internal server error"
	ErrTooManyRequests     = "Too many requests"
	ErrInvalidLevelParam   = "Invalid level"
	ErrInvalidUserID       = "Invalid user id"
	ErrAudioUnavailable    = "Audio unavailable"
	ErrOAuthNotConfigured  = "OAuth provider not configured"
)
