package constants

// Pagination limits shared by list endpoints.
const (
	MinPage         = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Chat history uses its own ceiling since clients poll it aggressively.
	DefaultChatPageSize = 50
	MaxChatPageSize     = 200
)

// Context keys set by the auth middleware.
const (
	ContextKeyUserID = "user_id"
	ContextKeyUser   = "current_user"
)

const MinPasswordLength = 8

// OTPLength is the number of digits in a password-reset code.
const OTPLength = 6
