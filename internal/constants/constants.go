package constants

// Context and session keys
const (
	ContextKeyUserID      = "user_id"
	ContextKeyCurrentUser = "current_user"
	ContextKeyTask        = "task"
	SessionCookieName     = "task_session"
)

// Routes the client is redirected to by role
const (
	RouteLogin        = "/login"
	RouteAdminHome    = "/admin"
	RouteEmployeeHome = "/employee"
)

// Validation limits
const (
	MinPasswordLength = 6
	MaxNoteLength     = 5000
	MaxTitleLength    = 255
	MaxChatMessage    = 4000
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Chat completion defaults
const (
	DefaultChatModel     = "gpt-3.5-turbo"
	ChatMaxTokens        = 500
	ChatTemperature      = 0.7
	OpenAIKeyPlaceholder = "your-openai-api-key-here"
)
