package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderUserAgent     = "User-Agent"

	// Content Types
	ContentTypeJSON = "application/json"

	// Context keys
	ContextKeyAdminID   = "admin_id"
	ContextKeyRequestID = "request_id"

	// Database table names
	TableLicenses         = "licenses"
	TableLicenseDomains   = "license_domains"
	TableVerificationLogs = "license_verification_logs"

	// Verification log retention bounds for the admin cleanup operation
	MinRetentionDays = 1
	MaxRetentionDays = 365

	// Upper bound for recent-attempt listings
	MaxRecentAttempts = 1000

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgResourceNotFound    = "Resource not found"
	ErrMsgUnauthorized        = "Unauthorized access"
	ErrMsgValidationFailed    = "Validation failed"
	ErrMsgConflict            = "Resource already exists"
	ErrMsgTryAgain            = "A temporary error occurred, please try again"
)
