package httputil

// Machine-readable error codes. Clients should branch on these rather than
// on the human-readable message.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInternalError      = "internal_error"
	CodeStoreUnavailable   = "store_unavailable"

	CodeMissingAuth       = "missing_auth"
	CodeInvalidAuthHeader = "invalid_auth_header"
	CodeInvalidToken      = "invalid_token"
	CodeTokenExpired      = "token_expired"
	CodeTooManyRequests   = "too_many_requests"

	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailNotVerified   = "email_not_verified"
	CodeDuplicateUser      = "duplicate_user"
	CodeUserNotFound       = "user_not_found"
	CodeValidation         = "validation_error"
	CodeVerificationFailed = "verification_failed"

	CodeTripNotFound       = "trip_not_found"
	CodeExpenseNotFound    = "expense_not_found"
	CodeUnauthorizedAction = "unauthorized_action"
)
