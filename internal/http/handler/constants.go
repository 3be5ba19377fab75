package handler

const (
	jsonKeyError   = "error"
	jsonKeyMessage = "message"

	paramDepartment = "department"
)

const (
	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgInvalidCredentials      = "Invalid credentials"
	msgInvalidCredentialsRole  = "Invalid credentials or selected role"
	msgInvalidManagerRole      = "role must be one of manager:sales, manager:finance, manager:marketing"
	msgEmailAlreadyExists      = "Email already registered"
	msgPasswordProcessFail     = "failed to process password"
	msgIssueTokenFail          = "failed to issue session"
	msgLoggedOut               = "Logged out"
	msgStoreUnavailable        = "service temporarily unavailable"
)
