package auth

const (
	ContextKeyPrincipal = "principal"
	ContextKeyScheme    = "auth_scheme"

	jsonKeyError = "error"

	headerAuthorization = "Authorization"

	bearerScheme    = "bearer"
	authHeaderParts = 2

	CookieAdmin = "token"
	CookieUser  = "user-token"

	managerCookiePrefix = "manager-"
	managerCookieSuffix = "-token"

	loginErrorParam = "error"
	loginErrorValue = "login-first"

	cookiePath = "/"
)

const (
	msgAuthenticationRequired  = "Authentication required"
	msgForbidden               = "Forbidden"
	msgUnknownDepartment       = "Unknown department"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgMissingSubject          = "token subject is empty"
	msgRoleNotIssuable         = "role %q cannot be issued by the %s scheme"
	msgUnknownScheme           = "unknown scheme %q"
	msgPrincipalMissing        = "principal not found in context"
)
