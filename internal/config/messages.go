package config

const (
	envAdminJWTSecret   = "ADMIN_JWT_SECRET"
	envManagerJWTSecret = "MANAGER_JWT_SECRET"
	envUserJWTSecret    = "JWT_SECRET"
)

const (
	errParseEnvironmentFmt     = "failed to parse environment: %w"
	errInvalidConfigurationFmt = "invalid configuration: %w"
	errUnknownEnvironmentFmt   = "APP_ENV %q is not one of production, development, test"
	errPortRequired            = "PORT must be set"
	errDBPasswordRequired      = "DB_PASSWORD must be set when STORE_DRIVER=postgres"
	errMongoURIRequired        = "MONGO_URI must be set when STORE_DRIVER=mongo"
	errUnknownStoreDriverFmt   = "STORE_DRIVER %q is not one of postgres, mongo, memory"
	errRedisAddrRequired       = "REDIS_ADDR must be set when RATE_LIMIT_BACKEND=redis"
	errUnknownRateBackendFmt   = "RATE_LIMIT_BACKEND %q is not one of memory, redis"
	errRegisterLimitInvalid    = "REGISTER_RATE_LIMIT and REGISTER_RATE_WINDOW must be positive"
	errAPIRateLimitInvalid     = "API_RATE_LIMIT_RPS and API_RATE_LIMIT_BURST must be positive"
	errSameSiteInvalidFmt      = "AUTH_COOKIE_SAMESITE %q must be strict or lax"
	errTokenTTLInvalid         = "token TTLs must be positive"
	errBootstrapIncomplete     = "BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD must be set together"
	errSecretRequiredFmt       = "%s must be set"
	errSecretsSharedFmt        = "%s and %s must not share a secret"
	errSecretFallbackFmt       = "%s is set to the development fallback"
	errSecretMinLengthFmt      = "%s must be at least %d characters"
	errSecretLowEntropyFmt     = "%s has insufficient entropy (appears non-random). Use a cryptographically secure random string."
)
