package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Environment string

const (
	EnvProduction  Environment = "production"
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"

	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"

	SameSiteStrict = "strict"
	SameSiteLax    = "lax"
)

const (
	// Development fallbacks. Production refuses to start with any of them.
	fallbackAdminSecret   = "dev-admin-secret-not-for-production-use-0001"
	fallbackManagerSecret = "dev-manager-secret-not-for-production-use-0002"
	fallbackUserSecret    = "dev-user-secret-not-for-production-use-0003"

	minJWTSecretLength       = 32
	minUniqueCharsInSecret   = 16
	minRepeatedCharThreshold = 4
	maxRepeatedChars         = 2
)

type Config struct {
	Env       Environment `env:"APP_ENV" envDefault:"development"`
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Register  RegisterConfig
	Bootstrap BootstrapConfig

	fallbackSecrets []string
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	PagesDir        string        `env:"PAGES_DIR" envDefault:"web"`
	PrincipalRPS    int           `env:"API_RATE_LIMIT_RPS" envDefault:"20"`
	PrincipalBurst  int           `env:"API_RATE_LIMIT_BURST" envDefault:"40"`
	Profiling       bool          `env:"ENABLE_PROFILING" envDefault:"false"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"postgres"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	Database string `env:"DB_NAME" envDefault:"storefront"`
	User     string `env:"DB_USER" envDefault:"storefront_app"`
	Password string `env:"DB_PASSWORD"`
	SSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"DB_MAX_CONNS" envDefault:"25"`
	MinConns int    `env:"DB_MIN_CONNS" envDefault:"5"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DATABASE" envDefault:"storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// AuthConfig holds one secret and one token lifetime per identity scheme.
type AuthConfig struct {
	AdminSecret     string        `env:"ADMIN_JWT_SECRET"`
	ManagerSecret   string        `env:"MANAGER_JWT_SECRET"`
	UserSecret      string        `env:"JWT_SECRET"`
	AdminTokenTTL   time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"24h"`
	ManagerTokenTTL time.Duration `env:"MANAGER_TOKEN_TTL" envDefault:"1h"`
	UserTokenTTL    time.Duration `env:"USER_TOKEN_TTL" envDefault:"24h"`
	CookieSameSite  string        `env:"AUTH_COOKIE_SAMESITE" envDefault:"lax"`
	StoreTimeout    time.Duration `env:"AUTH_STORE_TIMEOUT" envDefault:"3s"`
}

// RegisterConfig throttles the registration endpoint per client address.
type RegisterConfig struct {
	RateLimit  int           `env:"REGISTER_RATE_LIMIT" envDefault:"5"`
	RateWindow time.Duration `env:"REGISTER_RATE_WINDOW" envDefault:"15m"`
	Backend    string        `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`
	MaxTracked int           `env:"REGISTER_RATE_MAX_KEYS" envDefault:"10000"`
	TrustProxy bool          `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

type BootstrapConfig struct {
	AdminEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	AdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

// Load parses the environment and validates the result. Outside production a
// missing secret is replaced by its development fallback; FallbackSecrets
// reports which ones so the caller can warn.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf(errParseEnvironmentFmt, err)
	}

	cfg.applyDevelopmentFallbacks()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return &cfg, nil
}

// IsProduction reports whether strict secret handling applies.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// FallbackSecrets lists the variables that were substituted with a
// development default.
func (c *Config) FallbackSecrets() []string {
	return c.fallbackSecrets
}

func (c *Config) applyDevelopmentFallbacks() {
	if c.IsProduction() {
		return
	}
	fill := func(name string, dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
			c.fallbackSecrets = append(c.fallbackSecrets, name)
		}
	}
	fill(envAdminJWTSecret, &c.Auth.AdminSecret, fallbackAdminSecret)
	fill(envManagerJWTSecret, &c.Auth.ManagerSecret, fallbackManagerSecret)
	fill(envUserJWTSecret, &c.Auth.UserSecret, fallbackUserSecret)
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvProduction, EnvDevelopment, EnvTest:
	default:
		return fmt.Errorf(errUnknownEnvironmentFmt, c.Env)
	}

	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequired)
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf(errDBPasswordRequired)
		}
	case StoreDriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf(errMongoURIRequired)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf(errUnknownStoreDriverFmt, c.Store.Driver)
	}

	switch c.Register.Backend {
	case RateLimitBackendMemory:
	case RateLimitBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf(errRedisAddrRequired)
		}
	default:
		return fmt.Errorf(errUnknownRateBackendFmt, c.Register.Backend)
	}

	if c.Register.RateLimit <= 0 || c.Register.RateWindow <= 0 {
		return fmt.Errorf(errRegisterLimitInvalid)
	}

	if c.Server.PrincipalRPS <= 0 || c.Server.PrincipalBurst <= 0 {
		return fmt.Errorf(errAPIRateLimitInvalid)
	}

	if c.Auth.CookieSameSite != SameSiteStrict && c.Auth.CookieSameSite != SameSiteLax {
		return fmt.Errorf(errSameSiteInvalidFmt, c.Auth.CookieSameSite)
	}

	if c.Auth.AdminTokenTTL <= 0 || c.Auth.ManagerTokenTTL <= 0 || c.Auth.UserTokenTTL <= 0 {
		return fmt.Errorf(errTokenTTLInvalid)
	}

	if (c.Bootstrap.AdminEmail == "") != (c.Bootstrap.AdminPassword == "") {
		return fmt.Errorf(errBootstrapIncomplete)
	}

	return c.validateSecrets()
}

func (c *Config) validateSecrets() error {
	secrets := []struct {
		name     string
		value    string
		fallback string
	}{
		{envAdminJWTSecret, c.Auth.AdminSecret, fallbackAdminSecret},
		{envManagerJWTSecret, c.Auth.ManagerSecret, fallbackManagerSecret},
		{envUserJWTSecret, c.Auth.UserSecret, fallbackUserSecret},
	}

	seen := make(map[string]string, len(secrets))
	for _, s := range secrets {
		if s.value == "" {
			return fmt.Errorf(errSecretRequiredFmt, s.name)
		}
		if other, dup := seen[s.value]; dup {
			return fmt.Errorf(errSecretsSharedFmt, other, s.name)
		}
		seen[s.value] = s.name

		if !c.IsProduction() {
			continue
		}
		if s.value == s.fallback {
			return fmt.Errorf(errSecretFallbackFmt, s.name)
		}
		if len(s.value) < minJWTSecretLength {
			return fmt.Errorf(errSecretMinLengthFmt, s.name, minJWTSecretLength)
		}
		if !hasMinimumEntropy(s.value) {
			return fmt.Errorf(errSecretLowEntropyFmt, s.name)
		}
	}

	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minJWTSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	if len(charCounts) < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
