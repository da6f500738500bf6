package config

// EnvPrefix scopes envconfig lookups; every field also carries its full name.
const EnvPrefix = "PHARMACY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "PHARMACY_APP_ENV"
	EnvPort     = "PHARMACY_APP_PORT"
	EnvLogLevel = "PHARMACY_LOG_LEVEL"

	EnvDBDSN    = "PHARMACY_DB_DSN"
	EnvDBDriver = "PHARMACY_DB_DRIVER"
	EnvDBHost   = "PHARMACY_DB_HOST"
	EnvDBUser   = "PHARMACY_DB_USER"
	EnvDBName   = "PHARMACY_DB_NAME"

	EnvRedisURL = "PHARMACY_REDIS_URL"

	EnvJWTSecret              = "PHARMACY_JWT_SECRET"
	EnvJWTIssuer              = "PHARMACY_JWT_ISSUER"
	EnvJWTExpMins             = "PHARMACY_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "PHARMACY_REFRESH_TOKEN_TTL_MINUTES"

	EnvCheckoutMissingPolicy = "PHARMACY_CHECKOUT_MISSING_INVENTORY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
