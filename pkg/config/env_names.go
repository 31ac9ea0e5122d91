package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "TIENDA"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "TIENDA_APP_ENV"
	EnvPort       = "TIENDA_APP_PORT"
	EnvDBDSN      = "TIENDA_DB_DSN"
	EnvDBHost     = "TIENDA_DB_HOST"
	EnvDBUser     = "TIENDA_DB_USER"
	EnvDBName     = "TIENDA_DB_NAME"
	EnvRedisURL   = "TIENDA_REDIS_URL"
	EnvJWTSecret  = "TIENDA_JWT_SECRET"
	EnvJWTIssuer  = "TIENDA_JWT_ISSUER"
	EnvJWTExpMins = "TIENDA_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
