package config

const (
	EnvPrefix = "ISHOS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv       = "ISHOS_APP_ENV"
	EnvPort         = "ISHOS_APP_PORT"
	EnvLogLevel     = "ISHOS_LOG_LEVEL"
	EnvRedisEnabled = "ISHOS_REDIS_ENABLED"
	EnvRedisURL     = "ISHOS_REDIS_URL"
	EnvDBDriver     = "ISHOS_DB_DRIVER"
	EnvDBDSN        = "ISHOS_DB_DSN"
	EnvDBHost       = "ISHOS_DB_HOST"
	EnvDBUser       = "ISHOS_DB_USER"
	EnvDBName       = "ISHOS_DB_NAME"
	EnvSessionTTL   = "ISHOS_SESSION_TTL"
	EnvCatalogDir   = "ISHOS_CATALOG_DIR"
	EnvCORSOrigins  = "ISHOS_CORS_ALLOWED_ORIGINS"
	EnvAutoMigrate  = "ISHOS_AUTO_MIGRATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
