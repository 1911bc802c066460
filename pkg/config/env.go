package config

// EnvPrefix is handed to envconfig; every field spells out its full variable name.
const EnvPrefix = "FOODORDER"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	CartBackendMemory = "memory"
	CartBackendRedis  = "redis"

	MessagingDriverLog      = "log"
	MessagingDriverWhatsApp = "whatsapp"
	MessagingDriverPubSub   = "pubsub"
)

const (
	EnvAppEnv      = "FOODORDER_APP_ENV"
	EnvPort        = "FOODORDER_APP_PORT"
	EnvCORSOrigins = "FOODORDER_CORS_ORIGINS"
	EnvLogLevel    = "FOODORDER_LOG_LEVEL"

	EnvDBDSN  = "FOODORDER_DB_DSN"
	EnvDBHost = "FOODORDER_DB_HOST"
	EnvDBUser = "FOODORDER_DB_USER"
	EnvDBName = "FOODORDER_DB_NAME"

	EnvRedisURL = "FOODORDER_REDIS_URL"

	EnvJWTSecret              = "FOODORDER_JWT_SECRET"
	EnvJWTIssuer              = "FOODORDER_JWT_ISSUER"
	EnvJWTExpMins             = "FOODORDER_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "FOODORDER_REFRESH_TOKEN_TTL_MINUTES"

	EnvUseSQLite   = "FOODORDER_USE_SQLITE"
	EnvAutoMigrate = "FOODORDER_AUTO_MIGRATE"

	EnvCartBackend = "FOODORDER_CART_BACKEND"
	EnvCartTTL     = "FOODORDER_CART_TTL"

	EnvMessagingDriver   = "FOODORDER_MESSAGING_DRIVER"
	EnvWhatsAppBaseURL   = "FOODORDER_WHATSAPP_BASE_URL"
	EnvGCPProjectID      = "FOODORDER_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic = "FOODORDER_PUBSUB_ORDERS_TOPIC"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
