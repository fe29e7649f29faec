package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for overrides without a tag.
const EnvPrefix = "DEALEROPS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "DEALEROPS_DB_DSN"
	EnvDBHost = "DEALEROPS_DB_HOST"
	EnvDBUser = "DEALEROPS_DB_USER"
	EnvDBName = "DEALEROPS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
