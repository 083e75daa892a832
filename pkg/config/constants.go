package config

// EnvPrefix is the envconfig prefix shared by every SHOPDESK_* variable.
const EnvPrefix = "shopdesk"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN             = "SHOPDESK_DB_DSN"
	EnvDBHost            = "SHOPDESK_DB_HOST"
	EnvDBUser            = "SHOPDESK_DB_USER"
	EnvDBName            = "SHOPDESK_DB_NAME"
	EnvPathaoCredentials = "SHOPDESK_PATHAO_CREDENTIALS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
