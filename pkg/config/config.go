package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Pathao       PathaoConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pathao.parseCredentials(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"SHOPDESK_APP_ENV" required:"true"`
	Port         string   `envconfig:"SHOPDESK_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"SHOPDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"SHOPDESK_LOG_WARN_STACK" default:"false"`
	Brands       []string `envconfig:"SHOPDESK_BRANDS" default:"default"`
	CORSOrigins  []string `envconfig:"SHOPDESK_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPDESK_DB_DSN"`
	Driver string `envconfig:"SHOPDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPDESK_DB_USER"`
	LegacyPassword string `envconfig:"SHOPDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPDESK_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SHOPDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHOPDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SHOPDESK_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPDESK_AUTO_MIGRATE" default:"false"`
}

// PathaoBrandCredential holds the courier credentials for one brand.
type PathaoBrandCredential struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	StoreID      string `json:"store_id"`
}

type PathaoConfig struct {
	BaseURL        string        `envconfig:"SHOPDESK_PATHAO_BASE_URL" default:"https://api-hermes.pathao.com"`
	RequestTimeout time.Duration `envconfig:"SHOPDESK_PATHAO_TIMEOUT" default:"15s"`
	TokenTTL       time.Duration `envconfig:"SHOPDESK_PATHAO_TOKEN_TTL" default:"72h"`

	// CredentialsJSON is a JSON object keyed by brand identifier.
	CredentialsJSON string `envconfig:"SHOPDESK_PATHAO_CREDENTIALS"`

	Credentials map[string]PathaoBrandCredential `ignored:"true"`
}

func (p *PathaoConfig) parseCredentials() error {
	p.Credentials = map[string]PathaoBrandCredential{}
	raw := strings.TrimSpace(p.CredentialsJSON)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &p.Credentials); err != nil {
		return fmt.Errorf("parsing %s: %w", EnvPathaoCredentials, err)
	}
	return nil
}

// CredentialFor returns the courier credential configured for the brand.
func (p PathaoConfig) CredentialFor(brand string) (PathaoBrandCredential, bool) {
	cred, ok := p.Credentials[brand]
	return cred, ok
}

type GCPConfig struct {
	ProjectID string `envconfig:"SHOPDESK_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"SHOPDESK_PUBSUB_ORDERS_TOPIC" default:"shopdesk-order-events"`
	OrdersSubscription string `envconfig:"SHOPDESK_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SHOPDESK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SHOPDESK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SHOPDESK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SHOPDESK_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"SHOPDESK_CRON_LOCK_TTL" default:"20m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
