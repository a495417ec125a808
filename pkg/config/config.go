package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "EXHALE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "EXHALE_DB_DSN"
	EnvDBHost = "EXHALE_DB_HOST"
	EnvDBUser = "EXHALE_DB_USER"
	EnvDBName = "EXHALE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Billing       BillingConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EXHALE_APP_ENV" required:"true"`
	Port         string `envconfig:"EXHALE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"EXHALE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EXHALE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"EXHALE_DB_DSN"`
	Driver string `envconfig:"EXHALE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EXHALE_DB_HOST"`
	LegacyPort     int    `envconfig:"EXHALE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EXHALE_DB_USER"`
	LegacyPassword string `envconfig:"EXHALE_DB_PASSWORD"`
	LegacyName     string `envconfig:"EXHALE_DB_NAME"`
	LegacySSLMode  string `envconfig:"EXHALE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EXHALE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EXHALE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EXHALE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EXHALE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EXHALE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EXHALE_REDIS_ADDR"`
	Password     string        `envconfig:"EXHALE_REDIS_PASSWORD"`
	DB           int           `envconfig:"EXHALE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EXHALE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EXHALE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EXHALE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EXHALE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EXHALE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"EXHALE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"EXHALE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"EXHALE_JWT_EXPIRATION_MINUTES" default:"43200"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EXHALE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EXHALE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EXHALE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EXHALE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EXHALE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"EXHALE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"EXHALE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"EXHALE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"EXHALE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"EXHALE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"EXHALE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"EXHALE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"EXHALE_AUTO_MIGRATE" default:"false"`
}

// BillingConfig holds the webhook secrets for both payment providers.
// Lemon Squeezy signs every delivery; RevenueCat sends a static Authorization
// header and is the lower-trust path.
type BillingConfig struct {
	LemonSqueezySigningSecret string        `envconfig:"EXHALE_LEMONSQUEEZY_SIGNING_SECRET"`
	RevenueCatAuthSecret      string        `envconfig:"EXHALE_REVENUECAT_AUTH_SECRET"`
	WebhookIdempotencyTTL     time.Duration `envconfig:"EXHALE_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"EXHALE_CRON_INTERVAL" default:"1h"`
	EntitlementGrace time.Duration `envconfig:"EXHALE_CRON_ENTITLEMENT_GRACE" default:"24h"`
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
