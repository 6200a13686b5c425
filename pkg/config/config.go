package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "LEKHYA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "LEKHYA_APP_ENV"
	EnvPort       = "LEKHYA_APP_PORT"
	EnvDBDSN      = "LEKHYA_DB_DSN"
	EnvDBHost     = "LEKHYA_DB_HOST"
	EnvDBUser     = "LEKHYA_DB_USER"
	EnvDBName     = "LEKHYA_DB_NAME"
	EnvRedisURL   = "LEKHYA_REDIS_URL"
	EnvJWTSecret  = "LEKHYA_JWT_SECRET"
	EnvJWTIssuer  = "LEKHYA_JWT_ISSUER"
	EnvJWTExpMins = "LEKHYA_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Numbering    NumberingConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"LEKHYA_APP_ENV" required:"true"`
	Port         string `envconfig:"LEKHYA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LEKHYA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LEKHYA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LEKHYA_DB_DSN"`
	Driver string `envconfig:"LEKHYA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LEKHYA_DB_HOST"`
	LegacyPort     int    `envconfig:"LEKHYA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LEKHYA_DB_USER"`
	LegacyPassword string `envconfig:"LEKHYA_DB_PASSWORD"`
	LegacyName     string `envconfig:"LEKHYA_DB_NAME"`
	LegacySSLMode  string `envconfig:"LEKHYA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LEKHYA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LEKHYA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LEKHYA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LEKHYA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LEKHYA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LEKHYA_REDIS_ADDR"`
	Password     string        `envconfig:"LEKHYA_REDIS_PASSWORD"`
	DB           int           `envconfig:"LEKHYA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LEKHYA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LEKHYA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LEKHYA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LEKHYA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LEKHYA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LEKHYA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LEKHYA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LEKHYA_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LEKHYA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LEKHYA_AUTO_MIGRATE" default:"false"`
}

// RateLimitConfig throttles the report export endpoints.
type RateLimitConfig struct {
	ReportWindow      time.Duration `envconfig:"LEKHYA_RATE_LIMIT_REPORT_WINDOW" default:"1m"`
	ReportTenantLimit int           `envconfig:"LEKHYA_RATE_LIMIT_REPORT_TENANT" default:"30"`
	ReportIPLimit     int           `envconfig:"LEKHYA_RATE_LIMIT_REPORT_IP" default:"60"`
}

// NumberingConfig controls voucher number generation. AutoNumbering off means
// callers supply their own numbers; prefixes override the per-type defaults.
type NumberingConfig struct {
	AutoNumbering  bool   `envconfig:"LEKHYA_NUMBERING_AUTO" default:"true"`
	DefaultPrefix  string `envconfig:"LEKHYA_NUMBERING_DEFAULT_PREFIX" default:"VCH"`
	SalesPrefix    string `envconfig:"LEKHYA_NUMBERING_SALES_PREFIX" default:"SO"`
	PurchasePrefix string `envconfig:"LEKHYA_NUMBERING_PURCHASE_PREFIX" default:"PO"`
	MaxRetries     int    `envconfig:"LEKHYA_NUMBERING_MAX_RETRIES" default:"5"`
}

// PrefixFor returns the configured number prefix for the voucher type.
func (n NumberingConfig) PrefixFor(voucherType string) string {
	switch voucherType {
	case "sales":
		return n.SalesPrefix
	case "purchase":
		return n.PurchasePrefix
	}
	return n.DefaultPrefix
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
