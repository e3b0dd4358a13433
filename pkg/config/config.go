package config

import (
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
	Session      SessionConfig
	Catalog      CatalogConfig
	Orders       OrdersConfig
	RateLimit    RateLimitConfig
	Staff        StaffConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Redis.validate(); err != nil {
		return nil, err
	}
	if cfg.Session.TTL <= 0 {
		return nil, fmt.Errorf("%s must be positive", EnvSessionTTL)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ISHOS_APP_ENV" required:"true"`
	Port         string `envconfig:"ISHOS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ISHOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ISHOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig is optional: with no DSN and no legacy host settings the order
// log runs without persistence.
type DBConfig struct {
	DSN    string `envconfig:"ISHOS_DB_DSN"`
	Driver string `envconfig:"ISHOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ISHOS_DB_HOST"`
	LegacyPort     int    `envconfig:"ISHOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ISHOS_DB_USER"`
	LegacyPassword string `envconfig:"ISHOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"ISHOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"ISHOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ISHOS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"ISHOS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"ISHOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ISHOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// Enabled reports whether a database was configured.
func (db DBConfig) Enabled() bool {
	return db.DSN != ""
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	Enabled      bool          `envconfig:"ISHOS_REDIS_ENABLED" default:"false"`
	URL          string        `envconfig:"ISHOS_REDIS_URL"`
	Address      string        `envconfig:"ISHOS_REDIS_ADDR"`
	Password     string        `envconfig:"ISHOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"ISHOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ISHOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ISHOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ISHOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ISHOS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"ISHOS_REDIS_WRITE_TIMEOUT" default:"3s"`
}

func (r RedisConfig) validate() error {
	if r.Enabled && r.URL == "" && r.Address == "" {
		return fmt.Errorf("%s requires %s or ISHOS_REDIS_ADDR", EnvRedisEnabled, EnvRedisURL)
	}
	return nil
}

type SessionConfig struct {
	TTL           time.Duration `envconfig:"ISHOS_SESSION_TTL" default:"24h"`
	SweepInterval time.Duration `envconfig:"ISHOS_SESSION_SWEEP_INTERVAL" default:"5m"`
	CookieName    string        `envconfig:"ISHOS_SESSION_COOKIE" default:"ishos_session"`
	CookieSecure  bool          `envconfig:"ISHOS_SESSION_COOKIE_SECURE" default:"false"`
}

type CatalogConfig struct {
	Dir string `envconfig:"ISHOS_CATALOG_DIR" default:"content"`
}

// OrdersConfig drives the pending order expiry job.
type OrdersConfig struct {
	PendingTTL     time.Duration `envconfig:"ISHOS_ORDERS_PENDING_TTL" default:"72h"`
	ExpiryInterval time.Duration `envconfig:"ISHOS_ORDERS_EXPIRY_INTERVAL" default:"1h"`
}

// RateLimitConfig throttles order submission. A zero window disables it.
type RateLimitConfig struct {
	SubmitWindow     time.Duration `envconfig:"ISHOS_RATE_LIMIT_SUBMIT_WINDOW" default:"10m"`
	SubmitIPLimit    int           `envconfig:"ISHOS_RATE_LIMIT_SUBMIT_IP" default:"30"`
	SubmitPhoneLimit int           `envconfig:"ISHOS_RATE_LIMIT_SUBMIT_PHONE" default:"5"`
}

// StaffConfig guards the order log endpoints. An empty token disables them.
type StaffConfig struct {
	Token string `envconfig:"ISHOS_STAFF_TOKEN"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ISHOS_CORS_ALLOWED_ORIGINS" default:"*"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ISHOS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.LegacyHost == "" && db.LegacyUser == "" && db.LegacyName == "" {
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
