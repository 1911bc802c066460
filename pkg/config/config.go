package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Cart          CartConfig
	Messaging     MessagingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Currency      CurrencyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Messaging.validate(cfg.PubSub); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FOODORDER_APP_ENV" required:"true"`
	Port         string `envconfig:"FOODORDER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FOODORDER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODORDER_LOG_WARN_STACK" default:"false"`
	// CORSOrigins is a comma separated allow list for browser clients.
	CORSOrigins []string `envconfig:"FOODORDER_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:8081,http://localhost:19006"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"FOODORDER_DB_DSN"`
	Driver string `envconfig:"FOODORDER_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"FOODORDER_DB_HOST"`
	Port     int    `envconfig:"FOODORDER_DB_PORT" default:"5432"`
	User     string `envconfig:"FOODORDER_DB_USER"`
	Password string `envconfig:"FOODORDER_DB_PASSWORD"`
	Name     string `envconfig:"FOODORDER_DB_NAME"`
	SSLMode  string `envconfig:"FOODORDER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FOODORDER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODORDER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODORDER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODORDER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FOODORDER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FOODORDER_REDIS_ADDR"`
	Password     string        `envconfig:"FOODORDER_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODORDER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODORDER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODORDER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODORDER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODORDER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODORDER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FOODORDER_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FOODORDER_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"FOODORDER_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"FOODORDER_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FOODORDER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FOODORDER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FOODORDER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FOODORDER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FOODORDER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FOODORDER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FOODORDER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FOODORDER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FOODORDER_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FOODORDER_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FOODORDER_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FOODORDER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FOODORDER_AUTO_MIGRATE" default:"false"`
}

// CartConfig selects where session carts live. The memory backend keeps carts
// process-local; redis keeps them for TTL so several API instances share them.
type CartConfig struct {
	Backend string        `envconfig:"FOODORDER_CART_BACKEND" default:"memory"`
	TTL     time.Duration `envconfig:"FOODORDER_CART_TTL" default:"12h"`
}

func (c CartConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case CartBackendMemory, CartBackendRedis:
		return nil
	}
	return fmt.Errorf("%s must be %q or %q", EnvCartBackend, CartBackendMemory, CartBackendRedis)
}

// UsesRedis reports whether carts should be stored in redis.
func (c CartConfig) UsesRedis() bool {
	return strings.EqualFold(strings.TrimSpace(c.Backend), CartBackendRedis)
}

type MessagingConfig struct {
	Driver          string `envconfig:"FOODORDER_MESSAGING_DRIVER" default:"whatsapp"`
	WhatsAppBaseURL string `envconfig:"FOODORDER_WHATSAPP_BASE_URL" default:"https://wa.me/"`
	WhatsAppPhone   string `envconfig:"FOODORDER_WHATSAPP_PHONE"`
}

func (m MessagingConfig) validate(ps PubSubConfig) error {
	switch m.NormalizedDriver() {
	case MessagingDriverLog, MessagingDriverWhatsApp:
		return nil
	case MessagingDriverPubSub:
		if strings.TrimSpace(ps.OrdersTopic) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvPubSubOrdersTopic, EnvMessagingDriver, MessagingDriverPubSub)
		}
		return nil
	}
	return fmt.Errorf("unknown %s %q", EnvMessagingDriver, m.Driver)
}

// NormalizedDriver returns the lower-cased messaging driver name.
func (m MessagingConfig) NormalizedDriver() string {
	driver := strings.ToLower(strings.TrimSpace(m.Driver))
	if driver == "" {
		return MessagingDriverWhatsApp
	}
	return driver
}

type GCPConfig struct {
	ProjectID string `envconfig:"FOODORDER_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"FOODORDER_PUBSUB_ORDERS_TOPIC"`
}

type CurrencyConfig struct {
	Symbol string `envconfig:"FOODORDER_CURRENCY_SYMBOL" default:"R$"`
}

func (db *DBConfig) ensureDSN(sqlite bool) error {
	if db.DSN != "" {
		return nil
	}
	if sqlite {
		db.Driver = DBDriverSQLite
		db.DSN = "file:foodorder.db?cache=shared"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
