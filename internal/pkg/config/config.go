package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const minSecretLength = 16

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// CORSOrigins lists browser origins allowed to send credentialed requests.
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS"`

	Auth     AuthConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Storage  StorageConfig
	Events   EventsConfig
}

type AuthConfig struct {
	JWTSecret           string        `env:"JWT_SECRET, required"`
	AccessTokenTTL      time.Duration `env:"ACCESS_TOKEN_TTL,           default=12h"`
	RefreshTokenTTL     time.Duration `env:"REFRESH_TOKEN_TTL,          default=8760h"`
	AccessCookieMaxAge  time.Duration `env:"ACCESS_COOKIE_MAX_AGE,      default=24h"`
	RefreshCookieMaxAge time.Duration `env:"REFRESH_COOKIE_MAX_AGE,     default=8760h"`
	CookieDomain        string        `env:"COOKIE_DOMAIN"`
	RevalidateOnRefresh bool          `env:"AUTH_REVALIDATE_ON_REFRESH, default=true"`
	OTPTTL              time.Duration `env:"OTP_TTL,                    default=10m"`
	OTPCooldown         time.Duration `env:"OTP_REQUEST_COOLDOWN,       default=1m"`
}

type PostgresConfig struct {
	DatabaseURL  string `env:"DATABASE_URL,    required"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS, default=20"`
	AutoMigrate  bool   `env:"DB_AUTO_MIGRATE, default=true"`
}

// MongoConfig points at the security audit trail. An empty URI disables it.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=marketplace"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// KafkaConfig configures the identity event stream. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC, default=identity-events"`
}

// StorageConfig configures signed asset URLs. An empty bucket disables them.
type StorageConfig struct {
	Bucket          string        `env:"GCS_BUCKET"`
	CredentialsFile string        `env:"GCS_CREDENTIALS_FILE"`
	URLTTL          time.Duration `env:"ASSET_URL_TTL, default=15m"`
}

type EventsConfig struct {
	Workers int `env:"EVENT_WORKERS, default=4"`
	Buffer  int `env:"EVENT_BUFFER,  default=256"`
}

// IsProduction switches cookies to cross-site, secure, domain-pinned mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through an arbitrary lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for process start-up: it panics on error.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func (c *Config) validate() error {
	if len(c.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("config: JWT_SECRET must be at least %d characters", minSecretLength)
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}
	if c.IsProduction() && c.Auth.CookieDomain == "" {
		return errors.New("config: COOKIE_DOMAIN is required in production")
	}
	return nil
}
