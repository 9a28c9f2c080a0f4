package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the process-wide configuration, loaded once at startup and passed
// by reference into the components that need it.
type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	// Lifetimes of single-use codes. No defaults on purpose: the auth
	// service refuses to issue codes when these are unset.
	EmailConfirmationExpiration time.Duration `env:"EMAIL_CONFIRMATION_EXPIRATION"`
	PasswordRecoveryExpiration  time.Duration `env:"PASSWORD_RECOVERY_EXPIRATION"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Email    EmailConfig
	Throttle ThrottleConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=accounts"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type EmailConfig struct {
	MailgunDomain string `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey string `env:"MAILGUN_API_KEY"`
	From          string `env:"EMAIL_FROM,      default=Accounts <no-reply@localhost>"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL, default=http://localhost:8080"`
}

type ThrottleConfig struct {
	Limit  int           `env:"THROTTLE_LIMIT,  default=5"`
	Window time.Duration `env:"THROTTLE_WINDOW, default=10s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
