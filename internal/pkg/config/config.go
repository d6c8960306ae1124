package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, tolerances, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	DB     DBConfig
	CORS   CORSConfig
	Log    LogConfig
	Stripe StripeConfig
	Bundle BundleConfig
	Email  EmailConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Stripe-Signature"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

// StripeConfig carries webhook verification and provider API settings.
type StripeConfig struct {
	APIKey             string        `envconfig:"STRIPE_API_KEY" required:"true"`
	WebhookSecret      string        `envconfig:"STRIPE_WEBHOOK_SECRET" required:"true"`
	SignatureTolerance time.Duration `envconfig:"STRIPE_SIGNATURE_TOLERANCE" default:"5m"`
	LockTimeout        time.Duration `envconfig:"WEBHOOK_LOCK_TIMEOUT" default:"15s"`
}

// BundleConfig holds fallback values for the bundle-discount incentive when
// the system_configs table has no row for it.
type BundleConfig struct {
	Enabled      bool  `envconfig:"BUNDLE_DISCOUNT_ENABLED" default:"false"`
	AmountCents  int64 `envconfig:"BUNDLE_DISCOUNT_AMOUNT_CENTS" default:"5000"`
	ValidityDays int   `envconfig:"BUNDLE_DISCOUNT_VALIDITY_DAYS" default:"30"`
}

type EmailConfig struct {
	ResendAPIKey    string   `envconfig:"RESEND_API_KEY" required:"true"`
	FromAddress     string   `envconfig:"EMAIL_FROM" default:"no-reply@atcloud.org"`
	AdminRecipients []string `envconfig:"EMAIL_ADMIN_RECIPIENTS" default:"admin@atcloud.org"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func (c *EmailConfig) AdminList() []string {
	out := make([]string, 0, len(c.AdminRecipients))
	for _, r := range c.AdminRecipients {
		if addr := strings.TrimSpace(r); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Stripe: StripeConfig{
			APIKey:             "sk_test_dummy",
			WebhookSecret:      "whsec_test_secret",
			SignatureTolerance: 5 * time.Minute,
			LockTimeout:        15 * time.Second,
		},
		Bundle: BundleConfig{
			Enabled:      true,
			AmountCents:  5000,
			ValidityDays: 30,
		},
		Email: EmailConfig{
			ResendAPIKey:    "re_test_dummy",
			FromAddress:     "no-reply@test.local",
			AdminRecipients: []string{"admin@test.local"},
		},
	}
}
