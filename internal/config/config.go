package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database

	Auth       Auth       `envPrefix:"JWT_"`
	Stripe     Stripe     `envPrefix:"STRIPE_"`
	BrainTree  Braintree  `envPrefix:"BRAINTREE_"`
	Cloudinary Cloudinary `envPrefix:"CLOUDINARY_"`
	Redis      Redis      `envPrefix:"REDIS_"`
	RabbitMQ   RabbitMQ   `envPrefix:"RABBITMQ_"`
	RateLimit  RateLimit  `envPrefix:"RATE_LIMIT_"`

	BcryptSaltRounds int `env:"BCRYPT_SALT_ROUNDS" envDefault:"12"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host            string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" envDefault:"5000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	BodyLimit       string        `env:"HTTP_BODY_LIMIT" envDefault:"16M"`
}

type Database struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"mysql"`
	URL    string `env:"DATABASE_URL,required,notEmpty"`
}

type Auth struct {
	AccessSecret     string        `env:"ACCESS_SECRET,required,notEmpty"`
	AccessExpiresIn  time.Duration `env:"ACCESS_EXPIRES_IN" envDefault:"168h"`
	RefreshSecret    string        `env:"REFRESH_SECRET,required,notEmpty"`
	RefreshExpiresIn time.Duration `env:"REFRESH_EXPIRES_IN" envDefault:"8760h"`
}

type Stripe struct {
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	Currency      string `env:"CURRENCY" envDefault:"usd"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT" envDefault:"sandbox"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

type Cloudinary struct {
	CloudName string `env:"CLOUD_NAME"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
	Folder    string `env:"FOLDER" envDefault:"decantifume/products"`
}

type Redis struct {
	URL string `env:"URL"`
}

type RabbitMQ struct {
	URL      string `env:"URL"`
	Exchange string `env:"EXCHANGE" envDefault:"order.exchange"`
}

type RateLimit struct {
	Requests int           `env:"REQUESTS" envDefault:"100"`
	Window   time.Duration `env:"WINDOW" envDefault:"15m"`
}

// Load parses the process environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Environment.Name {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("invalid ENVIRONMENT %q", c.Environment.Name)
	}

	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid DATABASE_DRIVER %q", c.Database.Driver)
	}

	if c.BcryptSaltRounds < bcrypt.MinCost || c.BcryptSaltRounds > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_SALT_ROUNDS must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.Auth.AccessExpiresIn <= 0 || c.Auth.RefreshExpiresIn <= 0 {
		return fmt.Errorf("token expiries must be positive")
	}

	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit requests and window must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment.Name == EnvProduction
}

func (c *Config) Addr() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}
