package config

import (
	"flag"
	"sync"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	defaultServerAddress = ":8080"
	defaultDatabaseDSN   = ""
	defaultGatewayAddr   = "http://localhost:8181"
	defaultPublicBaseURL = "http://localhost:8080"
	defaultLogLevel      = "debug"
)

type Config struct {
	ServerAddr    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	GatewayAddr   string `env:"GATEWAY_ADDRESS"`
	GatewaySecret string `env:"GATEWAY_SECRET"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	SMTPAddr      string `env:"SMTP_ADDRESS"`
	SMTPFrom      string `env:"SMTP_FROM"`
	LogLevel      string `env:"LOG_LEVEL"`
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	var parseErr error

	once.Do(func() {
		// local development overrides, absence is not an error
		_ = godotenv.Load()

		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "checkout server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "checkout database DSN")
		flag.StringVar(&cfg.GatewayAddr, "g", defaultGatewayAddr, "payment gateway address")
		flag.StringVar(&cfg.GatewaySecret, "s", "", "payment gateway callback secret")
		flag.StringVar(&cfg.PublicBaseURL, "b", defaultPublicBaseURL, "public base url for gateway redirects")
		flag.StringVar(&cfg.SMTPAddr, "m", "", "smtp relay address")
		flag.StringVar(&cfg.SMTPFrom, "f", "orders@checkout.local", "confirmation sender address")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

		flag.Parse()

		// if environment variable is set, it takes precedence over the flag
		if err := env.Parse(&cfg); err != nil {
			parseErr = err
			return
		}

		singleton = &cfg
	})

	if parseErr != nil {
		return nil, parseErr
	}

	return singleton, nil
}
