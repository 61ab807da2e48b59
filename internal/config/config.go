// Package config содержит логику чтения конфигурации сервиса покупки биткоина.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvProduction — значение окружения, при котором используются боевые
// адреса шлюза и фида цен.
const EnvProduction = "production"

// Config содержит параметры конфигурации сервиса покупки биткоина.
type Config struct {
	RunAddress           string        `env:"RUN_ADDRESS"`
	Environment          string        `env:"APP_ENV"`
	GatewaySandboxURL    string        `env:"FLW_MERCHANT_SANDBOX_API"`
	GatewayProductionURL string        `env:"FLW_MERCHANT_PRODUCTION_API"`
	MerchantSecretKey    string        `env:"FLW_MERCHANT_SECRET_KEY"`
	WebhookSecretHash    string        `env:"FLW_SECRET_HASH"`
	PriceFeedStagingURL  string        `env:"GALOY_STAGING_API"`
	PriceFeedMainnetURL  string        `env:"GALOY_MAINNET_API"`
	RedirectURL          string        `env:"PAYMENT_REDIRECT_URL"`
	TransactionLogPath   string        `env:"TRANSACTION_LOG_PATH"`
	PricePollInterval    time.Duration `env:"PRICE_POLL_INTERVAL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных
// окружения; значения окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envEnvironment := cfg.Environment
	envLogPath := cfg.TransactionLogPath

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.Environment, "e", "sandbox", "runtime environment (sandbox or production)")
	flag.StringVar(&cfg.TransactionLogPath, "t", "./transaction-logs.txt", "path to the transaction audit log")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envEnvironment != "" {
		cfg.Environment = envEnvironment
	}
	if envLogPath != "" {
		cfg.TransactionLogPath = envLogPath
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.GatewaySandboxURL == "" {
		cfg.GatewaySandboxURL = "https://api.flutterwave.com/v3/payments"
	}
	if cfg.GatewayProductionURL == "" {
		cfg.GatewayProductionURL = "https://api.flutterwave.com/v3/payments"
	}
	if cfg.PriceFeedStagingURL == "" {
		cfg.PriceFeedStagingURL = "https://api.staging.galoy.io/graphql"
	}
	if cfg.PriceFeedMainnetURL == "" {
		cfg.PriceFeedMainnetURL = "https://api.mainnet.galoy.io/graphql"
	}
	if cfg.PricePollInterval <= 0 {
		cfg.PricePollInterval = 3 * time.Minute
	}

	return cfg, nil
}

// IsProduction сообщает, работает ли сервис в боевом окружении.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GatewayURL возвращает адрес платёжного шлюза для текущего окружения.
func (c *Config) GatewayURL() string {
	if c.IsProduction() {
		return c.GatewayProductionURL
	}
	return c.GatewaySandboxURL
}

// PriceFeedURL возвращает адрес фида цен для текущего окружения.
func (c *Config) PriceFeedURL() string {
	if c.IsProduction() {
		return c.PriceFeedMainnetURL
	}
	return c.PriceFeedStagingURL
}
