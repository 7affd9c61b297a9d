package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	AppURL          string        `env:"APP_URL" envDefault:"http://localhost:8080"`
	MongoURI        string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase   string        `env:"MONGODB_DATABASE" envDefault:"commerce_sync"`
	RedisAddr       string        `env:"REDIS_ADDR"` // empty: in-memory OAuth state store
	EncryptionKey   string        `env:"ENCRYPTION_KEY,required"`
	OAuthScopes     []string      `env:"SHOPIFY_API_SCOPES" envSeparator:"," envDefault:"read_products,read_orders,read_customers"`
	SyncPageSize    int           `env:"SYNC_PAGE_SIZE" envDefault:"50"`
	HTTPTimeout     time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"15s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
