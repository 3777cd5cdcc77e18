package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Database DatabaseConfig `env:",prefix=DB_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	Auth     AuthConfig     `env:",prefix=AUTH_"`
	Pricing  PricingConfig  `env:",prefix=PRICING_"`
	App      AppConfig      `env:",prefix=APP_"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string `env:"PORT,default=8080"`
	Host         string `env:"HOST,default=0.0.0.0"`
	ReadTimeout  int    `env:"READ_TIMEOUT,default=10"`  // seconds
	WriteTimeout int    `env:"WRITE_TIMEOUT,default=10"` // seconds
	IdleTimeout  int    `env:"IDLE_TIMEOUT,default=60"`  // seconds
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host              string        `env:"HOST,default=localhost"`
	Port              string        `env:"PORT,default=5432"`
	User              string        `env:"USER,default=postgres"`
	Password          string        `env:"PASSWORD,default=postgres"`
	Name              string        `env:"NAME,default=hiddengym"`
	SSLMode           string        `env:"SSL_MODE,default=disable"`
	MaxConns          int           `env:"MAX_CONNS,default=25"`
	MinConns          int           `env:"MIN_CONNS,default=5"`
	ConnRetryAttempts uint          `env:"CONN_RETRY_ATTEMPTS,default=5"`
	ConnRetryDelay    time.Duration `env:"CONN_RETRY_DELAY,default=1s"`
	ConnRetryMaxDelay time.Duration `env:"CONN_RETRY_MAX_DELAY,default=5s"`
	MigrationsDir     string        `env:"MIGRATIONS_DIR,default=internal/database/migrations"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host string `env:"HOST,default=localhost"`
	Port string `env:"PORT,default=6379"`
	DB   int    `env:"DB,default=0"`
}

// AuthConfig holds JWT configuration
type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET,default=dev-only-signing-key"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,default=24h"`
}

// PricingConfig holds business policy knobs for the pricing engine
type PricingConfig struct {
	// StudentAgeMax is the inclusive age ceiling for STUDENT promo codes
	StudentAgeMax int `env:"STUDENT_AGE_MAX,default=25"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

// GetDatabaseURL returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetServerAddr returns the server listen address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// GetRedisAddr returns the Redis address
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsProduction returns true if running in production environment
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}
