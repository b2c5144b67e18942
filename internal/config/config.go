package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	SessionSecret   string        `mapstructure:"SESSION_SECRET"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS    float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `mapstructure:"RATE_LIMIT_BURST"`
	KafkaBrokers    []string      `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic      string        `mapstructure:"KAFKA_TOPIC"`
	StripeSecretKey string        `mapstructure:"STRIPE_SECRET_KEY"`
	Currency        string        `mapstructure:"CURRENCY"`
	SweepInterval   time.Duration `mapstructure:"SWEEP_INTERVAL"`
	CheckoutNext    string        `mapstructure:"CHECKOUT_NEXT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("KAFKA_TOPIC", "spa.bookings")
	v.SetDefault("CURRENCY", "usd")
	v.SetDefault("SWEEP_INTERVAL", "10m")
	v.SetDefault("CHECKOUT_NEXT", "/account/bookings")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REDIS_URL")
	v.BindEnv("SESSION_SECRET")
	v.BindEnv("SESSION_TTL")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("KAFKA_BROKERS")
	v.BindEnv("KAFKA_TOPIC")
	v.BindEnv("STRIPE_SECRET_KEY")
	v.BindEnv("CURRENCY")
	v.BindEnv("SWEEP_INTERVAL")
	v.BindEnv("CHECKOUT_NEXT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	if cfg.KafkaBrokers == nil {
		if brokers := v.GetString("KAFKA_BROKERS"); brokers != "" {
			cfg.KafkaBrokers = strings.Split(brokers, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: Session cookies are not marked Secure and a missing")
		log.Println("WARNING: SESSION_SECRET is tolerated. Do NOT use this in production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside of
// development a session secret is mandatory so that session cookies are
// actually signed with a private key.
func (c *Config) Validate() error {
	if !c.IsDev() && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required when ENV=%q", c.Env)
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes, got %d", len(c.SessionSecret))
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.IsProduction() && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required in production (sessions do not survive restarts without it)")
	}
	return nil
}
