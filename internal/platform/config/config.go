package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	RedisURL        string
	AMQPURL         string
	RateProviderURL string

	CORSAllowedOrigins []string

	// Seed administrator credentials, created at first boot when absent.
	SeedAdminUsername string
	SeedAdminPassword string
	SeedAdminEmail    string

	// Cron expression for the periodic exchange rate refresh.
	RateRefreshSchedule string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "8h")
	viper.SetDefault("JWT_ISSUER", "sws-backend")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("RATE_PROVIDER_URL", "https://open.er-api.com/v6/latest")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("SEED_ADMIN_USERNAME", "kompx3")
	viper.SetDefault("SEED_ADMIN_PASSWORD", "")
	viper.SetDefault("SEED_ADMIN_EMAIL", "admin@swiftsim.local")
	viper.SetDefault("RATE_REFRESH_SCHEDULE", "@every 30m")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = 8 * time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.RedisURL = viper.GetString("REDIS_URL")
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set. Exchange rate caching disabled.")
	}

	cfg.AMQPURL = viper.GetString("AMQP_URL")
	if cfg.AMQPURL == "" {
		log.Println("Warning: AMQP_URL not set. Transfer event publishing disabled.")
	}

	cfg.RateProviderURL = viper.GetString("RATE_PROVIDER_URL")

	originsStr := viper.GetString("CORS_ALLOWED_ORIGINS")
	for _, origin := range strings.Split(originsStr, ",") {
		if o := strings.TrimSpace(origin); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	cfg.SeedAdminUsername = viper.GetString("SEED_ADMIN_USERNAME")
	cfg.SeedAdminPassword = viper.GetString("SEED_ADMIN_PASSWORD")
	if cfg.SeedAdminPassword == "" {
		cfg.SeedAdminPassword = "kompx3-change-me"
		log.Println("Warning: SEED_ADMIN_PASSWORD not set. Using default insecure password.")
	}
	cfg.SeedAdminEmail = viper.GetString("SEED_ADMIN_EMAIL")

	cfg.RateRefreshSchedule = viper.GetString("RATE_REFRESH_SCHEDULE")

	return cfg, nil
}
