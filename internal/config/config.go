package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	apperrors "budgetcontrol/internal/errors"
)

// Config holds application configuration
type Config struct {
	Env string

	// Server
	Port        string
	FrontendURL string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Credentials
	BcryptCost      int
	OneTimeTokenTTL time.Duration

	// Mail
	MailDriver   string
	MailFrom     string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string

	// Rate limiting
	RedisURL        string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables.
// A missing JWT_SECRET is a configuration error: the server cannot issue or
// verify session credentials without it.
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	env := getEnv("ENV", "development")
	config := &Config{
		Env: env,

		// Server
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "budget"),
		DBPassword: getEnv("DB_PASSWORD", "budget"),
		DBName:     getEnv("DB_NAME", "budget"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "budgetcontrol.db"),

		// JWT
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTExpirationDur: getDuration("JWT_EXPIRES_IN", 30*24*time.Hour),

		BcryptCost:      getInt("BCRYPT_COST", 10),
		OneTimeTokenTTL: getDuration("ONE_TIME_TOKEN_TTL", 15*time.Minute),

		// Mail
		MailDriver:   getEnv("MAIL_DRIVER", "log"),
		MailFrom:     getEnv("MAIL_FROM", `"Budget Control" <no-reply@budgetcontrol.local>`),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		RedisURL: getEnv("REDIS_URL", ""),
	}

	// Production throttles auth routes harder than dev/test.
	if config.IsProduction() {
		config.RateLimitMax = getInt("RATE_LIMIT_MAX", 5)
		config.RateLimitWindow = getDuration("RATE_LIMIT_WINDOW", time.Minute)
	} else {
		config.RateLimitMax = getInt("RATE_LIMIT_MAX", 50)
		config.RateLimitWindow = getDuration("RATE_LIMIT_WINDOW", 10*time.Second)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// LoadDatabase loads only the settings the operator tools need: the database
// connection and the hashing cost. It does not require JWT_SECRET.
func LoadDatabase() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:        getEnv("ENV", "development"),
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "budget"),
		DBPassword: getEnv("DB_PASSWORD", "budget"),
		DBName:     getEnv("DB_NAME", "budget"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "budgetcontrol.db"),
		BcryptCost: getInt("BCRYPT_COST", 10),
	}
	switch config.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, apperrors.WithMessage(apperrors.ErrConfiguration, fmt.Sprintf("unsupported DB_DRIVER %q", config.DBDriver))
	}
	return config, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return apperrors.WithMessage(apperrors.ErrConfiguration, "JWT_SECRET is not set")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return apperrors.WithMessage(apperrors.ErrConfiguration, fmt.Sprintf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	switch c.MailDriver {
	case "log":
	case "smtp":
		if c.SMTPHost == "" {
			return apperrors.WithMessage(apperrors.ErrConfiguration, "SMTP_HOST is required when MAIL_DRIVER=smtp")
		}
	default:
		return apperrors.WithMessage(apperrors.ErrConfiguration, fmt.Sprintf("unsupported MAIL_DRIVER %q", c.MailDriver))
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// PostgresURL returns the connection URL used by golang-migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
