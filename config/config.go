package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	AppEnv string

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBDsn      string // overrides the DSN composed from the DB_* parts
	DBLogLevel string

	JWTKey      string
	JWTTTLHours int
	SaltRound   int

	UploadDir   string
	CorsOrigins string

	SendGridAPIKey  string
	EmailSender     string
	EmailSenderName string

	NotifyWebhookURL string

	SchedulerEnabled    bool
	EnforceCourseExpiry bool
}

// AppConfig is a global variable to access configuration
var AppConfig = Defaults()

// Defaults returns the configuration used when no environment is present.
func Defaults() *Config {
	return &Config{
		Port:             "3000",
		AppEnv:           "development",
		DBDriver:         "postgres",
		DBName:           "lms",
		DBLogLevel:       "warn",
		JWTKey:           "defaultSecret",
		JWTTTLHours:      24,
		SaltRound:        10,
		UploadDir:        "./public/uploads",
		CorsOrigins:      "*",
		EmailSenderName:  "LMS",
		SchedulerEnabled: true,
	}
}

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	d := Defaults()
	AppConfig = &Config{
		Port:   getEnv("PORT", d.Port),
		AppEnv: getEnv("APP_ENV", d.AppEnv),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", d.DBDriver)),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", d.DBName),
		DBPort:     getEnv("DB_PORT", ""),
		DBDsn:      getEnv("DB_DSN", ""),
		DBLogLevel: getEnv("DB_LOG_LEVEL", d.DBLogLevel),

		JWTKey:      getEnv("JWT_SECRET_KEY", d.JWTKey),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", d.JWTTTLHours),
		SaltRound:   getEnvInt("SALT_ROUND", d.SaltRound),

		UploadDir:   getEnv("UPLOAD_DIR", d.UploadDir),
		CorsOrigins: getEnv("CORS_ORIGINS", d.CorsOrigins),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", ""),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", d.EmailSenderName),

		NotifyWebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),

		SchedulerEnabled:    getEnvBool("SCHEDULER_ENABLED", d.SchedulerEnabled),
		EnforceCourseExpiry: getEnvBool("ENFORCE_COURSE_EXPIRY", false),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendGridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Emails will only be logged.")
	}
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return b
}
